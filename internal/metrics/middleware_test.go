package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingProvider struct {
	noopProvider
	endpoint  string
	status    int
	durations int
}

func (r *recordingProvider) IncRequestsTotal(endpoint string, status int) {
	r.endpoint = endpoint
	r.status = status
}

func (r *recordingProvider) ObserveRequestDuration(_ string, _ time.Duration) {
	r.durations++
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	rec := &recordingProvider{}
	h := Middleware(rec, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get_report/x", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "/get_report/x", rec.endpoint)
	assert.Equal(t, http.StatusNotFound, rec.status)
	assert.Equal(t, 1, rec.durations)
}

func TestMiddlewareDefaultsToOK(t *testing.T) {
	rec := &recordingProvider{}
	h := Middleware(rec, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("hi"))
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.status)
}

func TestHTTPStatusBucket(t *testing.T) {
	assert.Equal(t, "2xx", httpStatusBucket(200))
	assert.Equal(t, "2xx", httpStatusBucket(202))
	assert.Equal(t, "3xx", httpStatusBucket(302))
	assert.Equal(t, "4xx", httpStatusBucket(404))
	assert.Equal(t, "5xx", httpStatusBucket(500))
}
