// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Provider interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncReports(outcome string)
	ObserveReportDuration(duration time.Duration)
	SetStoresTotal(count int)
}

type provider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	reportsTotal    *prometheus.CounterVec
	reportDuration  prometheus.Histogram
	storesTotal     prometheus.Gauge
}

// New registers the service metrics on the default registry. When
// disabled, a no-op provider is returned and nothing is registered.
func New(enabled bool) Provider {
	if !enabled {
		return &noopProvider{}
	}

	return &provider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storemon_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storemon_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storemon_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storemon_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		reportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storemon_reports_total",
			Help: "Report jobs finished, by outcome",
		}, []string{"outcome"}),

		reportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "storemon_report_duration_seconds",
			Help:    "Duration of report generation in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),

		storesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "storemon_stores_total",
			Help: "Number of stores in the loaded dataset",
		}),
	}
}

func (p *provider) IncRequestsTotal(endpoint string, status int) {
	p.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (p *provider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	p.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (p *provider) IncCacheHits()   { p.cacheHits.Inc() }
func (p *provider) IncCacheMisses() { p.cacheMisses.Inc() }

func (p *provider) IncReports(outcome string) {
	p.reportsTotal.WithLabelValues(outcome).Inc()
}

func (p *provider) ObserveReportDuration(duration time.Duration) {
	p.reportDuration.Observe(duration.Seconds())
}

func (p *provider) SetStoresTotal(count int) {
	p.storesTotal.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// noopProvider is a no-op implementation for when metrics are disabled.
type noopProvider struct{}

func (n *noopProvider) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopProvider) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopProvider) IncCacheHits()                                    {}
func (n *noopProvider) IncCacheMisses()                                  {}
func (n *noopProvider) IncReports(_ string)                              {}
func (n *noopProvider) ObserveReportDuration(_ time.Duration)            {}
func (n *noopProvider) SetStoresTotal(_ int)                             {}
