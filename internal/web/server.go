// Package web exposes the report API over HTTP.
package web

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"store-monitor/internal/cache"
	"store-monitor/internal/metrics"
	"store-monitor/internal/models"
)

// Server handles web requests
type Server struct {
	db             models.Database
	runner         models.ReportRunner
	cache          cache.Provider
	metrics        metrics.Provider
	metricsEnabled bool
	log            zerolog.Logger
	startTime      time.Time
}

// New creates a new web server
func New(db models.Database, runner models.ReportRunner, cacheProvider cache.Provider, metricsProvider metrics.Provider, metricsEnabled bool, log zerolog.Logger) *Server {
	return &Server{
		db:             db,
		runner:         runner,
		cache:          cacheProvider,
		metrics:        metricsProvider,
		metricsEnabled: metricsEnabled,
		log:            log.With().Str("component", "web").Logger(),
		startTime:      time.Now(),
	}
}

// Handler builds the route tree: infrastructure endpoints on the outer
// mux, the instrumented API behind the metrics middleware.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /trigger_report", s.handleTriggerReport)
	api.HandleFunc("GET /get_report/{id}", s.handleGetReport)
	api.HandleFunc("GET /api/reports", s.handleListReports)
	api.HandleFunc("GET /api/stores", s.handleStores)
	api.HandleFunc("GET /{$}", s.handleRoot)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	mux.Handle("/", metrics.Middleware(s.metrics, api))
	return mux
}
