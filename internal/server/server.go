// Package server exposes the database check over HTTP.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/dbhealth/pkg/health"
	"github.com/dmitrymomot/dbhealth/pkg/logger"
)

// ServiceName is reported by the banner route.
const ServiceName = "dbhealth"

// Routes served by the router.
const (
	RouteBanner   = "/"
	RouteDBHealth = "/db/health"
	RouteLiveness = "/health/live"
	RouteMetrics  = "/metrics"
)

type routerConfig struct {
	logger   *slog.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer
}

// Option configures the router.
type Option func(*routerConfig)

// WithLogger sets the logger for request and panic logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *routerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records HTTP metrics in m.
func WithMetrics(m *Metrics) Option {
	return func(c *routerConfig) {
		c.metrics = m
	}
}

// WithGatherer serves g on /metrics. Without it the route is not mounted.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *routerConfig) {
		c.gatherer = g
	}
}

// NewRouter builds the HTTP handler around a database checker.
func NewRouter(checker health.Prober, opts ...Option) http.Handler {
	cfg := &routerConfig{logger: logger.NewNope()}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(
		RequestID(),
		RequestLogger(cfg.logger),
	)
	if cfg.metrics != nil {
		r.Use(cfg.metrics.Middleware)
	}
	// Innermost, so the request log and metrics see the 500 of a recovered panic.
	r.Use(Recover(cfg.logger))

	r.Get(RouteBanner, bannerHandler)
	r.Get(RouteDBHealth, health.Handler(checker))
	r.Get(RouteLiveness, health.LivenessHandler())
	if cfg.gatherer != nil {
		r.Method(http.MethodGet, RouteMetrics, promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed)
	})

	return r
}

func bannerHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"service": ServiceName})
}

func writeError(w http.ResponseWriter, status int) {
	writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
