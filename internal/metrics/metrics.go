// Package metrics exposes the Prometheus instrumentation for the dashboard
// service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry, so tests can
// construct independent instances without duplicate registration panics.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	FeedFetchesTotal    *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_http_requests_total",
			Help: "Total HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transit_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		FeedFetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_feed_fetches_total",
			Help: "Realtime feed fetch outcomes by feed key.",
		}, []string{"feed", "outcome"}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFeedFetch records one feed fetch outcome ("ok" or "error").
func (m *Metrics) ObserveFeedFetch(feed string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.FeedFetchesTotal.WithLabelValues(feed, outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware instruments a handler with request count and latency, labeled
// by the registered route pattern.
func (m *Metrics) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
