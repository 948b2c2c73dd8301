// Package metrics holds the Prometheus collectors for the Daleel server.
// Collectors are registered on a private registry so tests can build as
// many as they need.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/daleel/internal/guard"
)

// Metrics bundles the server collectors and their registry.
type Metrics struct {
	Registry *prometheus.Registry

	// GuardDecisions counts guard verdicts by kind, operation and outcome
	// ("allow" or the violation code).
	GuardDecisions *prometheus.CounterVec

	// HTTPRequests counts requests by method, route and status.
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration tracks request latency by method and route.
	HTTPDuration *prometheus.HistogramVec

	// RateLimited counts rejected requests by limiter name.
	RateLimited *prometheus.CounterVec
}

// New creates a registry with process and Go runtime collectors plus the
// Daleel collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		GuardDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "daleel_guard_decisions_total",
			Help: "Immutability guard decisions by kind, operation and outcome",
		}, []string{"kind", "operation", "outcome"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "daleel_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "daleel_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		}, []string{"method", "route"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "daleel_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		}, []string{"limiter"}),
	}
}

// ObserveDecision implements store.DecisionObserver.
func (m *Metrics) ObserveDecision(req guard.MutationRequest, d guard.Decision) {
	outcome := "allow"
	if v := d.Violation(); v != nil {
		outcome = string(v.Code)
	}
	m.GuardDecisions.WithLabelValues(string(req.Kind), string(req.Operation), outcome).Inc()
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
