package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes Prometheus counters for requests, issue mutations, and
// notification delivery.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpErrors      *prometheus.CounterVec
	issueMutations  *prometheus.CounterVec
	notifyDelivered *prometheus.CounterVec
}

// Mutation outcomes recorded by RecordMutation.
const (
	MutationApplied  = "applied"
	MutationNoop     = "noop"
	MutationRejected = "rejected"
)

// NewMetrics registers all collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by path, method, and status.",
		}, []string{"path", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "Request failures by path, method, and error code.",
		}, []string{"path", "method", "code"}),
		issueMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "issue_mutations_total",
			Help: "Issue mutation requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		notifyDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification dispatch attempts by kind and result.",
		}, []string{"kind", "result"}),
	}
	registry.MustRegister(m.httpRequests, m.httpDuration, m.httpErrors, m.issueMutations, m.notifyDelivered)
	return m
}

// RecordRequest increments counters for a completed request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(path, method, code).Inc()
}

// RecordMutation tracks mutation outcomes per operation.
func (m *Metrics) RecordMutation(operation, outcome string) {
	if m == nil {
		return
	}
	m.issueMutations.WithLabelValues(operation, outcome).Inc()
}

// RecordNotification tracks delivery attempts.
func (m *Metrics) RecordNotification(kind string, delivered bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !delivered {
		result = "failed"
	}
	m.notifyDelivered.WithLabelValues(kind, result).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
