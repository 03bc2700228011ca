package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the prometheus collectors exposed on /metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
	SuggestionCache *prometheus.CounterVec
}

// NewMetrics registers collectors against the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "helpdesk",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "helpdesk",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "path", "status"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "helpdesk",
				Name:      "http_errors_total",
				Help:      "Request errors by path and error code.",
			},
			[]string{"method", "path", "code"},
		),
		SuggestionCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "helpdesk",
				Subsystem: "ai",
				Name:      "suggestion_cache_total",
				Help:      "AI suggestion cache lookups by outcome (hit|miss).",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.ErrorsTotal, m.SuggestionCache)
	return m
}

// RecordRequest increments counters for a completed request.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.RequestsTotal.WithLabelValues(method, path, code).Inc()
	m.RequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(method, path, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(method, path, code).Inc()
}

// RecordSuggestionCache increments cache hit/miss counters.
func (m *Metrics) RecordSuggestionCache(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.SuggestionCache.WithLabelValues(outcome).Inc()
}
