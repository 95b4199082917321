package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "indicator_engine"

// Metrics holds the collectors for indicator function invocations
type Metrics struct {
	registry *prometheus.Registry

	invocations   *prometheus.CounterVec
	errors        *prometheus.CounterVec
	rowsProcessed *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewMetrics creates collectors registered on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invocations_total",
				Help:      "Total number of function invocations",
			},
			[]string{"function"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of failed invocations by error category",
			},
			[]string{"function", "category"},
		),

		rowsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_processed_total",
				Help:      "Total number of input rows scanned",
			},
			[]string{"function"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "duration_seconds",
				Help:      "Distribution of invocation latency",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"function"},
		),
	}

	m.registry.MustRegister(m.invocations, m.errors, m.rowsProcessed, m.duration)
	return m
}

// Registry exposes the underlying registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveInvocation records one completed call
func (m *Metrics) ObserveInvocation(function string, rows int, elapsed time.Duration) {
	m.invocations.WithLabelValues(function).Inc()
	m.rowsProcessed.WithLabelValues(function).Add(float64(rows))
	m.duration.WithLabelValues(function).Observe(elapsed.Seconds())
}

// RecordError records a failed call
func (m *Metrics) RecordError(function, category string) {
	m.invocations.WithLabelValues(function).Inc()
	m.errors.WithLabelValues(function, category).Inc()
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler creates a handler serving m's registry
func NewMetricsHandler(m *Metrics) *MetricsHandler {
	return &MetricsHandler{
		handler: promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}),
	}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}
