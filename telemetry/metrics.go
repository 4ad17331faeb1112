// Package telemetry provides Prometheus metrics for stackd.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stackd"

// Metrics collects deployment lifecycle metrics.
type Metrics struct {
	operationsStarted  *prometheus.CounterVec
	operationsFinished *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	activeOperations   prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers the stackd metric set on a private
// registry so tests can create as many instances as they like.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		operationsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_started_total",
				Help:      "Total number of provisioning operations started",
			},
			[]string{"mode"},
		),
		operationsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_finished_total",
				Help:      "Total number of provisioning operations finished, by terminal status",
			},
			[]string{"mode", "status"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of provisioning operations in seconds",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800},
			},
			[]string{"mode"},
		),
		activeOperations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_operations",
				Help:      "Number of provisioning operations currently in flight",
			},
		),
	}

	registry.MustRegister(
		m.operationsStarted,
		m.operationsFinished,
		m.operationDuration,
		m.activeOperations,
	)

	return m
}

// OperationStarted records the start of a deploy or destroy operation.
func (m *Metrics) OperationStarted(mode string) {
	m.operationsStarted.WithLabelValues(mode).Inc()
	m.activeOperations.Inc()
}

// OperationFinished records the end of an operation with its terminal status.
func (m *Metrics) OperationFinished(mode, status string, duration time.Duration) {
	m.operationsFinished.WithLabelValues(mode, status).Inc()
	m.operationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	m.activeOperations.Dec()
}

// Handler returns the HTTP handler serving this metric set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
