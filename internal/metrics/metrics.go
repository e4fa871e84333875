// Package metrics provides Prometheus collectors for the review service
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stammdaten"

// Result labels
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// ReviewMetrics counts review operations. A nil *ReviewMetrics is valid and
// records nothing, so services can run without a registry in tests.
type ReviewMetrics struct {
	registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	decisionsSaved    *prometheus.CounterVec
	groupsLast        prometheus.Gauge
}

// NewReviewMetrics creates the collectors and registers them on a fresh registry
func NewReviewMetrics() (*ReviewMetrics, error) {
	registry := prometheus.NewRegistry()
	m := &ReviewMetrics{
		registry: registry,
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_operations_total",
			Help:      "Review operations by operation and result.",
		}, []string{"operation", "result"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "review_operation_duration_seconds",
			Help:      "Duration of review operations including store I/O.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_errors_total",
			Help:      "Failed review operations by error kind.",
		}, []string{"operation", "kind"}),
		decisionsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_saved_total",
			Help:      "Decisions written, by status.",
		}, []string{"status"}),
		groupsLast: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duplicate_groups",
			Help:      "Number of duplicate groups seen by the last listing.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.operationsTotal,
		m.operationDuration,
		m.errorsTotal,
		m.decisionsSaved,
		m.groupsLast,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register review metrics: %w", err)
		}
	}

	return m, nil
}

// Handler exposes the registry in the Prometheus text format
func (m *ReviewMetrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *ReviewMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveOperation records one finished operation. kind is the error kind
// label and is ignored when the operation succeeded.
func (m *ReviewMetrics) ObserveOperation(operation string, started time.Time, kind string, failed bool) {
	if m == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if failed {
		m.operationsTotal.WithLabelValues(operation, ResultError).Inc()
		m.errorsTotal.WithLabelValues(operation, kind).Inc()
		return
	}
	m.operationsTotal.WithLabelValues(operation, ResultSuccess).Inc()
}

// DecisionSaved counts a committed decision
func (m *ReviewMetrics) DecisionSaved(status string) {
	if m == nil {
		return
	}
	m.decisionsSaved.WithLabelValues(status).Inc()
}

// SetGroupCount records the group count of the latest listing
func (m *ReviewMetrics) SetGroupCount(n int) {
	if m == nil {
		return
	}
	m.groupsLast.Set(float64(n))
}
