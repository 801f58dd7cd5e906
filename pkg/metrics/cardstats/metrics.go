// Package cardstatsmetrics records Prometheus metrics for card statistics recomputes.
package cardstatsmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CardStatsMetrics is the metrics surface used by the card statistics service.
type CardStatsMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
	RecordRowsPersisted(ctx context.Context, table string, rows int)
	RecordScopeRecompute(ctx context.Context, scopeKind string, members int)
}

const namespace = "cardstats"

type prometheusMetrics struct {
	attempts      *prometheus.CounterVec
	successes     *prometheus.CounterVec
	failures      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	rowsPersisted *prometheus.CounterVec
	recomputes    *prometheus.CounterVec
	memberEvents  *prometheus.HistogramVec
}

// NewPrometheus registers the card statistics collectors on reg.
func NewPrometheus(reg prometheus.Registerer) CardStatsMetrics {
	factory := promauto.With(reg)
	return &prometheusMetrics{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"operation", "service"}),
		successes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_success_total",
			Help:      "Service operations that completed without error.",
		}, []string{"operation", "service"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Service operations that returned an error or panicked.",
		}, []string{"operation", "service"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation", "service"}),
		rowsPersisted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_persisted_total",
			Help:      "Derived rows written by replace transactions.",
		}, []string{"table"}),
		recomputes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scope_recomputes_total",
			Help:      "Scopes recomputed, by kind.",
		}, []string{"scope_kind"}),
		memberEvents: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scope_member_events",
			Help:      "Member events resolved per recomputed scope.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"scope_kind"}),
	}
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.duration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordRowsPersisted(_ context.Context, table string, rows int) {
	m.rowsPersisted.WithLabelValues(table).Add(float64(rows))
}

func (m *prometheusMetrics) RecordScopeRecompute(_ context.Context, scopeKind string, members int) {
	m.recomputes.WithLabelValues(scopeKind).Inc()
	m.memberEvents.WithLabelValues(scopeKind).Observe(float64(members))
}
