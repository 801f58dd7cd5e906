package cardstatsmetrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg).(*prometheusMetrics)
	ctx := context.Background()

	m.RecordOperationAttempt(ctx, "RecomputeEvent", "CardStatsService")
	m.RecordOperationAttempt(ctx, "RecomputeEvent", "CardStatsService")
	m.RecordOperationFailure(ctx, "RecomputeEvent", "CardStatsService")
	m.RecordOperationDuration(ctx, "RecomputeEvent", "CardStatsService", 20*time.Millisecond)
	m.RecordRowsPersisted(ctx, "card_stats", 120)
	m.RecordRowsPersisted(ctx, "card_stats", 30)
	m.RecordScopeRecompute(ctx, "meta", 4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("RecomputeEvent", "CardStatsService")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("RecomputeEvent", "CardStatsService")))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.rowsPersisted.WithLabelValues("card_stats")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recomputes.WithLabelValues("meta")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "cardstats_operation_duration_seconds")
	assert.Contains(t, names, "cardstats_scope_member_events")
}

func TestNewPrometheus_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheus(reg)
	assert.Panics(t, func() { NewPrometheus(reg) })
}
