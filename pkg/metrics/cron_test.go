package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronMetricsLabelsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronMetrics(reg)
	end := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	m.ObserveRun("order-pending-sweep", 120*time.Millisecond, end, nil)
	m.ObserveRun("order-pending-sweep", 80*time.Millisecond, end, errors.New("2 orders failed"))
	m.ObserveRun("outbox-prune", time.Second, end, nil)
	m.IncSkippedCycle()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("order-pending-sweep", outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("order-pending-sweep", outcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("outbox-prune", outcomeOK)))
	assert.Equal(t, float64(end.Unix()), testutil.ToFloat64(m.lastSuccess.WithLabelValues("order-pending-sweep")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	hist := findMetricFamily(mfs, "isladelcafe_cron_job_duration_seconds")
	require.NotNil(t, hist)
	assert.Len(t, hist.GetMetric(), 2)
	assert.Equal(t, 2, testutil.CollectAndCount(m.lastSuccess))
}

func TestCronMetricsNilSafe(t *testing.T) {
	var m *CronMetrics
	m.ObserveRun("job", time.Second, time.Now(), nil)
	m.IncSkippedCycle()
	NewCronMetrics(nil).ObserveRun("", 0, time.Now(), errors.New("x"))
}
