package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, m.Track("ledger:tb_refresh").End(nil))
	err := m.Track("ledger:tb_refresh").End(errors.New("boom"))
	require.EqualError(t, err, "boom")

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("ledger:tb_refresh", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("ledger:tb_refresh")))
}

func TestCountersIgnoreEmptyBatches(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddViolations(4, 0)
	m.AddViolations(4, 2)
	m.AddRefreshed(0)
	m.AddRefreshed(3)
	require.Equal(t, 2.0, testutil.ToFloat64(m.violations.WithLabelValues("4")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.refreshed))

	var nilMetrics *Metrics
	nilMetrics.AddViolations(1, 1)
	require.NoError(t, nilMetrics.Track("x").End(nil))
}
