package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.PassFinished("completed", time.Second)
	m.PassFinished("completed", time.Second)
	m.PassFailed("conflict", time.Second)
	m.Conflict()
	m.Committed(42, 7, decimal.RequireFromString("123.45"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Passes.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PassFailures.WithLabelValues("conflict")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Conflicts))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.NodesAllocated.WithLabelValues("42")))
	assert.InDelta(t, 123.45, testutil.ToFloat64(m.MediaBudget.WithLabelValues("42")), 1e-9)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.PassFinished("completed", time.Second)
		m.PassFailed("upstream", time.Second)
		m.Conflict()
		m.Committed(1, 1, decimal.Zero)
		m.PublishFailed()
		m.Sweep(time.Second)
	})
}
