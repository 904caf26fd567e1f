package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRUDMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewCRUDMetrics(reg)
	require.NoError(t, err)

	m.ObserveOperation("jobs", "create", "success", 20*time.Millisecond)
	m.ObserveOperation("jobs", "create", "success", 10*time.Millisecond)
	m.ObserveOperation("jobs", "get_by_field", "not_found", time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.operations.WithLabelValues("jobs", "create", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.operations.WithLabelValues("jobs", "get_by_field", "not_found")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestNewCRUDMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCRUDMetrics(reg)
	require.NoError(t, err)

	second, err := NewCRUDMetrics(reg)
	require.NoError(t, err)

	second.ObserveOperation("jobs", "delete", "success", time.Millisecond)
	assert.Same(t, first.operations, second.operations)
	assert.Equal(t, float64(1), testutil.ToFloat64(first.operations.WithLabelValues("jobs", "delete", "success")))
}

func TestNewCRUDMetrics_ConflictingCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	// Same name, different labels: not reusable.
	require.NoError(t, reg.Register(prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "crud_operations_total", Help: "other"},
		[]string{"table"},
	)))

	_, err := NewCRUDMetrics(reg)
	assert.Error(t, err)
}
