package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"jobboard/internal/repository"
)

// CRUDMetrics records repository operation counts and latencies.
type CRUDMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var _ repository.Recorder = (*CRUDMetrics)(nil)

// NewCRUDMetrics creates the collectors and registers them with reg. When
// reg already holds them, the registered collectors are shared.
func NewCRUDMetrics(reg prometheus.Registerer) (*CRUDMetrics, error) {
	m := &CRUDMetrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crud_operations_total",
				Help: "Total number of repository operations by outcome.",
			},
			[]string{"resource", "operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crud_operation_duration_seconds",
				Help:    "Latency of repository operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resource", "operation"},
		),
	}

	var err error
	if m.operations, err = registerOrReuse(reg, m.operations); err != nil {
		return nil, err
	}
	if m.duration, err = registerOrReuse(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or returns the identical collector already
// registered under the same descriptor. Any other registration error is
// returned as is.
func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	var zero C
	return zero, err
}

// ObserveOperation implements repository.Recorder.
func (m *CRUDMetrics) ObserveOperation(resource, operation, outcome string, elapsed time.Duration) {
	m.operations.WithLabelValues(resource, operation, outcome).Inc()
	m.duration.WithLabelValues(resource, operation).Observe(elapsed.Seconds())
}
