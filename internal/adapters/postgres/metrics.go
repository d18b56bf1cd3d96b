package postgres

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jsamuelsen/quotes-service/internal/domain"
)

const (
	metricsNamespace = "quotes"
	metricsSubsystem = "store"

	LabelOperation = "operation"
	LabelOutcome   = "outcome"

	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics records repository operation counts and latencies.
// A nil *Metrics records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the store metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "operations_total",
				Help:      "Quote store operations by outcome",
			},
			[]string{LabelOperation, LabelOutcome},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "operation_duration_seconds",
				Help:      "Quote store operation latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{LabelOperation},
		),
	}
}

func (m *Metrics) observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}

	outcome := OutcomeOK

	switch {
	case err == nil:
	case domain.IsNotFound(err):
		outcome = OutcomeNotFound
	default:
		outcome = OutcomeError
	}

	m.operations.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
