package coerce

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/roach88/dtengine/internal/dtype"
)

const (
	opCoerce      = "coerce"
	opTryCoerce   = "try_coerce"
	opCoerceValue = "coerce_value"
)

// Metrics counts coercions by target kind. A nil *Metrics records nothing.
type Metrics struct {
	coercions    *prometheus.CounterVec
	failureCases *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewMetrics creates the coercion metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		coercions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dtengine_coercions_total",
				Help: "Coercions by target kind, operation and outcome",
			},
			[]string{"kind", "op", "outcome"},
		),
		failureCases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dtengine_failure_cases_total",
				Help: "Elements reported as failure cases by target kind",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dtengine_coercion_duration_seconds",
				Help:    "Duration of coercions",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
			[]string{"kind", "op"},
		),
	}
	for _, c := range []prometheus.Collector{m.coercions, m.failureCases, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(t dtype.Type, op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	kind := t.Kind().String()
	outcome := "ok"
	switch {
	case IsCoercionError(err):
		outcome = "failed"
	case err != nil:
		outcome = "error"
	}
	m.coercions.WithLabelValues(kind, op, outcome).Inc()
	m.duration.WithLabelValues(kind, op).Observe(elapsed.Seconds())
}

func (m *Metrics) failures(t dtype.Type, n int) {
	if m == nil || n == 0 {
		return
	}
	m.failureCases.WithLabelValues(t.Kind().String()).Add(float64(n))
}
