package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for IBAN validation.
type Metrics struct {
	// Number of candidates per request
	BatchSize prometheus.Histogram

	// Wall time spent evaluating a whole batch
	EvaluateLatency prometheus.Histogram

	// Verdicts by decision and first failed check
	Outcomes *prometheus.CounterVec

	// Audit events that could not be queued
	AuditDropped prometheus.Counter
}

// New registers the IBAN metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the IBAN metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ibancheck_batch_size",
			Help:    "Number of IBAN candidates submitted per validation call",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ibancheck_evaluate_duration_seconds",
			Help:    "Duration of a full batch evaluation",
			Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ibancheck_verdicts_total",
			Help: "Total verdicts by decision and reason",
		}, []string{"decision", "reason"}), // decision: "valid", "invalid"

		AuditDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "ibancheck_audit_dropped_total",
			Help: "Audit events dropped because the publisher rejected them",
		}),
	}
}

// ObserveBatchSize records the size of a submitted batch.
func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}

// ObserveEvaluateLatency records the duration of a batch evaluation.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementOutcome records a single verdict.
func (m *Metrics) IncrementOutcome(decision, reason string) {
	if m != nil {
		m.Outcomes.WithLabelValues(decision, reason).Inc()
	}
}

// IncrementAuditDropped records an audit event that never reached the publisher.
func (m *Metrics) IncrementAuditDropped() {
	if m != nil {
		m.AuditDropped.Inc()
	}
}
