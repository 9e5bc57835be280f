package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions   *prometheus.CounterVec
	StoreErrors prometheus.Counter
	Degraded    prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ibancheck_ratelimit_decisions_total",
			Help: "Rate limit decisions by key kind and outcome",
		}, []string{"kind", "outcome"}), // outcome: "allowed", "denied", "bypassed"
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "ibancheck_ratelimit_store_errors_total",
			Help: "Total number of rate limit store failures",
		}),
		Degraded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ibancheck_ratelimit_degraded",
			Help: "1 while the in-memory fallback limiter is serving requests",
		}),
	}
}

func (m *Metrics) IncrementDecision(kind, outcome string) {
	if m != nil {
		m.Decisions.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) IncrementStoreErrors() {
	if m != nil {
		m.StoreErrors.Inc()
	}
}

func (m *Metrics) SetDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.Degraded.Set(1)
	} else {
		m.Degraded.Set(0)
	}
}
