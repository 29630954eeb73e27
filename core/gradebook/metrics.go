package gradebook

import (
	"github.com/prometheus/client_golang/prometheus"
)

// mutation outcomes
const (
	outcomeSuccess  = "success"
	outcomeRollback = "rollback"
	outcomeStale    = "stale"
	outcomeInvalid  = "invalid"
)

// Metrics counts controller mutations. A nil *Metrics is valid and records nothing.
type Metrics struct {
	mutations *prometheus.CounterVec
	inFlight  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_mutations_total",
			Help: "Gradebook mutations by kind and outcome.",
		}, []string{"kind", "outcome"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gradebook_mutations_in_flight",
			Help: "Gradebook mutations waiting for the remote service.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.mutations, m.inFlight)
	}
	return m
}

func (m *Metrics) observe(kind, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) start() func() {
	if m == nil {
		return func() {}
	}
	m.inFlight.Inc()
	return m.inFlight.Dec
}
