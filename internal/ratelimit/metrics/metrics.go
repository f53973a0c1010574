package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "frontdesk_ratelimit_decisions_total",
			Help: "Rate limit checks by scope and outcome (allowed, limited, error)",
		}, []string{"scope", "outcome"}),
	}
}

func (m *Metrics) IncDecision(scope, outcome string) {
	m.Decisions.WithLabelValues(scope, outcome).Inc()
}
