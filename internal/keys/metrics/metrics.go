package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks key custody.
type Metrics struct {
	CheckoutsTotal  *prometheus.CounterVec
	ReturnsTotal    prometheus.Counter
	DeniedTotal     *prometheus.CounterVec
	CustodyDuration prometheus.Histogram
	OverdueKeys     prometheus.Gauge
	SecurityAlerts  prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CheckoutsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "frontdesk_keys_checkouts_total",
			Help: "Successful key checkouts by access level",
		}, []string{"access_level"}),
		ReturnsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "frontdesk_keys_returns_total",
			Help: "Keys returned to the desk",
		}),
		DeniedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "frontdesk_keys_checkout_denied_total",
			Help: "Refused checkouts by reason",
		}, []string{"reason"}),
		CustodyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "frontdesk_keys_custody_duration_seconds",
			Help:    "Time between checkout and return",
			Buckets: []float64{300, 900, 1800, 3600, 4 * 3600, 8 * 3600, 24 * 3600, 72 * 3600},
		}),
		OverdueKeys: factory.NewGauge(prometheus.GaugeOpts{
			Name: "frontdesk_keys_overdue",
			Help: "Checked-out keys past their expected return, as of the last overdue query",
		}),
		SecurityAlerts: factory.NewCounter(prometheus.CounterOpts{
			Name: "frontdesk_keys_security_alerts_total",
			Help: "Checkout alerts sent to security staff",
		}),
	}
}

func (m *Metrics) IncCheckout(level string) {
	m.CheckoutsTotal.WithLabelValues(level).Inc()
}

func (m *Metrics) IncDenied(reason string) {
	m.DeniedTotal.WithLabelValues(reason).Inc()
}

// ObserveReturn records one return and how long the key was out.
func (m *Metrics) ObserveReturn(checkedOut, returned time.Time) {
	m.ReturnsTotal.Inc()
	if !checkedOut.IsZero() && returned.After(checkedOut) {
		m.CustodyDuration.Observe(returned.Sub(checkedOut).Seconds())
	}
}

func (m *Metrics) SetOverdue(n int) {
	m.OverdueKeys.Set(float64(n))
}

func (m *Metrics) AddSecurityAlerts(n int) {
	m.SecurityAlerts.Add(float64(n))
}
