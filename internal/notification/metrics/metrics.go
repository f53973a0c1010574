package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for notification delivery.
type Metrics struct {
	DeliveriesTotal  *prometheus.CounterVec
	DispatchDuration prometheus.Histogram
	Unresolved       prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DeliveriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "frontdesk_notification_deliveries_total",
			Help: "Channel deliveries by channel and outcome",
		}, []string{"channel", "outcome"}),
		DispatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "frontdesk_notification_dispatch_duration_seconds",
			Help:    "Duration of a dispatch across all enabled channels",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		Unresolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "frontdesk_notification_unresolved_recipients_total",
			Help: "Dispatches skipped because the recipient could not be loaded",
		}),
	}
}

func (m *Metrics) ObserveDelivery(channel string, err error) {
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.DeliveriesTotal.WithLabelValues(channel, outcome).Inc()
}

// ObserveDispatch records a dispatch. Call with time.Now() at the start.
func (m *Metrics) ObserveDispatch(start time.Time) {
	m.DispatchDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncUnresolved() {
	m.Unresolved.Inc()
}
