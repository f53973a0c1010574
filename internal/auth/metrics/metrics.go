package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes recorded by ObserveLogin.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeInactive           = "inactive"
	OutcomeError              = "error"
)

// Metrics provides observability for authentication.
type Metrics struct {
	LoginsTotal       *prometheus.CounterVec
	LoginDuration     prometheus.Histogram
	SessionsIssued    *prometheus.CounterVec
	SessionsRevoked   prometheus.Counter
	AuthenticateTotal *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "frontdesk_auth_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		LoginDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "frontdesk_auth_login_duration_seconds",
			Help:    "Duration of login attempts, including password hashing",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		SessionsIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "frontdesk_auth_sessions_issued_total",
			Help: "Sessions recorded by token kind",
		}, []string{"kind"}),
		SessionsRevoked: factory.NewCounter(prometheus.CounterOpts{
			Name: "frontdesk_auth_logouts_total",
			Help: "Logout and logout-all requests",
		}),
		AuthenticateTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "frontdesk_auth_authenticate_total",
			Help: "Bearer token checks by result",
		}, []string{"result"}),
	}
}

// ObserveLogin records one login attempt. Call with time.Now() at the start.
func (m *Metrics) ObserveLogin(outcome string, start time.Time) {
	m.LoginsTotal.WithLabelValues(outcome).Inc()
	m.LoginDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncSessionIssued(kind string) {
	m.SessionsIssued.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncLogout() {
	m.SessionsRevoked.Inc()
}

func (m *Metrics) IncAuthenticate(ok bool) {
	result := "rejected"
	if ok {
		result = "accepted"
	}
	m.AuthenticateTotal.WithLabelValues(result).Inc()
}
