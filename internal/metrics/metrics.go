// Package metrics exposes prometheus instruments for the session lifecycle.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "authclient"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultStale   = "stale"
)

type Metrics struct {
	logins   *prometheus.CounterVec
	renewals *prometheus.CounterVec
	logouts  prometheus.Counter
	loggedIn prometheus.Gauge
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		renewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renewals_total",
			Help:      "Access token renewals by result.",
		}, []string{"result"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Transitions from logged in to logged out.",
		}),
		loggedIn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "logged_in",
			Help:      "1 while a session is established.",
		}),
	}

	for _, c := range []prometheus.Collector{m.logins, m.renewals, m.logouts, m.loggedIn} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) Renewal(result string) {
	if m == nil {
		return
	}
	m.renewals.WithLabelValues(result).Inc()
}

func (m *Metrics) LoggedIn() {
	if m == nil {
		return
	}
	m.loggedIn.Set(1)
}

func (m *Metrics) LoggedOut() {
	if m == nil {
		return
	}
	m.logouts.Inc()
	m.loggedIn.Set(0)
}
