package reporter

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeDelivered = "delivered"
	outcomeIgnored   = "ignored"
	outcomeFailed    = "failed"

	attemptOK             = "ok"
	attemptTransportError = "transport_error"
)

// Metrics counts reports and delivery attempts
type Metrics struct {
	reports  *prom.CounterVec
	attempts *prom.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// gets a private registry.
func NewMetrics(reg prom.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	m := &Metrics{
		reports: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "lograh",
			Name:      "reports_total",
			Help:      "Reports handled by outcome",
		}, []string{"outcome"}),
		attempts: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "lograh",
			Name:      "delivery_attempts_total",
			Help:      "Delivery attempts by result",
		}, []string{"result"}),
	}

	for _, collector := range []prom.Collector{m.reports, m.attempts} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordAttempt(err error) {
	if m == nil {
		return
	}
	result := attemptOK
	if err != nil {
		result = attemptTransportError
	}
	m.attempts.WithLabelValues(result).Inc()
}
