package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for event publishing.
type Metrics struct {
	Published   prometheus.Counter
	Failed      prometheus.Counter
	Dropped     prometheus.Counter
	BreakerOpen prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Published: factory.NewCounter(prometheus.CounterOpts{
			Name: "crm_contact_events_published_total",
			Help: "Total number of contact events acknowledged by the broker",
		}),
		Failed: factory.NewCounter(prometheus.CounterOpts{
			Name: "crm_contact_events_failed_total",
			Help: "Total number of contact events the broker rejected or never acknowledged",
		}),
		Dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "crm_contact_events_dropped_total",
			Help: "Total number of contact events dropped while the circuit breaker was open",
		}),
		BreakerOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "crm_contact_events_circuit_open",
			Help: "Current circuit breaker state (0=closed, 1=open)",
		}),
	}
}

func (m *Metrics) IncPublished() {
	m.Published.Inc()
}

func (m *Metrics) IncFailed() {
	m.Failed.Inc()
}

func (m *Metrics) IncDropped() {
	m.Dropped.Inc()
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if open {
		m.BreakerOpen.Set(1)
	} else {
		m.BreakerOpen.Set(0)
	}
}
