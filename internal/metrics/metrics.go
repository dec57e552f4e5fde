// ABOUTME: Prometheus instruments for the chat send pipeline
// ABOUTME: Nil-safe so components work with metrics disabled

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Send outcomes recorded by ObserveSend.
const (
	OutcomeAssistant      = "assistant"
	OutcomeAgentError     = "agent_error"
	OutcomeTransportError = "transport_error"
	OutcomeRejectedEmpty  = "rejected_empty"
	OutcomeRejectedBusy   = "rejected_busy"
)

// Metrics holds the pipeline instruments. A nil *Metrics records nothing.
type Metrics struct {
	SendsTotal    *prometheus.CounterVec
	CallDuration  prometheus.Histogram
	SendsInFlight prometheus.Gauge
	Conversations prometheus.Gauge
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SendsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coven_chat_sends_total",
				Help: "Message submissions by outcome",
			},
			[]string{"outcome"},
		),
		CallDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coven_chat_agent_call_duration_seconds",
				Help:    "Duration of agent calls in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		SendsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "coven_chat_sends_in_flight",
				Help: "1 while an agent call is outstanding",
			},
		),
		Conversations: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "coven_chat_conversations",
				Help: "Number of live conversations",
			},
		),
	}
}

// ObserveSend counts one submission outcome.
func (m *Metrics) ObserveSend(outcome string) {
	if m == nil {
		return
	}
	m.SendsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCall records the duration of one agent call.
func (m *Metrics) ObserveCall(d time.Duration) {
	if m == nil {
		return
	}
	m.CallDuration.Observe(d.Seconds())
}

// SetInFlight reflects the in-flight flag.
func (m *Metrics) SetInFlight(sending bool) {
	if m == nil {
		return
	}
	if sending {
		m.SendsInFlight.Set(1)
	} else {
		m.SendsInFlight.Set(0)
	}
}

// SetConversations records the live conversation count.
func (m *Metrics) SetConversations(n int) {
	if m == nil {
		return
	}
	m.Conversations.Set(float64(n))
}
