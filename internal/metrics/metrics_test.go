// ABOUTME: Tests for pipeline metrics
// ABOUTME: Uses a private registry and testutil to read counter values

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSend(OutcomeAssistant)
	m.ObserveSend(OutcomeAssistant)
	m.ObserveSend(OutcomeTransportError)
	m.ObserveCall(150 * time.Millisecond)
	m.SetInFlight(true)
	m.SetConversations(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SendsTotal.WithLabelValues(OutcomeAssistant)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SendsTotal.WithLabelValues(OutcomeTransportError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SendsInFlight))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Conversations))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CallDuration))

	m.SetInFlight(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SendsInFlight))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSend(OutcomeAssistant)
		m.ObserveCall(time.Second)
		m.SetInFlight(true)
		m.SetConversations(1)
	})
}
