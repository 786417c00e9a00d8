package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()

	m.RequestTransition("PENDING", "ASSIGNED")
	m.RequestTransition("PENDING", "ASSIGNED")
	m.ChatMessage("CUSTOMER")
	m.ObserveHTTP("GET", "/health", "200", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestTransitions.WithLabelValues("PENDING", "ASSIGNED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chatMessages.WithLabelValues("CUSTOMER")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/health", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RequestCreated("x")
		m.InFlight(1)
		m.RealtimeEvent("request:eta")
	})
}
