package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrMovement("create")
	m.IncrMovement("create")
	m.IncrMovement("delete")
	m.IncrBillPayment("skipped")
	m.IncrRollover("secondary", "conflict")
	m.IncrIntegrityMismatch("principal")
	m.ObserveHTTP("/caixas", "GET", "200", 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.movements.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movements.WithLabelValues("delete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.billPayments.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rollovers.WithLabelValues("secondary", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.integrityMismatches.WithLabelValues("principal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/caixas", "GET", "200")))
}

func TestMetricsPrivateRegistry(t *testing.T) {
	// Two instances must not collide on registration.
	a := NewMetrics()
	b := NewMetrics()
	a.IncrEvent("ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.eventsPublished.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.eventsPublished.WithLabelValues("ok")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrMovement("create")
		m.ObserveHTTP("/", "GET", "200", time.Second)
	})
}

func TestInitTracingWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
