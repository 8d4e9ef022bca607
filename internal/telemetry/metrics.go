// Package telemetry holds the Prometheus metrics and OpenTelemetry setup.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ledger API. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	movements           *prometheus.CounterVec
	billPayments        *prometheus.CounterVec
	rollovers           *prometheus.CounterVec
	integrityMismatches *prometheus.CounterVec
	eventsPublished     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxo_http_requests_total",
				Help: "Total HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fluxo_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		movements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxo_movements_total",
				Help: "Movements written to the ledger by operation.",
			},
			[]string{"operation"},
		),
		billPayments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxo_bill_payments_total",
				Help: "Bill payment entries by outcome (applied or skipped).",
			},
			[]string{"outcome"},
		),
		rollovers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxo_rollovers_total",
				Help: "Box rollovers by kind (secondary or principal) and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		integrityMismatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxo_integrity_mismatches_total",
				Help: "Integrity checks that found a balance mismatch.",
			},
			[]string{"scope"},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxo_events_published_total",
				Help: "Ledger events handed to the publisher by status.",
			},
			[]string{"status"},
		),
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// IncrMovement counts a movement create or delete.
func (m *Metrics) IncrMovement(operation string) {
	if m == nil {
		return
	}
	m.movements.WithLabelValues(operation).Inc()
}

// IncrBillPayment counts a processed payment entry.
func (m *Metrics) IncrBillPayment(outcome string) {
	if m == nil {
		return
	}
	m.billPayments.WithLabelValues(outcome).Inc()
}

// IncrRollover counts a rollover attempt.
func (m *Metrics) IncrRollover(kind, outcome string) {
	if m == nil {
		return
	}
	m.rollovers.WithLabelValues(kind, outcome).Inc()
}

// IncrIntegrityMismatch counts a failed integrity check.
func (m *Metrics) IncrIntegrityMismatch(scope string) {
	if m == nil {
		return
	}
	m.integrityMismatches.WithLabelValues(scope).Inc()
}

// IncrEvent counts a publish attempt.
func (m *Metrics) IncrEvent(status string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(status).Inc()
}
