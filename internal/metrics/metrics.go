// Package metrics exposes Prometheus instrumentation for the billing and
// authorization paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "peluqueria_payments_total",
		Help: "Payment status transitions by target status.",
	}, []string{"status"})

	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "peluqueria_webhook_events_total",
		Help: "Webhook deliveries by result (processed, duplicate, unmatched, invalid, failed).",
	}, []string{"result"})

	OnboardingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "peluqueria_onboardings_total",
		Help: "Tenant onboardings by result (completed, skipped, failed).",
	}, []string{"result"})

	GateDenialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "peluqueria_gate_denials_total",
		Help: "Feature gate denials by reason.",
	}, []string{"reason"})
)
