// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal counts completed fetch-and-merge cycles by outcome.
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cs2_backend_cycles_total",
		Help: "Fetch-and-merge cycles by outcome.",
	}, []string{"outcome"})

	// EventsDetected counts detector events by kind.
	EventsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cs2_backend_events_detected_total",
		Help: "Match transitions detected, by event kind.",
	}, []string{"kind"})

	// NotificationsSent counts successful per-token deliveries.
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cs2_backend_notifications_sent_total",
		Help: "Push notifications delivered to tokens.",
	})

	// TokensPruned counts subscriptions removed after the transport
	// reported their token permanently invalid.
	TokensPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cs2_backend_tokens_pruned_total",
		Help: "Subscriptions deleted due to invalid delivery tokens.",
	})
)
