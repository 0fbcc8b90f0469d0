// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsReducedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_events_reduced_total",
		Help: "Total number of events folded into the state tree by kind",
	}, []string{"kind"})

	EventQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portal_event_queue_depth",
		Help: "Number of events waiting to be reduced",
	})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_notifications_total",
		Help: "Total number of user-visible notifications raised by context",
	}, []string{"context"})

	TimersPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portal_poll_timers_pending",
		Help: "Number of scheduled polling timers that have not fired",
	})

	TimersFiredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_poll_timers_fired_total",
		Help: "Total number of polling timers that fired by rule",
	}, []string{"rule"})
)

// IncEventReduced records one reduced event.
func IncEventReduced(kind string) {
	EventsReducedTotal.WithLabelValues(kind).Inc()
}

// IncNotification records a raised notification.
func IncNotification(context string) {
	NotificationsTotal.WithLabelValues(context).Inc()
}

// IncTimerFired records a fired polling timer.
func IncTimerFired(rule string) {
	TimersFiredTotal.WithLabelValues(rule).Inc()
}
