// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_api_requests_total",
		Help: "Total number of portal API requests by event kind, method and outcome",
	}, []string{"kind", "method", "outcome"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_api_request_duration_seconds",
		Help:    "Portal API request duration in seconds, excluding queueing",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "outcome"})

	APIRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portal_api_requests_in_flight",
		Help: "Number of portal API requests currently on the wire",
	})

	APIRequestsQueued = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portal_api_requests_queued",
		Help: "Number of portal API requests waiting for a dispatch slot",
	})

	APIRequestQueueWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "portal_api_request_queue_wait_seconds",
		Help:    "Time requests spent waiting for a dispatch slot",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	})
)

// Request outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeCancelled = "cancelled"
)

// RecordAPIRequest records a finished API request.
func RecordAPIRequest(kind, method, outcome string, d time.Duration) {
	APIRequestsTotal.WithLabelValues(kind, method, outcome).Inc()
	if outcome != OutcomeCancelled {
		APIRequestDuration.WithLabelValues(method, outcome).Observe(d.Seconds())
	}
}
