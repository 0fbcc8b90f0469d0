// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Status endpoint metrics
	StatusHTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_status_http_request_duration_seconds",
		Help:    "Status endpoint request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	StatusHTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portal_status_http_requests_in_flight",
		Help: "Current number of status endpoint requests being served",
	})
)

// ObserveStatusRequest records one served status endpoint request. route is
// the matched pattern, never the raw path.
func ObserveStatusRequest(method, route string, status int, d time.Duration) {
	StatusHTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
