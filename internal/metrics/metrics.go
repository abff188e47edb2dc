// Package metrics holds the Prometheus collectors shared by the web client
// and the reference backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hrpulse"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by route, method and status code.",
	}, []string{"route", "method", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	upstreamCalls = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "call_duration_seconds",
		Help:      "Backend API call latency, by operation and outcome.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	rosterEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "roster",
		Name:      "events_total",
		Help:      "Per-session roster cache events (hit, load, stale, patch, reload).",
	}, []string{"event"})
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveUpstream records one backend API call. outcome is "ok" or "error".
func ObserveUpstream(operation, outcome string, elapsed time.Duration) {
	upstreamCalls.WithLabelValues(operation, outcome).Observe(elapsed.Seconds())
}

// RecordRosterEvent counts a roster cache event.
func RecordRosterEvent(event string) {
	rosterEvents.WithLabelValues(event).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
