// Package metrics provides Prometheus instrumentation for the Sentinel
// moderation services. It exposes counters for submission throughput by
// action, histograms for classification and round-trip latency, and gauges
// for gateway connection counts.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsActive tracks the current number of active WebSocket
	// connections on the gateway.
	ConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sentinel_connections_active",
		Help: "Current number of active WebSocket connections",
	})

	// SubmissionsTotal counts moderated submissions by terminal action:
	// "approve", "flag", "reject", "escalate", or "error" when
	// classification failed.
	SubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_submissions_total",
		Help: "Total number of moderated submissions by action",
	}, []string{"action"})

	// ClassificationLatency records the time spent in the classification
	// backend per pipeline run.
	ClassificationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sentinel_classification_latency_seconds",
		Help:    "Classification backend latency in seconds",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})

	// ClassificationFailures counts pipeline runs aborted by a
	// classification failure.
	ClassificationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_classification_failures_total",
		Help: "Total number of failed classification calls",
	})

	// VerdictRoundTrip records the gateway-observed time from submission to
	// verdict delivery.
	VerdictRoundTrip = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sentinel_verdict_roundtrip_seconds",
		Help:    "Time from content submission to verdict delivery",
		Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
	})

	// StrikesTotal counts strikes recorded against sessions for escalated
	// content.
	StrikesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_strikes_total",
		Help: "Total number of strikes recorded for escalated content",
	})
)

func init() {
	prometheus.MustRegister(
		ConnectionsActive,
		SubmissionsTotal,
		ClassificationLatency,
		ClassificationFailures,
		VerdictRoundTrip,
		StrikesTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
