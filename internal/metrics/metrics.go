// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homefix_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"route", "method", "status"},
	)

	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homefix_classifications_total",
			Help: "Total number of images classified, by predicted labels",
		},
		[]string{"defect", "location"},
	)

	ConversationTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homefix_conversation_turns_total",
			Help: "Total number of chat turns, by outcome",
		},
		[]string{"outcome"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homefix_active_sessions",
			Help: "Number of conversation sessions held in memory",
		},
	)

	SearchFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homefix_search_fallbacks_total",
			Help: "Total number of recommendation groups served from fallback links",
		},
		[]string{"reason"},
	)

	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "homefix_external_call_duration_seconds",
			Help: "Duration of calls to external services in seconds",
		},
		[]string{"service", "result"},
	)
)

// ObserveExternalCall records one call to service that began at start.
func ObserveExternalCall(service string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ExternalCallDuration.WithLabelValues(service, result).Observe(time.Since(start).Seconds())
}
