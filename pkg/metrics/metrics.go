// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ChatTurnsTotal tracks total assistant chat turns by outcome.
	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_chat_turns_total",
			Help: "Total assistant chat turns",
		},
		[]string{"status"},
	)

	// LLMRequestDuration tracks completion request duration.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "LLM completion request duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"model", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// IssuesTotal tracks issue mutations by action.
	IssuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issues_total",
			Help: "Total issue mutations",
		},
		[]string{"action"},
	)

	// IssueEventsPublished tracks issue lifecycle events published to the broker.
	IssueEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issue_events_published_total",
			Help: "Issue lifecycle events published",
		},
		[]string{"type", "status"},
	)
)

// RecordRequest records an HTTP request metric.
func RecordRequest(method, path, status string, durationSec float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSec)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMRequest records a completion request metric.
func RecordLLMRequest(model, status string, durationSec float64, tokensIn, tokensOut int) {
	LLMRequestDuration.WithLabelValues(model, status).Observe(durationSec)
	if tokensIn > 0 {
		LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	}
	if tokensOut > 0 {
		LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
	}
}
