package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Chat metrics
	ChatRequests       *prometheus.CounterVec // by response source
	ChatRequestLatency prometheus.Histogram

	// Duplication metrics
	DuplicationChecks prometheus.Counter
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics. Safe to call once; promauto
// registers on the default registry.
func InitMetrics() *Metrics {
	if globalMetrics != nil {
		return globalMetrics
	}

	globalMetrics = &Metrics{
		// Chat requests by source: model, fallback, unconfigured
		ChatRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "complaintdesk_chat_requests_total",
			Help: "Total number of chat requests by response source",
		}, []string{"source"}),

		ChatRequestLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "complaintdesk_chat_request_duration_seconds",
			Help:    "Chat request latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60}, // LLM round trips can be slow
		}),

		DuplicationChecks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "complaintdesk_duplication_checks_total",
			Help: "Total number of pairwise duplication checks performed",
		}),
	}
	return globalMetrics
}

// RecordChatRequest records one chat turn. Nil-safe so handlers work without
// metrics wired (tests).
func (m *Metrics) RecordChatRequest(source ResponseSource, seconds float64) {
	if m == nil {
		return
	}
	m.ChatRequests.WithLabelValues(string(source)).Inc()
	m.ChatRequestLatency.Observe(seconds)
}

// RecordDuplicationChecks adds n pairwise checks to the counter. Nil-safe.
func (m *Metrics) RecordDuplicationChecks(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DuplicationChecks.Add(float64(n))
}
