package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CollaboratorMetrics tracks natural-language collaborator calls.
//
// Metrics:
//   - <ns>_collaborator_calls_total: Calls by operation and outcome
//   - <ns>_collaborator_call_duration_seconds: Call latency histogram
type CollaboratorMetrics struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
}

// NewCollaboratorMetrics creates and registers collaborator metrics.
func NewCollaboratorMetrics(namespace string, registry *prometheus.Registry) *CollaboratorMetrics {
	cm := &CollaboratorMetrics{
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "collaborator",
				Name:      "calls_total",
				Help:      "Total number of collaborator calls by outcome (ok or failure reason)",
			},
			[]string{"op", "outcome"},
		),

		// Model latencies (100ms - 10s timeout)
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "collaborator",
				Name:      "call_duration_seconds",
				Help:      "Duration of collaborator calls in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
			[]string{"op"},
		),
	}

	registry.MustRegister(cm.callsTotal, cm.callDuration)
	return cm
}
