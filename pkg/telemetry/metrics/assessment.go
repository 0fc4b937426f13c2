package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AssessmentMetrics tracks eligibility evaluations.
//
// Metrics:
//   - <ns>_assessment_total: Evaluations by outcome, claim type and plan
//   - <ns>_assessment_duration_seconds: Evaluation duration histogram
//   - <ns>_assessment_rejections_total: Failed checks by rejection code
type AssessmentMetrics struct {
	total          *prometheus.CounterVec
	duration       prometheus.Histogram
	rejectionTotal *prometheus.CounterVec
}

// NewAssessmentMetrics creates and registers assessment metrics.
func NewAssessmentMetrics(namespace string, registry *prometheus.Registry) *AssessmentMetrics {
	am := &AssessmentMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assessment",
				Name:      "total",
				Help:      "Total number of eligibility evaluations",
			},
			[]string{"outcome", "claim_type", "plan"},
		),

		// Evaluation is CPU-only: 10µs to 100ms
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "assessment",
				Name:      "duration_seconds",
				Help:      "Duration of eligibility evaluations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
		),

		rejectionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assessment",
				Name:      "rejections_total",
				Help:      "Total number of failed eligibility checks",
			},
			[]string{"code"},
		),
	}

	registry.MustRegister(am.total, am.duration, am.rejectionTotal)
	return am
}
