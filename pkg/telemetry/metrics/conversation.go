package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ConversationMetrics tracks the conversation state machine.
//
// Metrics:
//   - <ns>_conversation_turns_total: Utterances handled, by stage reached
//   - <ns>_conversation_transitions_total: Stage transitions, by from and to
//   - <ns>_conversation_errors_total: Transitions routed to the error stage
type ConversationMetrics struct {
	turnsTotal       *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
}

// NewConversationMetrics creates and registers conversation metrics.
func NewConversationMetrics(namespace string, registry *prometheus.Registry) *ConversationMetrics {
	cm := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "conversation",
				Name:      "turns_total",
				Help:      "Total number of utterances handled",
			},
			[]string{"stage"},
		),

		transitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "conversation",
				Name:      "transitions_total",
				Help:      "Total number of stage transitions",
			},
			[]string{"from", "to"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "conversation",
				Name:      "errors_total",
				Help:      "Total number of transitions that failed and entered the error stage",
			},
			[]string{"stage", "kind"},
		),
	}

	registry.MustRegister(cm.turnsTotal, cm.transitionsTotal, cm.errorsTotal)
	return cm
}
