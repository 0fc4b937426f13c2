package conversation

import (
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/session"
)

// Request is one user utterance.
type Request struct {
	// SessionID identifies the conversation. An empty ID starts a new one.
	SessionID string `json:"session_id"`

	// Utterance is the user's text.
	Utterance string `json:"utterance"`

	// PlanID optionally binds the session to a plan.
	PlanID string `json:"plan_id,omitempty"`
}

// Response is the machine's answer to one Request.
type Response struct {
	SessionID string        `json:"session_id"`
	Stage     session.Stage `json:"stage"`

	// Message is the text shown to the user.
	Message string `json:"message"`

	// Data carries stage-specific payloads such as the plan list or the
	// clarification being asked.
	Data map[string]any `json:"data,omitempty"`

	// RequiresInput is true when the message asks a question.
	RequiresInput bool `json:"requires_input"`

	// Suggestions are quick replies for the user.
	Suggestions []string `json:"suggestions,omitempty"`

	// Result is set when the turn produced a final or updated assessment.
	Result *eligibility.Result `json:"result,omitempty"`
}
