package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on assistant spans. Custom keys live under the
// "assistant.*" namespace.
const (
	// Conversation attributes
	AttrSessionID  = "assistant.session_id"
	AttrStage      = "assistant.stage"
	AttrStageFrom  = "assistant.stage.from"
	AttrStageTo    = "assistant.stage.to"
	AttrTurn       = "assistant.turn"
	AttrPlanID     = "assistant.plan_id"
	AttrClaimType  = "assistant.claim_type"
	AttrEligible   = "assistant.eligible"
	AttrRejections = "assistant.rejections"

	// Collaborator attributes
	AttrCollaborator = "assistant.collaborator"
	AttrOperation    = "assistant.collaborator.op"
	AttrOutcome      = "assistant.collaborator.outcome"

	// Error attributes
	AttrErrorType = "assistant.error.type"
)

// SetSessionAttributes sets the session and stage attributes on a span.
// Empty values are skipped.
//
// Example:
//
//	SetSessionAttributes(span, "3f2c...", "data_gathering", "star-comprehensive")
func SetSessionAttributes(span trace.Span, sessionID, stage, planID string) {
	attrs := make([]attribute.KeyValue, 0, 3)
	if sessionID != "" {
		attrs = append(attrs, attribute.String(AttrSessionID, sessionID))
	}
	if stage != "" {
		attrs = append(attrs, attribute.String(AttrStage, stage))
	}
	if planID != "" {
		attrs = append(attrs, attribute.String(AttrPlanID, planID))
	}
	span.SetAttributes(attrs...)
}

// SetTransitionAttributes records a stage change on a span.
func SetTransitionAttributes(span trace.Span, from, to string) {
	span.SetAttributes(
		attribute.String(AttrStageFrom, from),
		attribute.String(AttrStageTo, to),
	)
}

// SetAssessmentAttributes sets the outcome of an eligibility evaluation.
func SetAssessmentAttributes(span trace.Span, eligible bool, claimType string, rejections []string) {
	attrs := []attribute.KeyValue{attribute.Bool(AttrEligible, eligible)}
	if claimType != "" {
		attrs = append(attrs, attribute.String(AttrClaimType, claimType))
	}
	if len(rejections) > 0 {
		attrs = append(attrs, attribute.StringSlice(AttrRejections, rejections))
	}
	span.SetAttributes(attrs...)
}

// SetErrorType tags a span with an error classification such as "panic".
func SetErrorType(span trace.Span, kind string) {
	if kind != "" {
		span.SetAttributes(attribute.String(AttrErrorType, kind))
	}
}

// AddEvent adds a named event to the span with optional attributes.
//
// Example:
//
//	AddEvent(span, "clarification_dropped",
//	    attribute.String("field", "policy_start_date"),
//	)
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
