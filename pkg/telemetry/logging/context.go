package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// SessionKey is the context key for session identifiers.
	SessionKey contextKey = "session_id"

	// PlanKey is the context key for the bound plan ID.
	PlanKey contextKey = "plan_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithSession adds a session identifier to the context.
func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetSession retrieves the session identifier from the context.
func GetSession(ctx context.Context) string {
	if session, ok := ctx.Value(SessionKey).(string); ok {
		return session
	}
	return ""
}

// WithPlan adds a plan ID to the context.
func WithPlan(ctx context.Context, planID string) context.Context {
	return context.WithValue(ctx, PlanKey, planID)
}

// GetPlan retrieves the plan ID from the context.
func GetPlan(ctx context.Context) string {
	if planID, ok := ctx.Value(PlanKey).(string); ok {
		return planID
	}
	return ""
}

// contextFields returns the log fields carried by ctx, including the IDs of
// the active span.
func contextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var fields []slog.Attr
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, slog.String(string(RequestIDKey), requestID))
	}
	if session := GetSession(ctx); session != "" {
		fields = append(fields, slog.String(string(SessionKey), session))
	}
	if planID := GetPlan(ctx); planID != "" {
		fields = append(fields, slog.String(string(PlanKey), planID))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return fields
}
