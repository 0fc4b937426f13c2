// Package telemetry groups the assistant's observability packages.
//
// # Components
//
//   - logging: slog handler with PII redaction and context fields
//   - metrics: Prometheus collector for turns, assessments and collaborator calls
//   - tracing: OpenTelemetry spans exported over OTLP/gRPC
//   - health: liveness and readiness endpoints served next to /metrics
//
// Every component can be disabled in config. Disabled metrics and tracing
// are no-ops, so callers never branch on whether they are on.
package telemetry
