// Package tracing provides OpenTelemetry tracing for the assistant.
//
// # Overview
//
// Every conversation turn runs in a span named "conversation.turn", with
// child spans for eligibility evaluation and collaborator calls. Spans carry
// the session, stage and plan as attributes and the log handler copies the
// trace and span IDs onto every record written with the span's context.
//
// # Export
//
// Spans are exported over OTLP/gRPC. The connection is lazy, so a missing
// collector never blocks startup.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// # Sampling
//
// SampleRatio selects the sampler, always wrapped in a parent-based sampler:
//   - 1.0: sample everything
//   - 0.0: sample nothing
//   - anything in between: trace ID ratio
//
// When tracing is disabled New returns a noop Tracer that is safe to use.
package tracing
