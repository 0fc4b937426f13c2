package collaborator

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/planintel"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/telemetry/tracing"
)

// DefaultTimeout bounds a collaborator call when none is configured.
const DefaultTimeout = 10 * time.Second

// OutcomeOK is the outcome recorded for a successful primary call.
const OutcomeOK = "ok"

const tracerName = "github.com/Sanjai-Magilan/insurance-assistant/pkg/collaborator"

// Observer receives one observation per collaborator call. outcome is
// OutcomeOK or the failure reason.
type Observer interface {
	RecordCollaborator(op, outcome string, elapsed time.Duration)
}

// Resilient calls a primary collaborator under a timeout and recovers
// every failure with the deterministic heuristic. Its methods never return
// an error.
type Resilient struct {
	primary  Collaborator
	fallback *Heuristic
	timeout  time.Duration
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
}

// Option configures a Resilient collaborator.
type Option func(*Resilient)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Resilient) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithFallback replaces the default heuristic.
func WithFallback(h *Heuristic) Option {
	return func(r *Resilient) {
		if h != nil {
			r.fallback = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resilient) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(r *Resilient) {
		r.observer = o
	}
}

// WithTracer sets the tracer. The global tracer is used by default.
func WithTracer(t trace.Tracer) Option {
	return func(r *Resilient) {
		if t != nil {
			r.tracer = t
		}
	}
}

// NewResilient wraps primary. A nil primary makes the heuristic the only
// backend.
func NewResilient(primary Collaborator, opts ...Option) *Resilient {
	r := &Resilient{
		primary:  primary,
		fallback: NewHeuristic(nil),
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "collaborator")
	return r
}

// Backend returns the name of the primary collaborator.
func (r *Resilient) Backend() string {
	if r.primary == nil {
		return r.fallback.Name()
	}
	return r.primary.Name()
}

// Extract returns the facts stated in text, from the primary collaborator
// when it succeeds and from the heuristic otherwise.
func (r *Resilient) Extract(ctx context.Context, text string, hints Hints) claim.Facts {
	if r.primary == nil {
		facts, _ := r.fallback.Extract(ctx, text, hints)
		return facts
	}

	facts, err := call(ctx, r, OpExtract, func(ctx context.Context) (claim.Facts, error) {
		return r.primary.Extract(ctx, text, hints)
	})
	if err != nil {
		facts, _ = r.fallback.Extract(ctx, text, hints)
	}
	return facts
}

// Narrate explains an assessment, from the primary collaborator when it
// succeeds and from the template narration otherwise.
func (r *Resilient) Narrate(ctx context.Context, result *eligibility.Result, analysis *planintel.Analysis) string {
	if r.primary == nil || result == nil {
		return Narration(result, analysis)
	}

	text, err := call(ctx, r, OpNarrate, func(ctx context.Context) (string, error) {
		text, err := r.primary.Narrate(ctx, result, analysis)
		if err == nil && text == "" {
			err = ErrEmptyResponse
		}
		return text, err
	})
	if err != nil {
		return Narration(result, analysis)
	}
	return text
}

type outcome[T any] struct {
	value T
	err   error
}

// call runs fn in its own goroutine under the timeout and a span, so a
// backend that ignores cancellation cannot hold the caller. A non-nil
// error is always a *Failure.
func call[T any](ctx context.Context, r *Resilient, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	backend := r.primary.Name()
	ctx, span := r.tracer.Start(ctx, "collaborator."+op,
		trace.WithAttributes(
			attribute.String(tracing.AttrCollaborator, backend),
			attribute.String(tracing.AttrOperation, op),
		),
	)
	defer span.End()

	start := time.Now()
	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome[T]{err: &panicError{value: p}}
			}
		}()
		v, err := fn(ctx)
		done <- outcome[T]{value: v, err: err}
	}()

	var res outcome[T]
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	label := OutcomeOK
	if res.err != nil {
		failure := newFailure(op, backend, res.err)
		label = failure.Reason

		tracing.SetError(span, failure)
		r.logger.Warn("collaborator call failed, using fallback",
			"op", op,
			"backend", backend,
			"reason", failure.Reason,
			"elapsed", time.Since(start),
			"error", failure.Cause,
		)
		res = outcome[T]{err: failure}
	}
	span.SetAttributes(attribute.String(tracing.AttrOutcome, label))
	if r.observer != nil {
		r.observer.RecordCollaborator(op, label, time.Since(start))
	}
	return res.value, res.err
}
