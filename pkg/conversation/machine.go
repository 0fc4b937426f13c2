package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/clarify"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/collaborator"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/extract"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/planintel"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/plans"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/session"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/telemetry/logging"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/telemetry/metrics"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/telemetry/tracing"
)

const errorPrompt = "Sorry, something went wrong on my side. " +
	"Please tell me your plan and the medical condition again and I'll pick up from there."

// Machine is the conversation state machine. It is safe for concurrent use.
type Machine struct {
	store     session.Store
	plans     plans.Repository
	engine    *eligibility.Engine
	analyzer  *planintel.Analyzer
	clarifier *clarify.Generator
	collab    *collaborator.Resilient
	metrics   *metrics.Collector
	tracer    trace.Tracer
	logger    *slog.Logger
	now       func() time.Time

	transcriptLimit int
}

// Option configures a Machine.
type Option func(*Machine)

// WithCollaborator sets the natural-language collaborator. By default only
// the deterministic heuristics are used.
func WithCollaborator(c *collaborator.Resilient) Option {
	return func(m *Machine) {
		m.collab = c
	}
}

// WithClarifier replaces the default clarification generator.
func WithClarifier(g *clarify.Generator) Option {
	return func(m *Machine) {
		m.clarifier = g
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(m *Machine) {
		m.metrics = c
	}
}

// WithTracer sets the tracer. The global tracer is used by default.
func WithTracer(t trace.Tracer) Option {
	return func(m *Machine) {
		if t != nil {
			m.tracer = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock sets the clock used for transcripts and relative dates.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithTranscriptLimit bounds the transcript kept per session.
func WithTranscriptLimit(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.transcriptLimit = n
		}
	}
}

// New creates a Machine.
func New(store session.Store, repo plans.Repository, engine *eligibility.Engine, opts ...Option) (*Machine, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if repo == nil {
		return nil, errors.New("plan repository is required")
	}
	if engine == nil {
		return nil, errors.New("eligibility engine is required")
	}

	m := &Machine{
		store:           store,
		plans:           repo,
		engine:          engine,
		tracer:          otel.Tracer(tracing.InstrumentationName),
		logger:          slog.Default(),
		now:             time.Now,
		transcriptLimit: session.DefaultTranscriptLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "conversation")

	m.analyzer = planintel.NewAnalyzer(m.logger)
	if m.clarifier == nil {
		m.clarifier = clarify.NewGenerator(engine, clarify.WithClock(m.now), clarify.WithLogger(m.logger))
	}
	if m.collab == nil {
		heuristic := collaborator.NewHeuristic(extract.New(extract.WithClock(m.now)))
		m.collab = collaborator.NewResilient(nil,
			collaborator.WithFallback(heuristic),
			collaborator.WithLogger(m.logger),
			collaborator.WithObserver(m.metrics),
		)
	}
	return m, nil
}

// transition is one stage change within a turn.
type transition struct {
	from, to session.Stage
}

// turn carries the state of one Handle call.
type turn struct {
	ctx  context.Context
	req  Request
	text string
	s    *session.Session
	doc  *policydoc.Document
	from session.Stage

	transitions []transition
}

func (t *turn) enter(stage session.Stage) {
	if t.s.Stage != stage {
		t.transitions = append(t.transitions, transition{from: t.s.Stage, to: stage})
	}
	t.s.Stage = stage
}

// Handle processes one utterance and returns the response. It never
// fails: internal errors and panics route the session to the error stage
// with its previous content preserved.
func (m *Machine) Handle(ctx context.Context, req Request) *Response {
	id := req.SessionID
	if id == "" {
		id = session.NewID()
	}
	ctx = logging.WithSession(ctx, id)
	ctx, span := m.tracer.Start(ctx, "conversation.turn")
	defer span.End()

	var (
		t    *turn
		resp *Response
	)
	committed, err := m.store.Update(id, func(s *session.Session) (err error) {
		t = &turn{
			ctx:  ctx,
			req:  req,
			text: strings.TrimSpace(req.Utterance),
			s:    s,
			from: s.Stage,
		}
		if s.PlanID != "" {
			t.ctx = logging.WithPlan(t.ctx, s.PlanID)
		}
		defer func() {
			if p := recover(); p != nil {
				err = &InternalError{Stage: t.from, Cause: fmt.Errorf("%v", p), Panic: true}
			}
		}()

		s.AddTurn(session.RoleUser, t.text, m.now(), m.transcriptLimit)
		resp, err = m.step(t)
		if err != nil {
			return err
		}
		s.AddTurn(session.RoleAssistant, resp.Message, m.now(), m.transcriptLimit)
		return nil
	})
	if err != nil {
		return m.fail(ctx, span, id, t, err)
	}

	for _, tr := range t.transitions {
		m.metrics.RecordTransition(string(tr.from), string(tr.to))
		m.logger.DebugContext(t.ctx, "stage transition", "from", tr.from, "to", tr.to)
	}
	tracing.SetSessionAttributes(span, id, string(committed.Stage), committed.PlanID)
	if t.from != committed.Stage {
		tracing.SetTransitionAttributes(span, string(t.from), string(committed.Stage))
	}
	m.metrics.RecordTurn(string(resp.Stage))
	m.observeSessions()

	resp.SessionID = id
	return resp
}

// fail moves the session to the error stage. Only the stage and the
// transcript change; the facts and plan binding stay as they were.
func (m *Machine) fail(ctx context.Context, span trace.Span, id string, t *turn, err error) *Response {
	var ie *InternalError
	if !errors.As(err, &ie) {
		var stage session.Stage
		if t != nil {
			stage = t.from
		}
		ie = &InternalError{Stage: stage, Cause: err}
	}

	m.logger.ErrorContext(ctx, "transition failed",
		"stage", ie.Stage,
		"kind", ie.kind(),
		"error", ie.Cause,
	)
	tracing.SetError(span, ie)
	tracing.SetErrorType(span, ie.kind())
	m.metrics.RecordError(string(ie.Stage), ie.kind())

	utterance := ""
	if t != nil {
		utterance = t.text
	}
	_, uerr := m.store.Update(id, func(s *session.Session) error {
		s.Stage = session.StageError
		s.AddTurn(session.RoleUser, utterance, m.now(), m.transcriptLimit)
		s.AddTurn(session.RoleAssistant, errorPrompt, m.now(), m.transcriptLimit)
		return nil
	})
	if uerr != nil {
		m.logger.WarnContext(ctx, "failed to mark session as errored", "error", uerr)
	} else if ie.Stage != session.StageError {
		m.metrics.RecordTransition(string(ie.Stage), string(session.StageError))
	}
	tracing.SetSessionAttributes(span, id, string(session.StageError), "")
	m.metrics.RecordTurn(string(session.StageError))

	return &Response{
		SessionID:     id,
		Stage:         session.StageError,
		Message:       errorPrompt,
		RequiresInput: true,
		Suggestions:   m.planSuggestions(),
	}
}

func (m *Machine) observeSessions() {
	if counter, ok := m.store.(interface{ Len() int }); ok {
		m.metrics.SetActiveSessions(counter.Len())
	}
}

// step dispatches on the current stage.
func (m *Machine) step(t *turn) (*Response, error) {
	s := t.s
	if t.req.PlanID != "" && t.req.PlanID != s.PlanID {
		return m.bindRequested(t)
	}

	switch s.Stage {
	case "", session.StagePlanSelection:
		return m.selectPlan(t)
	case session.StageError:
		return m.restart(t)
	}

	if s.PlanID == "" {
		t.enter(session.StagePlanSelection)
		return m.selectPlan(t)
	}
	doc, err := m.plans.Get(s.PlanID)
	if errors.Is(err, plans.ErrPlanNotFound) {
		m.logger.WarnContext(t.ctx, "bound plan is no longer available", "plan_id", s.PlanID)
		removed := s.PlanID
		s.PlanID = ""
		t.enter(session.StagePlanSelection)
		return m.askPlan(t, fmt.Sprintf("The plan %q is no longer available.", removed)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", s.PlanID, err)
	}
	t.doc = doc

	switch s.Stage {
	case session.StageInitialAssessment:
		return m.assess(t, "")
	case session.StageDataGathering:
		return m.gather(t)
	case session.StagePlanAnalysis:
		return m.analyze(t, "")
	case session.StageClarification:
		return m.answer(t)
	case session.StageFinalAnalysis:
		return m.finalize(t, ""), nil
	case session.StageFollowUp:
		return m.followUp(t)
	}
	return nil, fmt.Errorf("unknown stage %q", s.Stage)
}

// evaluate runs the engine on the session's facts and records the outcome.
func (m *Machine) evaluate(t *turn) *eligibility.Result {
	ctx, span := m.tracer.Start(t.ctx, "eligibility.evaluate")
	defer span.End()

	start := time.Now()
	result := m.engine.Evaluate(t.s.Facts, t.doc)
	elapsed := time.Since(start)

	codes := make([]string, 0, len(result.Rejections))
	for _, r := range result.Rejections {
		codes = append(codes, string(r.Code))
	}
	tracing.SetAssessmentAttributes(span, result.Eligible, string(result.ClaimType), codes)
	m.metrics.RecordAssessment(result.Eligible, string(result.ClaimType), t.s.PlanID, codes, elapsed)

	m.logger.InfoContext(ctx, "claim assessed",
		"eligible", result.Eligible,
		"claim_type", string(result.ClaimType),
		"rejections", len(codes),
		"policy_age_days", result.PolicyAgeDays,
	)
	return result
}

// extractFacts asks the collaborator for the facts in the utterance.
func (m *Machine) extractFacts(t *turn, awaiting string) claim.Facts {
	if t.text == "" {
		return claim.Facts{}
	}
	return m.collab.Extract(t.ctx, t.text, collaborator.Hints{
		Stage:         string(t.s.Stage),
		AwaitingField: awaiting,
		PlanName:      planLabel(t.doc),
		Known:         t.s.Facts.Clone(),
	})
}

// sanitize drops malformed facts and returns the validation error, if any.
func (m *Machine) sanitize(t *turn) *claim.ValidationError {
	err := t.s.Facts.Validate()
	if err == nil {
		return nil
	}
	var ve claim.ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	fields := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		fields = append(fields, fe.Field)
	}
	m.logger.DebugContext(t.ctx, "dropping malformed facts", "fields", fields)
	t.s.Facts = t.s.Facts.Without(fields...)
	return &ve
}

// keepKnown merges extracted into known without overwriting known facts.
func keepKnown(known, extracted claim.Facts) claim.Facts {
	out := extracted.Clone()
	out.Merge(known)
	return out
}

func planLabel(doc *policydoc.Document) string {
	if doc == nil {
		return ""
	}
	return plans.Summary{ID: doc.ID(), Company: doc.Company(), PlanName: doc.PlanName()}.Label()
}

func join(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func ask(stage session.Stage, message string, suggestions []string, data map[string]any) *Response {
	return &Response{
		Stage:         stage,
		Message:       message,
		RequiresInput: true,
		Suggestions:   suggestions,
		Data:          data,
	}
}
