package conversation

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/clarify"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/extract"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/plans"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/session"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/telemetry/logging"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/telemetry/tracing"
)

// maxPlanSuggestions caps the plan labels offered as quick replies.
const maxPlanSuggestions = 10

const greeting = "Hi! I can check whether a health insurance claim is payable under your plan."

var finalSuggestions = []string{
	"Explain my co-pay",
	"Which documents do I need?",
	"How do I file the claim?",
	"How can I appeal?",
	"Start a new assessment",
}

var browseWords = []string{"list", "browse", "show plans", "show me", "which plans", "available", "options", "what plans"}

// selectPlan handles an utterance while no plan is bound.
func (m *Machine) selectPlan(t *turn) (*Response, error) {
	t.enter(session.StagePlanSelection)

	summaries := m.plans.List()
	if len(summaries) == 0 {
		return ask(session.StagePlanSelection,
			"No insurance plans are loaded right now, so I can't assess a claim yet. Please try again later.",
			nil, nil), nil
	}

	lower := strings.ToLower(t.text)
	if extract.ContainsAnyWord(lower, browseWords...) {
		labels := make([]string, 0, len(summaries))
		for _, s := range summaries {
			labels = append(labels, s.Label())
		}
		var sb strings.Builder
		sb.WriteString("These plans are available:\n")
		for _, label := range labels {
			sb.WriteString("- " + label + "\n")
		}
		sb.WriteString("Which one is yours?")
		return ask(session.StagePlanSelection, sb.String(), capped(labels),
			map[string]any{"plans": summaries}), nil
	}

	if doc, ok := m.plans.Resolve(t.text); ok {
		return m.bind(t, doc)
	}

	// Keep whatever the user told us about the claim while choosing a plan.
	if extracted := m.extractFacts(t, ""); !extracted.IsEmpty() {
		t.s.Facts.Merge(extracted)
		m.sanitize(t)
	}

	if len(t.s.Transcript) <= 1 {
		return m.askPlan(t, greeting), nil
	}
	if t.text == "" {
		return m.askPlan(t, ""), nil
	}
	return m.askPlan(t, "I couldn't find that plan."), nil
}

// askPlan asks the user to name a plan.
func (m *Machine) askPlan(t *turn, prefix string) *Response {
	t.enter(session.StagePlanSelection)
	return ask(session.StagePlanSelection,
		join(prefix, "Which insurance plan is the claim under? You can say \"list plans\" to see them all."),
		m.planSuggestions(), nil)
}

func (m *Machine) planSuggestions() []string {
	summaries := m.plans.List()
	labels := make([]string, 0, len(summaries))
	for _, s := range summaries {
		labels = append(labels, s.Label())
	}
	return capped(labels)
}

func capped(labels []string) []string {
	if len(labels) > maxPlanSuggestions {
		return labels[:maxPlanSuggestions]
	}
	return labels
}

// bindRequested binds the plan named in the request itself.
func (m *Machine) bindRequested(t *turn) (*Response, error) {
	doc, err := m.plans.Get(t.req.PlanID)
	if errors.Is(err, plans.ErrPlanNotFound) {
		m.logger.InfoContext(t.ctx, "requested plan not found", "plan_id", t.req.PlanID)
		t.s.PlanID = ""
		if extracted := m.extractFacts(t, ""); !extracted.IsEmpty() {
			t.s.Facts.Merge(extracted)
			m.sanitize(t)
		}
		return m.askPlan(t, fmt.Sprintf("I couldn't find a plan with the ID %q.", t.req.PlanID)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", t.req.PlanID, err)
	}
	return m.bind(t, doc)
}

// bind attaches doc to the session and starts the assessment.
func (m *Machine) bind(t *turn, doc *policydoc.Document) (*Response, error) {
	s := t.s
	if s.PlanID != doc.ID() {
		s.Result = nil
		s.Analysis = nil
		s.Pending = nil
		s.Asked = nil
		s.Attempts = 0
	}
	s.PlanID = doc.ID()
	t.doc = doc
	t.ctx = logging.WithPlan(t.ctx, doc.ID())
	m.logger.InfoContext(t.ctx, "plan bound", "plan", planLabel(doc))

	t.enter(session.StageInitialAssessment)
	return m.assess(t, fmt.Sprintf("Great, I'll assess your claim under %s.", planLabel(doc)))
}

// restart recovers from the error stage. The facts collected before the
// failure are kept.
func (m *Machine) restart(t *turn) (*Response, error) {
	s := t.s
	if doc, ok := m.plans.Resolve(t.text); ok {
		return m.bind(t, doc)
	}
	if s.PlanID != "" {
		doc, err := m.plans.Get(s.PlanID)
		if err == nil {
			t.doc = doc
			t.enter(session.StageInitialAssessment)
			return m.assess(t, "Thanks, let's continue.")
		}
		if !errors.Is(err, plans.ErrPlanNotFound) {
			return nil, fmt.Errorf("failed to load plan %s: %w", s.PlanID, err)
		}
		s.PlanID = ""
	}
	t.enter(session.StagePlanSelection)
	return m.selectPlan(t)
}

// assess extracts what it can from the utterance and moves on to data
// gathering or analysis.
func (m *Machine) assess(t *turn, prefix string) (*Response, error) {
	t.enter(session.StageInitialAssessment)
	if extracted := m.extractFacts(t, ""); !extracted.IsEmpty() {
		t.s.Facts.Merge(extracted)
	}
	m.sanitize(t)
	t.s.Analysis = m.analyzer.Analyze(t.s.Facts.Condition(), t.doc)
	return m.advance(t, prefix)
}

// advance asks for the first missing required fact, or analyzes the claim
// once every required fact is known.
func (m *Machine) advance(t *turn, prefix string) (*Response, error) {
	missing := t.s.Facts.Missing(claim.RequiredFields)
	if len(missing) == 0 {
		t.s.AwaitingField = ""
		return m.analyze(t, prefix)
	}

	t.enter(session.StageDataGathering)
	q := questionFor(missing[0])
	t.s.AwaitingField = q.field
	return ask(session.StageDataGathering, join(prefix, q.text), q.suggestions,
		map[string]any{"field": q.field, "missing": missing}), nil
}

// gather handles the answer to a data-gathering question.
func (m *Machine) gather(t *turn) (*Response, error) {
	s := t.s
	field := s.AwaitingField
	if field == "" {
		return m.advance(t, "")
	}
	q := questionFor(field)

	// Extra facts volunteered in the answer fill gaps only.
	if extracted := m.extractFacts(t, field); !extracted.IsEmpty() {
		s.Facts = keepKnown(s.Facts, extracted)
	}
	if patch, err := q.parse(t.text, m.now()); err == nil {
		s.Facts.Merge(patch)
	}

	invalid := m.sanitize(t)
	if !s.Facts.Has(field) {
		reason := q.hint
		if invalid != nil {
			if fe, ok := invalid.Field(field); ok {
				reason = "That doesn't look right: " + fe.Message + "."
			}
		}
		return ask(session.StageDataGathering, join(reason, q.text), q.suggestions,
			map[string]any{"field": field}), nil
	}
	return m.advance(t, "")
}

// analyze evaluates a complete claim and queues clarifications.
func (m *Machine) analyze(t *turn, prefix string) (*Response, error) {
	s := t.s
	t.enter(session.StagePlanAnalysis)
	s.Analysis = m.analyzer.Analyze(s.Facts.Condition(), t.doc)
	s.Result = m.evaluate(t)
	s.Pending = m.clarifier.Generate(s.Facts, t.doc, s.Result)
	s.Asked = nil
	s.Attempts = 0

	if len(s.Pending) == 0 {
		return m.finalize(t, prefix), nil
	}
	t.enter(session.StageClarification)
	return m.askHead(t, prefix), nil
}

// askHead asks the clarification at the head of the queue.
func (m *Machine) askHead(t *turn, prefix string) *Response {
	head, _ := t.s.Head()
	return ask(session.StageClarification, join(prefix, head.Question), head.Suggestions,
		map[string]any{"clarification": head, "remaining": len(t.s.Pending)})
}

// answer handles the reply to the clarification at the head of the queue.
func (m *Machine) answer(t *turn) (*Response, error) {
	s := t.s
	head, ok := s.Head()
	if !ok {
		return m.finalize(t, ""), nil
	}

	patch := m.clarifier.ApplyAnswer(t.text, head)
	if !patch.Has(head.Field) {
		if extracted := m.extractFacts(t, head.Field); extracted.Has(head.Field) {
			patch = extracted
		}
	}

	if !patch.Has(head.Field) {
		if s.Attempts < 1 {
			s.Attempts++
			return m.askHead(t, "Sorry, I didn't catch that."), nil
		}
		m.logger.InfoContext(t.ctx, "clarification dropped", "type", string(head.Type), "field", head.Field)
		tracing.AddEvent(trace.SpanFromContext(t.ctx), "clarification_dropped",
			attribute.String("field", head.Field))
		s.PopHead()
		return m.nextClarification(t, "No problem, let's move on.")
	}

	s.PopHead()
	s.Facts.Merge(patch)
	m.sanitize(t)
	s.Result = m.evaluate(t)
	return m.nextClarification(t, "")
}

// nextClarification regenerates the queue from the updated facts, so an
// answer can retire questions that no longer apply and raise new ones.
// Fields asked earlier in the pass are not asked again, and the pass never
// asks more than the generator's cap.
func (m *Machine) nextClarification(t *turn, prefix string) (*Response, error) {
	s := t.s
	budget := m.clarifier.Max() - len(s.Asked)
	var queue []clarify.Clarification
	if budget > 0 {
		for _, c := range m.clarifier.Generate(s.Facts, t.doc, s.Result) {
			if slices.Contains(s.Asked, c.Field) {
				continue
			}
			queue = append(queue, c)
			if len(queue) == budget {
				break
			}
		}
	}
	s.Pending = queue
	if len(s.Pending) == 0 {
		return m.finalize(t, prefix), nil
	}
	return m.askHead(t, prefix), nil
}

// finalize narrates the assessment and opens the follow-up stage. The
// response reports the final analysis; the session waits in follow-up.
func (m *Machine) finalize(t *turn, prefix string) *Response {
	s := t.s
	t.enter(session.StageFinalAnalysis)
	if s.Result == nil {
		s.Result = m.evaluate(t)
	}
	if s.Analysis == nil {
		s.Analysis = m.analyzer.Analyze(s.Facts.Condition(), t.doc)
	}
	narration := m.collab.Narrate(t.ctx, s.Result, s.Analysis)
	tracing.AddEvent(trace.SpanFromContext(t.ctx), "assessment_delivered",
		attribute.Bool(tracing.AttrEligible, s.Result.Eligible))

	t.enter(session.StageFollowUp)
	return &Response{
		Stage:       session.StageFinalAnalysis,
		Message:     join(prefix, narration),
		Suggestions: finalSuggestions,
		Result:      s.Result,
		Data:        map[string]any{"analysis": s.Analysis},
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
