package conversation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/diseases"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/session"
)

// intent is a follow-up request kind.
type intent int

const (
	intentNone intent = iota
	intentNewAssessment
	intentAppeal
	intentCopay
	intentDocuments
	intentProcess
)

func (i intent) String() string {
	switch i {
	case intentNewAssessment:
		return "new_assessment"
	case intentAppeal:
		return "appeal"
	case intentCopay:
		return "copay"
	case intentDocuments:
		return "documents"
	case intentProcess:
		return "process"
	default:
		return "none"
	}
}

// intentWords are checked in order; the first match wins.
var intentWords = []struct {
	intent intent
	words  []string
}{
	{intentNewAssessment, []string{"new assessment", "start over", "new claim", "another claim", "start again", "restart", "reset"}},
	{intentAppeal, []string{"appeal", "reject", "denied", "dispute", "grievance", "ombudsman", "reconsider"}},
	{intentCopay, []string{"co-pay", "copay", "co pay", "pay myself", "out of pocket", "my share"}},
	{intentDocuments, []string{"document", "paperwork", "papers", "what do i need", "submit"}},
	{intentProcess, []string{"file the claim", "how do i file", "how to file", "process", "procedure", "next step", "how do i claim", "reimburse", "cashless"}},
}

const followUpHelp = "You can ask me to explain your co-pay, list the documents you need, " +
	"walk through filing the claim or appealing a rejection, or start a new assessment. " +
	"You can also tell me something that changed, like a different claim amount."

// detectIntent classifies a follow-up utterance.
func detectIntent(text string) intent {
	lower := strings.ToLower(text)
	for _, entry := range intentWords {
		if containsAny(lower, entry.words...) {
			return entry.intent
		}
	}
	return intentNone
}

// followUp answers questions about a delivered assessment.
func (m *Machine) followUp(t *turn) (*Response, error) {
	s := t.s
	if s.Result == nil {
		s.Result = m.evaluate(t)
	}

	in := detectIntent(t.text)
	m.logger.DebugContext(t.ctx, "follow-up intent", "intent", in.String())

	switch in {
	case intentNewAssessment:
		s.ResetFacts()
		t.enter(session.StageInitialAssessment)
		t.text = ""
		return m.assess(t, fmt.Sprintf("Sure, let's start a new assessment under %s.", planLabel(t.doc)))
	case intentCopay:
		return m.reply(copayAnswer(m.engine, s.Facts, s.Result, t.doc)), nil
	case intentDocuments:
		return m.reply(documentsAnswer(s.Facts, s.Result)), nil
	case intentProcess:
		return m.reply(processAnswer(s.Result)), nil
	case intentAppeal:
		return m.reply(appealAnswer(s.Result)), nil
	}

	// Anything else may carry corrected facts.
	before := s.Facts.Clone()
	if extracted := m.extractFacts(t, ""); !extracted.IsEmpty() {
		s.Facts.Merge(extracted)
		m.sanitize(t)
	}
	if reflect.DeepEqual(before, s.Facts) {
		return m.reply(followUpHelp), nil
	}

	s.Analysis = m.analyzer.Analyze(s.Facts.Condition(), t.doc)
	s.Result = m.evaluate(t)
	narration := m.collab.Narrate(t.ctx, s.Result, s.Analysis)
	return &Response{
		Stage:       session.StageFollowUp,
		Message:     join("I've updated the assessment with the new details.", narration),
		Suggestions: finalSuggestions,
		Result:      s.Result,
	}, nil
}

func (m *Machine) reply(message string) *Response {
	return &Response{
		Stage:         session.StageFollowUp,
		Message:       message,
		RequiresInput: true,
		Suggestions:   finalSuggestions,
	}
}

func copayAnswer(engine *eligibility.Engine, f claim.Facts, result *eligibility.Result, doc *policydoc.Document) string {
	fin := result.Financial
	if fin.CopayPercent.IsZero() {
		return "No co-pay applies to this claim: the insurer pays the full admissible amount."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "A %s%% co-pay applies: you pay %s of the %s claim and the insurer pays %s.",
		fin.CopayPercent.String(),
		eligibility.FormatINR(fin.CopayAmount),
		eligibility.FormatINR(fin.ClaimAmount),
		eligibility.FormatINR(fin.FinalAmount),
	)
	if rule, ok := doc.CoPay(); ok && rule.Text != "" {
		sb.WriteString(" Your plan says: " + rule.Text + ".")
	} else if f.PatientAge != nil && *f.PatientAge > engine.Config().SeniorAge {
		fmt.Fprintf(&sb, " It applies because the patient is older than %d.", engine.Config().SeniorAge)
	}
	return sb.String()
}

func documentsAnswer(f claim.Facts, result *eligibility.Result) string {
	docs := []string{
		"Completed claim form signed by the policyholder",
		"Policy copy or e-card and a photo ID of the patient",
		"Hospital discharge summary",
		"Final hospital bill with an itemized breakup and payment receipts",
		"Doctor's prescriptions, investigation and lab reports",
	}

	switch {
	case f.ClaimType == claim.TypeAccident || result.ClaimType == claim.TypeAccident:
		docs = append(docs, "FIR or medico-legal certificate for the accident")
	case diseases.Categorize(f.Condition()) == diseases.CategoryCataract:
		docs = append(docs, "Ophthalmologist's report with the lens details and the IOL sticker")
	case diseases.Categorize(f.Condition()) == diseases.CategoryMaternity:
		docs = append(docs, "Antenatal records and the baby's birth certificate")
	}

	var sb strings.Builder
	sb.WriteString("Keep these documents ready:\n")
	for _, d := range docs {
		sb.WriteString("- " + d + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func processAnswer(result *eligibility.Result) string {
	steps := []string{
		"Inform the insurer or TPA within 24 hours of an emergency admission, or 48 hours before a planned one",
		"At a network hospital, ask the insurance desk for cashless pre-authorization",
		"Otherwise pay the hospital and file for reimbursement within 30 days of discharge",
		"Submit the claim form with all documents and keep the acknowledgement",
	}
	steps = append(steps, result.NextSteps...)

	var sb strings.Builder
	sb.WriteString("To file the claim:\n")
	for i, s := range steps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func appealAnswer(result *eligibility.Result) string {
	if result.Eligible {
		return "This claim looks payable, so there is nothing to appeal. If the insurer still rejects it, come back and I'll walk you through an appeal."
	}

	var sb strings.Builder
	sb.WriteString("The claim failed these checks:\n")
	for _, reason := range result.Reasons() {
		sb.WriteString("- " + reason + "\n")
	}
	sb.WriteString("\nTo appeal:\n")
	sb.WriteString("1. Ask the insurer for the rejection in writing with the clause it relies on\n")
	sb.WriteString("2. Write to the insurer's grievance cell with your documents and any fact the assessment missed\n")
	sb.WriteString("3. If there is no reply within 30 days, or you disagree with it, escalate to the Insurance Ombudsman")
	return sb.String()
}
