// Package clarify generates the follow-up questions asked when a claim is
// incomplete or ambiguous under a specific plan, and turns the answers back
// into claim facts.
package clarify

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/diseases"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/planintel"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

// DefaultMaxQuestions caps the clarifications produced per pass.
const DefaultMaxQuestions = 3

// Priority orders clarifications.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Type tags what a clarification asks about.
type Type string

const (
	TypeCataractCause    Type = "cataract_cause"
	TypeCataractEyes     Type = "cataract_eyes"
	TypeDeliveryNumber   Type = "delivery_number"
	TypeAccidentType     Type = "accident_type"
	TypeAccidentDocs     Type = "accident_documentation"
	TypeConsultation     Type = "medical_consultation"
	TypeMedicalRecords   Type = "medical_records"
	TypeCopayAcknowledge Type = "copay_acknowledgement"
	TypePreExisting      Type = "pre_existing"
	TypeTreatmentType    Type = "treatment_type"
	TypeEmergency        Type = "emergency"
	TypeConsumables      Type = "consumables"
	TypeAyush            Type = "ayush"
	TypePolicyDuration   Type = "policy_duration"
)

// Clarification is one follow-up question.
type Clarification struct {
	Type         Type     `json:"type" yaml:"type"`
	Priority     Priority `json:"priority" yaml:"priority"`
	Question     string   `json:"question" yaml:"question"`
	Suggestions  []string `json:"suggestions" yaml:"suggestions"`
	Field        string   `json:"field" yaml:"field"`
	PlanSpecific bool     `json:"plan_specific" yaml:"plan_specific"`
}

// Copayer computes the co-pay percentage for a patient under a plan.
// *eligibility.Engine implements it.
type Copayer interface {
	CopayPercent(age *int, doc *policydoc.Document) float64
}

// Generator builds clarification queues.
type Generator struct {
	max       int
	seniorAge int
	copay     Copayer
	analyzer  *planintel.Analyzer
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxQuestions sets the cap. Values below 1 keep the default.
func WithMaxQuestions(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.max = n
		}
	}
}

// WithSeniorAge sets the age above which the co-pay question is asked.
func WithSeniorAge(age int) Option {
	return func(g *Generator) {
		if age > 0 {
			g.seniorAge = age
		}
	}
}

// WithClock sets the clock used to resolve relative dates in answers.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a generator. copay may be nil, in which case the
// co-pay question never states an amount.
func NewGenerator(copay Copayer, opts ...Option) *Generator {
	g := &Generator{
		max:       DefaultMaxQuestions,
		seniorAge: eligibility.DefaultSeniorAge,
		copay:     copay,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "clarify")
	g.analyzer = planintel.NewAnalyzer(g.logger)
	return g
}

// Generate returns at most the configured number of clarifications, high
// priority first. Ties keep generation order and each field is asked once.
// doc and result may be nil.
func (g *Generator) Generate(facts claim.Facts, doc *policydoc.Document, result *eligibility.Result) []Clarification {
	f := facts.Clone()
	f.Normalize()

	condition := f.Condition()
	if f.Illness != nil && f.Illness.Type != "" {
		condition = f.Illness.Type
	}
	category := diseases.Categorize(condition)
	if f.ClaimType == claim.TypeAccident {
		category = diseases.CategoryAccident
	}

	var analysis *planintel.Analysis
	if doc != nil {
		analysis = g.analyzer.AnalyzeCategory(category, doc)
	}

	var out []Clarification
	out = append(out, g.categoryQuestions(category, f, analysis)...)
	out = append(out, g.generalQuestions(f, condition, doc, result)...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.rank() < out[j].Priority.rank()
	})

	seen := make(map[string]bool)
	queue := make([]Clarification, 0, g.max)
	for _, c := range out {
		if seen[c.Field] || f.Has(c.Field) {
			continue
		}
		seen[c.Field] = true
		queue = append(queue, c)
		if len(queue) == g.max {
			break
		}
	}

	g.logger.Debug("clarifications generated",
		"category", string(category),
		"candidates", len(out),
		"queued", len(queue),
	)
	return queue
}

func (g *Generator) categoryQuestions(category diseases.Category, f claim.Facts, a *planintel.Analysis) []Clarification {
	special := a.Uncapped() || a.WaitingWaived()

	switch category {
	case diseases.CategoryCataract:
		cause := Clarification{
			Type:        TypeCataractCause,
			Priority:    PriorityHigh,
			Question:    "What type of cataract has been diagnosed?",
			Suggestions: []string{"Age-related", "Traumatic (injury)", "Congenital", "Diabetic"},
			Field:       claim.FieldCataractCause,
		}
		if special {
			cause.Question = "Your plan has a special cataract rule. Is the cataract age-related, caused by an injury, congenital or diabetic?"
			cause.PlanSpecific = true
		}
		eyes := Clarification{
			Type:        TypeCataractEyes,
			Priority:    PriorityMedium,
			Question:    "Is the surgery for one eye or both eyes?",
			Suggestions: []string{"One eye", "Both eyes"},
			Field:       claim.FieldCataractEyes,
		}
		if a.Uncapped() {
			eyes.Question = "Your plan pays cataract surgery at actual cost. Is the surgery for one eye or both eyes?"
			eyes.PlanSpecific = true
		}
		return []Clarification{cause, eyes}

	case diseases.CategoryMaternity:
		c := Clarification{
			Type:        TypeDeliveryNumber,
			Priority:    PriorityHigh,
			Question:    "Is this the first, second or a later delivery?",
			Suggestions: []string{"First", "Second", "Third or later"},
			Field:       claim.FieldDeliveryNumber,
		}
		if special || hasDeliveryRules(a) {
			c.Question = "Your plan's maternity waiting period depends on the delivery number. Is this the first, second or a later delivery?"
			c.PlanSpecific = true
		}
		return []Clarification{c}

	case diseases.CategoryAccident:
		out := []Clarification{{
			Type:        TypeAccidentType,
			Priority:    PriorityHigh,
			Question:    "Where did the accident happen: on the road, at home, at work or while playing sports?",
			Suggestions: []string{"Road accident", "At home", "At work", "Sports"},
			Field:       claim.FieldAccidentType,
		}}
		if f.Accident == nil || f.Accident.Type == "" || f.Accident.Type == claim.AccidentRoadTraffic {
			docs := Clarification{
				Type:        TypeAccidentDocs,
				Priority:    PriorityHigh,
				Question:    "Do you have an FIR or police report for the accident?",
				Suggestions: []string{"Yes, I have the FIR", "No"},
				Field:       claim.FieldAccidentDocs,
			}
			if special {
				docs.Question = "Your plan waives waiting periods for documented accidents. Do you have an FIR or police report?"
				docs.PlanSpecific = true
			}
			out = append(out, docs)
		}
		if f.Accident != nil && f.Accident.Type == claim.AccidentDomestic {
			out = append(out, Clarification{
				Type:        TypeConsultation,
				Priority:    PriorityHigh,
				Question:    "Did the patient see a doctor about the injury after the accident?",
				Suggestions: []string{"Yes", "No"},
				Field:       claim.FieldMedicalConsultation,
			}, Clarification{
				Type:        TypeMedicalRecords,
				Priority:    PriorityHigh,
				Question:    "Do you have the medical records of the treatment, such as the doctor's notes and bills?",
				Suggestions: []string{"Yes", "No"},
				Field:       claim.FieldMedicalRecords,
			})
		}
		return out
	}
	return nil
}

// Max returns the number of clarifications asked per analysis pass.
func (g *Generator) Max() int {
	return g.max
}

func hasDeliveryRules(a *planintel.Analysis) bool {
	if a == nil {
		return false
	}
	for k := range a.PlanSpecificRules {
		if strings.HasPrefix(k, "delivery_") {
			return true
		}
	}
	return false
}

func (g *Generator) generalQuestions(f claim.Facts, condition string, doc *policydoc.Document, result *eligibility.Result) []Clarification {
	var out []Clarification

	if f.PolicyStartDate == nil && result != nil && result.HasWaitingRejection() {
		out = append(out, Clarification{
			Type:        TypePolicyDuration,
			Priority:    PriorityHigh,
			Question:    "When did your policy start? A date or something like \"2 years ago\" works.",
			Suggestions: []string{"Less than a month ago", "1 year ago", "3 years ago"},
			Field:       claim.FieldPolicyStartDate,
		})
	}

	if c, ok := g.copayQuestion(f, doc); ok {
		out = append(out, c)
	}

	if f.PreExistingDisease == nil {
		out = append(out, Clarification{
			Type:        TypePreExisting,
			Priority:    PriorityMedium,
			Question:    "Was this condition diagnosed or treated before the policy started?",
			Suggestions: []string{"Yes", "No"},
			Field:       claim.FieldPreExistingDisease,
		})
	}

	if f.Emergency == nil && mentionsAny(condition, emergencyWords) {
		out = append(out, Clarification{
			Type:        TypeEmergency,
			Priority:    PriorityMedium,
			Question:    "Was this an emergency admission?",
			Suggestions: []string{"Yes, emergency", "No, planned"},
			Field:       claim.FieldEmergency,
		})
	}

	if f.TreatmentType == nil {
		out = append(out, Clarification{
			Type:        TypeTreatmentType,
			Priority:    PriorityLow,
			Question:    "Was the treatment inpatient, day care or outpatient?",
			Suggestions: []string{"Inpatient (admitted)", "Day care", "Outpatient", "Surgery"},
			Field:       claim.FieldTreatmentType,
		})
	}

	if doc != nil && f.ConsumablesRequired == nil && doc.HasBenefit("consumable") {
		out = append(out, Clarification{
			Type:         TypeConsumables,
			Priority:     PriorityLow,
			Question:     "Your plan covers consumables. Does the bill include consumables such as gloves or PPE kits?",
			Suggestions:  []string{"Yes", "No"},
			Field:        claim.FieldConsumablesRequired,
			PlanSpecific: true,
		})
	}

	if doc != nil && f.AyushTreatment == nil && mentionsAny(condition, ayushWords) && doc.HasBenefit("ayush") {
		out = append(out, Clarification{
			Type:         TypeAyush,
			Priority:     PriorityLow,
			Question:     "Your plan covers AYUSH treatment. Was the treatment at a registered AYUSH hospital?",
			Suggestions:  []string{"Yes", "No"},
			Field:        claim.FieldAyushTreatment,
			PlanSpecific: true,
		})
	}

	return out
}

func (g *Generator) copayQuestion(f claim.Facts, doc *policydoc.Document) (Clarification, bool) {
	if doc == nil || f.PatientAge == nil || *f.PatientAge <= g.seniorAge || f.CopayAcknowledged != nil {
		return Clarification{}, false
	}
	if _, ok := doc.CoPay(); !ok {
		return Clarification{}, false
	}

	question := fmt.Sprintf("At age %d a co-pay applies under your plan. Do you understand that part of the claim is paid by you?", *f.PatientAge)
	if g.copay != nil {
		pct := g.copay.CopayPercent(f.PatientAge, doc)
		if pct > 0 && f.ClaimAmount != nil {
			b := eligibility.Breakdown(*f.ClaimAmount, 0, pct)
			question = fmt.Sprintf("At age %d a %s%% co-pay applies under your plan, so about %s of the %s claim is paid by you. Is that understood?",
				*f.PatientAge, b.CopayPercent.String(), eligibility.FormatINR(b.CopayAmount), eligibility.FormatINR(b.ClaimAmount))
		}
	}
	return Clarification{
		Type:         TypeCopayAcknowledge,
		Priority:     PriorityMedium,
		Question:     question,
		Suggestions:  []string{"Yes, understood", "No, explain more"},
		Field:        claim.FieldCopayAcknowledged,
		PlanSpecific: true,
	}, true
}

var (
	emergencyWords = []string{"emergency", "urgent", "sudden", "acute", "attack", "stroke", "accident", "severe"}
	ayushWords     = []string{"ayurved", "homeopath", "unani", "siddha", "naturopath", "yoga", "ayush"}
)

func mentionsAny(s string, words []string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
