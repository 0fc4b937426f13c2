package clarify

import (
	"strings"
	"testing"
	"time"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
}

func newTestGenerator(t *testing.T, opts ...Option) (*Generator, *eligibility.Engine) {
	t.Helper()
	engine, err := eligibility.NewEngine(eligibility.Config{}, eligibility.WithClock(fixedClock))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return NewGenerator(engine, opts...), engine
}

func mustDoc(t *testing.T, data string) *policydoc.Document {
	t.Helper()
	doc, err := policydoc.Parse("test-plan", []byte(data))
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return doc
}

func types(cs []Clarification) []Type {
	out := make([]Type, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Type)
	}
	return out
}

func assertTypes(t *testing.T, got []Clarification, expected ...Type) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, types(got))
	}
	for i := range expected {
		if got[i].Type != expected[i] {
			t.Errorf("position %d: expected %s, got %s (all: %v)", i, expected[i], got[i].Type, types(got))
		}
	}
}

const cataractPlan = `{
	"sublimits": {"Cataract": "Actual", "Co-pay": "20% for insured above 65 years"},
	"basic_coverages": {"Consumables": "Covered"}
}`

func TestGenerate_CapAndPriorityOrder(t *testing.T) {
	g, _ := newTestGenerator(t)
	facts := claim.Facts{
		PatientName:      claim.Ptr("Lakshmi"),
		PatientAge:       claim.Ptr(70),
		MedicalCondition: claim.Ptr("cataract"),
		ClaimAmount:      claim.Ptr(100000.0),
		PolicyStartDate:  date("2020-01-01"),
	}

	got := g.Generate(facts, mustDoc(t, cataractPlan), nil)
	assertTypes(t, got, TypeCataractCause, TypeCataractEyes, TypeCopayAcknowledge)

	for _, c := range got {
		if !c.PlanSpecific {
			t.Errorf("expected %s to be plan specific", c.Type)
		}
	}
	if !strings.Contains(got[2].Question, "₹20,000") {
		t.Errorf("expected co-pay amount in question, got %q", got[2].Question)
	}
}

func TestGenerate_PlainWordingWithoutSpecialRule(t *testing.T) {
	g, _ := newTestGenerator(t)
	facts := claim.Facts{MedicalCondition: claim.Ptr("cataract")}

	got := g.Generate(facts, mustDoc(t, `{"sublimits": {"Cataract": "₹40,000 per eye"}}`), nil)
	if len(got) == 0 || got[0].Type != TypeCataractCause {
		t.Fatalf("expected cataract cause first, got %v", types(got))
	}
	if got[0].PlanSpecific {
		t.Error("expected generic wording for a capped sub-limit")
	}
	if got[0].Question != "What type of cataract has been diagnosed?" {
		t.Errorf("unexpected question %q", got[0].Question)
	}
}

func TestGenerate_SkipsKnownFields(t *testing.T) {
	g, _ := newTestGenerator(t)
	facts := claim.Facts{
		MedicalCondition:   claim.Ptr("cataract"),
		CataractCause:      claim.Ptr(claim.CataractAgeRelated),
		PreExistingDisease: claim.Ptr(false),
	}

	got := g.Generate(facts, nil, nil)
	assertTypes(t, got, TypeCataractEyes, TypeTreatmentType)
}

func TestGenerate_PolicyDurationAfterWaitingRejection(t *testing.T) {
	g, engine := newTestGenerator(t)
	facts := claim.Facts{
		PatientAge:       claim.Ptr(40),
		MedicalCondition: claim.Ptr("fever"),
		ClaimAmount:      claim.Ptr(20000.0),
	}
	result := engine.Evaluate(facts, nil)
	if !result.HasWaitingRejection() {
		t.Fatal("expected a waiting rejection for an unknown policy start")
	}

	got := g.Generate(facts, nil, result)
	assertTypes(t, got, TypePolicyDuration, TypePreExisting, TypeTreatmentType)
	if got[0].Priority != PriorityHigh {
		t.Errorf("expected high priority, got %s", got[0].Priority)
	}
}

func TestGenerate_NoPolicyDurationWithoutWaitingRejection(t *testing.T) {
	g, _ := newTestGenerator(t)
	facts := claim.Facts{MedicalCondition: claim.Ptr("fever")}

	for _, c := range g.Generate(facts, nil, nil) {
		if c.Type == TypePolicyDuration {
			t.Fatal("expected no policy duration question without a result")
		}
	}
}

func TestGenerate_Accident(t *testing.T) {
	g, _ := newTestGenerator(t)
	doc := mustDoc(t, `{"features": ["No waiting period for accidents"]}`)

	tests := []struct {
		name     string
		accident *claim.Accident
		expected []Type
	}{
		{
			name:     "unknown subtype",
			expected: []Type{TypeAccidentType, TypeAccidentDocs, TypePreExisting},
		},
		{
			name:     "domestic asks for consultation and records",
			accident: &claim.Accident{Type: claim.AccidentDomestic},
			expected: []Type{TypeConsultation, TypeMedicalRecords, TypePreExisting},
		},
		{
			name:     "domestic with consultation known",
			accident: &claim.Accident{Type: claim.AccidentDomestic, MedicalConsultation: claim.Ptr(true)},
			expected: []Type{TypeMedicalRecords, TypePreExisting, TypeTreatmentType},
		},
		{
			name:     "road accident asks for documentation",
			accident: &claim.Accident{Type: claim.AccidentRoadTraffic},
			expected: []Type{TypeAccidentDocs, TypePreExisting, TypeTreatmentType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := claim.Facts{
				MedicalCondition: claim.Ptr("fracture"),
				ClaimType:        claim.TypeAccident,
				Accident:         tt.accident,
			}
			got := g.Generate(facts, doc, nil)
			assertTypes(t, got, tt.expected...)
			for _, c := range got {
				if c.Type == TypeAccidentDocs && !c.PlanSpecific {
					t.Error("expected documentation question to be plan specific")
				}
			}
		})
	}
}

func TestGenerate_Maternity(t *testing.T) {
	g, _ := newTestGenerator(t)
	doc := mustDoc(t, `{"maternity": {"Waiting Period": {"First delivery": "9 months", "Second delivery": "2 years"}}}`)

	got := g.Generate(claim.Facts{MedicalCondition: claim.Ptr("normal delivery")}, doc, nil)
	if len(got) == 0 || got[0].Type != TypeDeliveryNumber {
		t.Fatalf("expected delivery number first, got %v", types(got))
	}
	if !got[0].PlanSpecific {
		t.Error("expected plan-specific delivery question")
	}
}

func TestGenerate_BenefitProbes(t *testing.T) {
	g, _ := newTestGenerator(t, WithMaxQuestions(10))
	doc := mustDoc(t, `{"basic_coverages": {"Consumables": "Covered", "AYUSH": "Up to sum insured"}}`)
	facts := claim.Facts{
		MedicalCondition:   claim.Ptr("ayurvedic treatment for sudden back ache"),
		PreExistingDisease: claim.Ptr(false),
		TreatmentType:      claim.Ptr(claim.TreatmentInpatient),
	}

	got := g.Generate(facts, doc, nil)
	assertTypes(t, got, TypeEmergency, TypeConsumables, TypeAyush)
}

func TestGenerate_MaxQuestionsAndUniqueFields(t *testing.T) {
	g, _ := newTestGenerator(t, WithMaxQuestions(1))
	got := g.Generate(claim.Facts{MedicalCondition: claim.Ptr("cataract")}, mustDoc(t, cataractPlan), nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 clarification, got %d", len(got))
	}

	g, _ = newTestGenerator(t, WithMaxQuestions(20))
	conditions := []string{"cataract", "fracture", "delivery", "heart attack", "ayurvedic care"}
	for _, condition := range conditions {
		seen := make(map[string]bool)
		for _, c := range g.Generate(claim.Facts{MedicalCondition: claim.Ptr(condition)}, mustDoc(t, cataractPlan), nil) {
			if seen[c.Field] {
				t.Errorf("%s: field %s asked twice", condition, c.Field)
			}
			seen[c.Field] = true
		}
	}
}

func TestApplyAnswer(t *testing.T) {
	g, _ := newTestGenerator(t)

	tests := []struct {
		name   string
		typ    Type
		answer string
		check  func(f claim.Facts) bool
	}{
		{"age related cataract", TypeCataractCause, "it is age related", func(f claim.Facts) bool {
			return f.CataractCause != nil && *f.CataractCause == claim.CataractAgeRelated
		}},
		{"traumatic cataract", TypeCataractCause, "due to an injury", func(f claim.Facts) bool {
			return f.CataractCause != nil && *f.CataractCause == claim.CataractTraumatic
		}},
		{"congenital cataract", TypeCataractCause, "since birth", func(f claim.Facts) bool {
			return f.CataractCause != nil && *f.CataractCause == claim.CataractCongenital &&
				f.CongenitalCondition != nil && *f.CongenitalCondition
		}},
		{"both eyes", TypeCataractEyes, "both eyes", func(f claim.Facts) bool {
			return f.CataractEyes != nil && *f.CataractEyes == claim.EyesBilateral
		}},
		{"one eye", TypeCataractEyes, "just the left one", func(f claim.Facts) bool {
			return f.CataractEyes != nil && *f.CataractEyes == claim.EyesUnilateral
		}},
		{"second delivery", TypeDeliveryNumber, "second", func(f claim.Facts) bool {
			return f.DeliveryNumber != nil && *f.DeliveryNumber == 2
		}},
		{"delivery digit", TypeDeliveryNumber, "3", func(f claim.Facts) bool {
			return f.DeliveryNumber != nil && *f.DeliveryNumber == 3
		}},
		{"domestic accident", TypeAccidentType, "at home", func(f claim.Facts) bool {
			return f.ClaimType == claim.TypeAccident && f.Accident != nil && f.Accident.Type == claim.AccidentDomestic
		}},
		{"fir available", TypeAccidentDocs, "yes, FIR filed", func(f claim.Facts) bool {
			return f.Accident != nil && f.Accident.Documentation != nil && *f.Accident.Documentation
		}},
		{"saw a doctor", TypeConsultation, "yes, the same day", func(f claim.Facts) bool {
			return f.ClaimType == claim.TypeAccident && f.Accident != nil &&
				f.Accident.MedicalConsultation != nil && *f.Accident.MedicalConsultation
		}},
		{"no records", TypeMedicalRecords, "no, I lost them", func(f claim.Facts) bool {
			return f.Accident != nil && f.Accident.MedicalRecords != nil && !*f.Accident.MedicalRecords
		}},
		{"copay understood", TypeCopayAcknowledge, "yes", func(f claim.Facts) bool {
			return f.CopayAcknowledged != nil && *f.CopayAcknowledged
		}},
		{"not pre-existing", TypePreExisting, "no", func(f claim.Facts) bool {
			return f.PreExistingDisease != nil && !*f.PreExistingDisease
		}},
		{"planned admission", TypeEmergency, "it was planned", func(f claim.Facts) bool {
			return f.Emergency != nil && !*f.Emergency
		}},
		{"negated emergency", TypeEmergency, "not an emergency", func(f claim.Facts) bool {
			return f.Emergency != nil && !*f.Emergency
		}},
		{"emergency", TypeEmergency, "Yes, emergency", func(f claim.Facts) bool {
			return f.Emergency != nil && *f.Emergency
		}},
		{"inpatient", TypeTreatmentType, "admitted", func(f claim.Facts) bool {
			return f.TreatmentType != nil && *f.TreatmentType == claim.TreatmentInpatient
		}},
		{"relative policy start", TypePolicyDuration, "2 years ago", func(f claim.Facts) bool {
			return f.PolicyStartDate != nil && f.PolicyStartDate.String() == "2022-06-01"
		}},
		{"absolute policy start", TypePolicyDuration, "15/01/2023", func(f claim.Facts) bool {
			return f.PolicyStartDate != nil && f.PolicyStartDate.String() == "2023-01-15"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch := g.ApplyAnswer(tt.answer, Clarification{Type: tt.typ})
			if !tt.check(patch) {
				t.Errorf("unexpected patch for %q: %+v", tt.answer, patch)
			}
		})
	}
}

func TestApplyAnswer_Unrecognized(t *testing.T) {
	g, _ := newTestGenerator(t)
	for _, typ := range []Type{TypePreExisting, TypeAccidentType, TypeDeliveryNumber, TypePolicyDuration, TypeCataractEyes, TypeConsultation} {
		patch := g.ApplyAnswer("banana", Clarification{Type: typ})
		if !patch.IsEmpty() {
			t.Errorf("%s: expected empty patch, got %+v", typ, patch)
		}
	}
}

func date(s string) *claim.Date {
	d := claim.MustParseDate(s)
	return &d
}
