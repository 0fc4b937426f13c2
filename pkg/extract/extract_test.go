package extract

import (
	"testing"
	"time"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
}

func TestExtract_IllnessNarrative(t *testing.T) {
	e := New(WithClock(fixedClock))
	f := e.Extract("My name is Asha Rao, 45 years old female. My policy started on 2024-01-01. " +
		"I was hospitalized on 2024-02-15 for dengue, bill of Rs. 75,000.")

	if f.PatientName == nil || *f.PatientName != "Asha Rao" {
		t.Errorf("expected name Asha Rao, got %v", f.PatientName)
	}
	if f.PatientAge == nil || *f.PatientAge != 45 {
		t.Errorf("expected age 45, got %v", f.PatientAge)
	}
	if f.Gender == nil || *f.Gender != "female" {
		t.Errorf("expected female, got %v", f.Gender)
	}
	if f.ClaimAmount == nil || *f.ClaimAmount != 75000 {
		t.Errorf("expected amount 75000, got %v", f.ClaimAmount)
	}
	if f.MedicalCondition == nil || *f.MedicalCondition != "dengue" {
		t.Errorf("expected dengue, got %v", f.MedicalCondition)
	}
	if f.PolicyStartDate == nil || f.PolicyStartDate.String() != "2024-01-01" {
		t.Errorf("expected policy start 2024-01-01, got %v", f.PolicyStartDate)
	}
	if f.ClaimDate == nil || f.ClaimDate.String() != "2024-02-15" {
		t.Errorf("expected claim date 2024-02-15, got %v", f.ClaimDate)
	}
	if f.TreatmentType == nil || *f.TreatmentType != claim.TreatmentInpatient {
		t.Errorf("expected inpatient treatment, got %v", f.TreatmentType)
	}
	if f.ClaimType != claim.TypeGeneric {
		t.Errorf("expected generic claim type, got %q", f.ClaimType)
	}
}

func TestExtract_DomesticAccident(t *testing.T) {
	e := New(WithClock(fixedClock))
	f := e.Extract("I slipped and fell at home on 2024-02-10 and broke my leg. Policy started 2024-01-01. " +
		"I consulted a doctor and have the medical records.")

	if f.ClaimType != claim.TypeAccident {
		t.Fatalf("expected accident claim, got %q", f.ClaimType)
	}
	if f.Accident.Type != claim.AccidentDomestic {
		t.Errorf("expected domestic accident, got %q", f.Accident.Type)
	}
	if f.Accident.IncidentDate == nil || f.Accident.IncidentDate.String() != "2024-02-10" {
		t.Errorf("expected incident date 2024-02-10, got %v", f.Accident.IncidentDate)
	}
	if f.PolicyStartDate == nil || f.PolicyStartDate.String() != "2024-01-01" {
		t.Errorf("expected policy start 2024-01-01, got %v", f.PolicyStartDate)
	}
	if f.Accident.MedicalConsultation == nil || !*f.Accident.MedicalConsultation {
		t.Error("expected medical consultation")
	}
	if f.Accident.MedicalRecords == nil || !*f.Accident.MedicalRecords {
		t.Error("expected medical records")
	}
	if f.Accident.Documentation != nil {
		t.Error("expected documentation to stay unknown")
	}
}

func TestExtract_RoadAccident(t *testing.T) {
	f := New().Extract("Road accident on my bike, FIR filed, need surgery for fracture")

	if f.ClaimType != claim.TypeAccident || f.Accident.Type != claim.AccidentRoadTraffic {
		t.Fatalf("expected road traffic accident, got %q/%+v", f.ClaimType, f.Accident)
	}
	if f.Accident.Documentation == nil || !*f.Accident.Documentation {
		t.Error("expected FIR to count as documentation")
	}
	if f.MedicalCondition == nil || *f.MedicalCondition != "fracture" {
		t.Errorf("expected fracture, got %v", f.MedicalCondition)
	}
}

func TestExtract_InjuryCondition(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"My son was injured in a road accident and admitted yesterday", "injury"},
		{"Head injuries after a fall at home", "injury"},
		{"Claiming for an accident at work", "injury"},
		{"Fracture after an accident on the stairs", "fracture"},
		{"Admitted for dengue, no accident involved", "dengue"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := New(WithClock(fixedClock)).Extract(tt.text)
			if f.MedicalCondition == nil || *f.MedicalCondition != tt.want {
				t.Errorf("expected %q, got %v", tt.want, f.MedicalCondition)
			}
		})
	}
}

func TestExtract_Flags(t *testing.T) {
	tests := []struct {
		text  string
		check func(t *testing.T, f claim.Facts)
	}{
		{
			text: "It was an emergency admission",
			check: func(t *testing.T, f claim.Facts) {
				if f.Emergency == nil || !*f.Emergency {
					t.Error("expected emergency")
				}
			},
		},
		{
			text: "This is a planned surgery, no pre-existing illness",
			check: func(t *testing.T, f claim.Facts) {
				if f.Emergency == nil || *f.Emergency {
					t.Error("expected non-emergency")
				}
				if f.PreExistingDisease == nil || *f.PreExistingDisease {
					t.Error("expected pre-existing=false")
				}
			},
		},
		{
			text: "heart condition since birth",
			check: func(t *testing.T, f claim.Facts) {
				if f.CongenitalCondition == nil || !*f.CongenitalCondition {
					t.Error("expected congenital")
				}
			},
		},
		{
			text: "hello there",
			check: func(t *testing.T, f claim.Facts) {
				if !f.IsEmpty() {
					t.Errorf("expected no facts, got %+v", f)
				}
			},
		},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tt.check(t, e.Extract(tt.text))
		})
	}
}

func TestExtract_RelativePolicyStart(t *testing.T) {
	f := New(WithClock(fixedClock)).Extract("I bought the policy 2 years ago")
	if f.PolicyStartDate == nil || f.PolicyStartDate.String() != "2022-06-01" {
		t.Errorf("expected policy start 2022-06-01, got %v", f.PolicyStartDate)
	}
}

func TestExtract_SumInsuredNotClaimAmount(t *testing.T) {
	f := New().Extract("My sum insured is 5 lakh and the bill is Rs 80000")
	if f.SumInsured == nil || *f.SumInsured != 500000 {
		t.Errorf("expected sum insured 500000, got %v", f.SumInsured)
	}
	if f.ClaimAmount == nil || *f.ClaimAmount != 80000 {
		t.Errorf("expected claim amount 80000, got %v", f.ClaimAmount)
	}
}
