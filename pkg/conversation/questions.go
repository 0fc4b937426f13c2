package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/extract"
)

// question asks for one required fact during data gathering.
type question struct {
	field       string
	text        string
	hint        string
	suggestions []string

	// parse reads the answer as this field only.
	parse func(text string, now time.Time) (claim.Facts, error)
}

var questionBank = map[string]question{
	claim.FieldPatientName: {
		field: claim.FieldPatientName,
		text:  "What is the patient's full name?",
		hint:  "I need the patient's name, written without numbers.",
		parse: func(text string, _ time.Time) (claim.Facts, error) {
			name, err := extract.ParseName(text)
			if err != nil {
				return claim.Facts{}, err
			}
			return claim.Facts{PatientName: &name}, nil
		},
	},
	claim.FieldPatientAge: {
		field: claim.FieldPatientAge,
		text:  "How old is the patient?",
		hint:  "Please give the age in years, for example 45.",
		parse: func(text string, _ time.Time) (claim.Facts, error) {
			age, err := extract.ParseAge(text)
			if err != nil {
				return claim.Facts{}, err
			}
			return claim.Facts{PatientAge: &age}, nil
		},
	},
	claim.FieldMedicalCondition: {
		field:       claim.FieldMedicalCondition,
		text:        "What medical condition or treatment is the claim for?",
		hint:        "Please name the condition, for example \"cataract\" or \"knee replacement\".",
		suggestions: []string{"Cataract surgery", "Knee replacement", "Dengue", "Delivery"},
		parse: func(text string, _ time.Time) (claim.Facts, error) {
			condition, err := extract.ParseCondition(text)
			if err != nil {
				return claim.Facts{}, err
			}
			return claim.Facts{MedicalCondition: &condition}, nil
		},
	},
	claim.FieldClaimAmount: {
		field:       claim.FieldClaimAmount,
		text:        "What is the claim amount?",
		hint:        "Please give the amount in rupees, for example ₹85,000 or 1.2 lakh.",
		suggestions: []string{"₹50,000", "₹1 lakh", "₹2.5 lakh"},
		parse: func(text string, _ time.Time) (claim.Facts, error) {
			amount, err := extract.ParseAmountAnswer(text)
			if err != nil {
				return claim.Facts{}, err
			}
			return claim.Facts{ClaimAmount: &amount}, nil
		},
	},
	claim.FieldPolicyStartDate: {
		field:       claim.FieldPolicyStartDate,
		text:        "When did the policy start? A date like 2022-04-01 or something like \"2 years ago\" works.",
		hint:        "I couldn't read that as a date.",
		suggestions: []string{"Less than a month ago", "1 year ago", "3 years ago"},
		parse: func(text string, now time.Time) (claim.Facts, error) {
			d, err := extract.ParseDateAnswer(text, now)
			if err != nil {
				return claim.Facts{}, err
			}
			return claim.Facts{PolicyStartDate: &d}, nil
		},
	},
}

// questionFor returns the bank entry for field. Fields outside the bank
// get a generic question and are only filled by extraction.
func questionFor(field string) question {
	if q, ok := questionBank[field]; ok {
		return q
	}
	label := strings.ReplaceAll(field, "_", " ")
	return question{
		field: field,
		text:  fmt.Sprintf("Could you tell me the %s?", label),
		hint:  "I couldn't read that.",
		parse: func(string, time.Time) (claim.Facts, error) {
			return claim.Facts{}, extract.ErrUnrecognized
		},
	}
}
