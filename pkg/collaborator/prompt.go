package collaborator

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/planintel"
)

const extractSystemPrompt = `You extract facts about a health insurance claim from a user's message.
Reply with one JSON object and nothing else. Include only facts the message states; omit everything else.
Allowed keys:
  patient_name (string), patient_age (integer years), gender ("male", "female" or "other"),
  policy_start_date and claim_date ("YYYY-MM-DD"), medical_condition (string, lowercase),
  claim_amount and sum_insured (number of rupees; 1 lakh = 100000, 1 crore = 10000000),
  treatment_type ("inpatient", "daycare", "outpatient" or "surgery"),
  pre_existing_disease, emergency, consumables_required, congenital_condition, ayush_treatment (booleans),
  claim_type ("accident" or "illness"),
  accident (object: type one of "road_traffic_accident", "domestic", "workplace", "sports", "other";
            documentation_proof, medical_consultation, medical_records (booleans); incident_date "YYYY-MM-DD"),
  cataract_cause ("age_related", "traumatic", "congenital" or "diabetic"),
  cataract_eyes ("unilateral" or "bilateral"), delivery_number (integer).`

const narrateSystemPrompt = `You explain a health insurance claim assessment to a policyholder.
Use the JSON assessment you are given as the only source of truth. Never change the decision or any amount.
Write at most six short sentences in plain language. Amounts are Indian rupees.`

func extractMessages(text string, hints Hints) []string {
	var sb strings.Builder
	if hints.PlanName != "" {
		fmt.Fprintf(&sb, "Plan: %s\n", hints.PlanName)
	}
	if hints.AwaitingField != "" {
		fmt.Fprintf(&sb, "The user is answering a question about %s.\n", strings.ReplaceAll(hints.AwaitingField, "_", " "))
	}
	if !hints.Known.IsEmpty() {
		if known, err := json.Marshal(hints.Known); err == nil {
			fmt.Fprintf(&sb, "Already known: %s\n", known)
		}
	}
	sb.WriteString("Message: ")
	sb.WriteString(text)
	return []string{extractSystemPrompt, sb.String()}
}

type narrationInput struct {
	Result   *eligibility.Result  `json:"assessment"`
	Analysis *planintel.Analysis `json:"plan_analysis,omitempty"`
}

func narrateMessages(result *eligibility.Result, analysis *planintel.Analysis) ([]string, error) {
	body, err := json.Marshal(narrationInput{Result: result, Analysis: analysis})
	if err != nil {
		return nil, fmt.Errorf("failed to encode assessment: %w", err)
	}
	return []string{narrateSystemPrompt, string(body)}, nil
}
