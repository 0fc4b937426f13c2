package eligibility

import (
	"github.com/shopspring/decimal"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/diseases"
)

// RejectionCode identifies a failed check.
type RejectionCode string

const (
	RejectInitialWaiting        RejectionCode = "initial_waiting_period"
	RejectPreExistingWaiting    RejectionCode = "pre_existing_waiting_period"
	RejectCongenital            RejectionCode = "congenital_exclusion"
	RejectPermanentExclusion    RejectionCode = "permanent_exclusion"
	RejectDiseaseWaiting        RejectionCode = "disease_waiting_period"
	RejectExceedsSumInsured     RejectionCode = "exceeds_sum_insured"
	RejectMissingPoliceDocs     RejectionCode = "missing_police_documentation"
	RejectIncidentBeforePolicy  RejectionCode = "incident_before_policy_start"
	RejectAccidentWaiting       RejectionCode = "accident_waiting_period"
	RejectMissingConsultation   RejectionCode = "missing_medical_consultation"
	RejectMissingMedicalRecords RejectionCode = "missing_medical_records"
)

// IsWaiting reports whether the code is one of the waiting-period checks.
func (c RejectionCode) IsWaiting() bool {
	switch c {
	case RejectInitialWaiting, RejectPreExistingWaiting, RejectDiseaseWaiting, RejectAccidentWaiting:
		return true
	}
	return false
}

// Rejection is one failed check.
type Rejection struct {
	Code   RejectionCode `json:"code" yaml:"code"`
	Reason string        `json:"reason" yaml:"reason"`
}

// Financial is the payable breakdown. FinalAmount always equals
// ClaimAmount minus CopayAmount.
type Financial struct {
	ClaimAmount  decimal.Decimal `json:"claim_amount" yaml:"claim_amount"`
	SumInsured   decimal.Decimal `json:"sum_insured" yaml:"sum_insured"`
	CopayPercent decimal.Decimal `json:"copay_percentage" yaml:"copay_percentage"`
	CopayAmount  decimal.Decimal `json:"copay_amount" yaml:"copay_amount"`
	FinalAmount  decimal.Decimal `json:"final_amount" yaml:"final_amount"`
}

// Result is the outcome of one evaluation. It is rebuilt from scratch on
// every call and never patched.
type Result struct {
	// Eligible is true iff Rejections is empty.
	Eligible bool `json:"eligible" yaml:"eligible"`

	// RiskLevel is the claim risk tier.
	RiskLevel diseases.Risk `json:"risk_level" yaml:"risk_level"`

	// ClaimType is the flow that evaluated the claim.
	ClaimType claim.Type `json:"claim_type" yaml:"claim_type"`

	// Condition is the medical condition the checks ran against.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`

	// MatchedRule is the disease rule key, or "" when unclassified.
	MatchedRule string `json:"matched_rule,omitempty" yaml:"matched_rule,omitempty"`

	// PolicyAgeDays is the policy age on the reference date.
	PolicyAgeDays int `json:"policy_age_days" yaml:"policy_age_days"`

	// ReferenceDate is the date the claim was assessed against.
	ReferenceDate claim.Date `json:"reference_date" yaml:"reference_date"`

	// Rejections lists every failed check, in evaluation order.
	Rejections []Rejection `json:"rejections" yaml:"rejections"`

	// WaitingPeriodsRemaining maps a waiting-period name to the time left.
	WaitingPeriodsRemaining map[string]string `json:"waiting_periods_remaining" yaml:"waiting_periods_remaining"`

	// Financial is always computed, even for ineligible claims.
	Financial Financial `json:"financial_breakdown" yaml:"financial_breakdown"`

	// CoverageDetails is a snapshot of the plan terms that were applied.
	CoverageDetails map[string]string `json:"coverage_details" yaml:"coverage_details"`

	Recommendations []string `json:"recommendations" yaml:"recommendations"`
	NextSteps       []string `json:"next_steps" yaml:"next_steps"`
	Summary         string   `json:"summary" yaml:"summary"`
}

// HasRejection reports whether the given check failed.
func (r *Result) HasRejection(code RejectionCode) bool {
	for _, rej := range r.Rejections {
		if rej.Code == code {
			return true
		}
	}
	return false
}

// HasWaitingRejection reports whether any waiting-period check failed.
func (r *Result) HasWaitingRejection() bool {
	for _, rej := range r.Rejections {
		if rej.Code.IsWaiting() {
			return true
		}
	}
	return false
}

// Reasons returns the rejection reasons as text.
func (r *Result) Reasons() []string {
	out := make([]string, 0, len(r.Rejections))
	for _, rej := range r.Rejections {
		out = append(out, rej.Reason)
	}
	return out
}
