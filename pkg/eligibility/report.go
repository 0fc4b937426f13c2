package eligibility

import (
	"fmt"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/diseases"
)

// recommendationsByCode is keyed off failed checks. Order of output follows
// the order of the rejections.
var recommendationsByCode = map[RejectionCode]string{
	RejectInitialWaiting:        "Only accident claims are payable during the initial waiting period; claim again after it ends",
	RejectPreExistingWaiting:    "Keep the policy renewed without a break so the pre-existing waiting period completes",
	RejectCongenital:            "Check whether a separate congenital or rider cover is available with your insurer",
	RejectPermanentExclusion:    "This treatment is excluded under the policy; consider paying directly or using another cover",
	RejectDiseaseWaiting:        "Plan the treatment after the disease waiting period ends, unless it is an emergency",
	RejectExceedsSumInsured:     "Use a top-up or super top-up policy, or claim the balance under another policy",
	RejectMissingPoliceDocs:     "Obtain an FIR or police report for the accident and resubmit the claim",
	RejectIncidentBeforePolicy:  "Accidents that happened before the policy started are not covered",
	RejectAccidentWaiting:       "Domestic accidents in the first weeks of a policy are not covered; keep all records in case of review",
	RejectMissingConsultation:   "Get a consultation note from the treating doctor describing the accident",
	RejectMissingMedicalRecords: "Collect discharge summary, bills and investigation reports before filing",
}

func recommendations(ev *evaluation) []string {
	out := []string{}
	seen := make(map[RejectionCode]bool)
	for _, rej := range ev.result.Rejections {
		if seen[rej.Code] {
			continue
		}
		seen[rej.Code] = true
		if rec, ok := recommendationsByCode[rej.Code]; ok {
			out = append(out, rec)
		}
	}

	if len(ev.result.Rejections) == 0 {
		out = append(out, "Submit the claim with the discharge summary, bills and prescriptions")
		if ev.result.Financial.CopayAmount.IsPositive() {
			out = append(out, fmt.Sprintf("Keep %s ready as your co-pay share", FormatINR(ev.result.Financial.CopayAmount)))
		}
	}
	if ev.result.RiskLevel == diseases.RiskHigh {
		out = append(out, "Expect additional scrutiny from the insurer; keep every document ready")
	}
	return out
}

func nextSteps(ev *evaluation) []string {
	if len(ev.result.Rejections) == 0 {
		steps := []string{
			"Inform the insurer or TPA within 24 hours of admission",
			"Request cashless authorization at a network hospital, or keep original bills for reimbursement",
			"Submit the claim form with discharge summary, bills, prescriptions and reports",
		}
		if ev.facts.ClaimType == claim.TypeAccident {
			steps = append(steps, "Attach the FIR or medico-legal certificate if one was issued")
		}
		return steps
	}

	steps := []string{"Review the rejection reasons listed above"}
	if ev.result.HasWaitingRejection() {
		steps = append(steps, "Confirm your policy start date from the policy schedule")
	}
	steps = append(steps,
		"Contact the insurer's customer care to confirm the decision",
		"If you disagree, file a grievance with the insurer and then with the Insurance Ombudsman",
	)
	return steps
}

func summary(r *Result) string {
	if r.Eligible {
		return fmt.Sprintf("Eligible: estimated payable %s after %s co-pay of %s",
			FormatINR(r.Financial.FinalAmount), r.Financial.CopayPercent.String()+"%", FormatINR(r.Financial.CopayAmount))
	}
	if len(r.Rejections) == 1 {
		return "Not eligible: " + r.Rejections[0].Reason
	}
	return fmt.Sprintf("Not eligible: %s (and %d more)", r.Rejections[0].Reason, len(r.Rejections)-1)
}
