package collaborator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/extract"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/planintel"
)

// HeuristicName is the name of the deterministic collaborator.
const HeuristicName = "heuristic"

// Heuristic is the deterministic collaborator: keyword and pattern
// extraction, template narration. It never fails.
type Heuristic struct {
	extractor *extract.Extractor
}

// NewHeuristic creates a deterministic collaborator. A nil extractor uses
// extract.New().
func NewHeuristic(extractor *extract.Extractor) *Heuristic {
	if extractor == nil {
		extractor = extract.New()
	}
	return &Heuristic{extractor: extractor}
}

// Name implements Collaborator.
func (h *Heuristic) Name() string {
	return HeuristicName
}

// Extract implements Collaborator.
func (h *Heuristic) Extract(_ context.Context, text string, _ Hints) (claim.Facts, error) {
	return h.extractor.Extract(text), nil
}

// Narrate implements Collaborator.
func (h *Heuristic) Narrate(_ context.Context, result *eligibility.Result, analysis *planintel.Analysis) (string, error) {
	return Narration(result, analysis), nil
}

// Narration renders an assessment as plain text.
func Narration(result *eligibility.Result, analysis *planintel.Analysis) string {
	if result == nil {
		return ""
	}

	var sb strings.Builder
	if result.Eligible {
		sb.WriteString("Good news: this claim looks payable under your plan.")
	} else {
		sb.WriteString("This claim is not payable right now.")
	}
	if result.Condition != "" {
		fmt.Fprintf(&sb, " Condition assessed: %s (risk %s).", result.Condition, result.RiskLevel)
	}
	sb.WriteString("\n")

	if len(result.Rejections) > 0 {
		sb.WriteString("\nReasons:\n")
		for _, r := range result.Rejections {
			sb.WriteString("- " + r.Reason + "\n")
		}
	}

	f := result.Financial
	sb.WriteString("\nEstimate:\n")
	fmt.Fprintf(&sb, "- Claim amount: %s\n", eligibility.FormatINR(f.ClaimAmount))
	if !f.CopayPercent.IsZero() {
		fmt.Fprintf(&sb, "- Co-pay (%s%%): %s\n", f.CopayPercent.String(), eligibility.FormatINR(f.CopayAmount))
	}
	fmt.Fprintf(&sb, "- Payable by insurer: %s\n", eligibility.FormatINR(f.FinalAmount))

	if analysis != nil && len(analysis.SpecialFeatures) > 0 {
		sb.WriteString("\nPlan features that apply:\n")
		for _, feature := range analysis.SpecialFeatures {
			sb.WriteString("- " + feature + "\n")
		}
	}

	if len(result.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for _, r := range result.Recommendations {
			sb.WriteString("- " + r + "\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
