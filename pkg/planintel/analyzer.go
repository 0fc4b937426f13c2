// Package planintel mines a policy document for rules that matter to one
// medical condition: uncapped sub-limits, waived waiting periods, rider
// terms. It only informs; eligibility is decided elsewhere.
package planintel

import (
	"log/slog"
	"strings"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/diseases"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

// Rule keys set by the extractors.
const (
	RuleWaitingWaived   = "waiting_period_waived"
	RuleCataractLimit   = "cataract_limit"
	RuleMaternityCover  = "maternity_covered"
	RuleRoomRent        = "room_rent"
	RuleCopay           = "copay"
	RuleAccidentWaiting = "accident_waiting"
)

// FeatureUncappedCataract is reported when cataract surgery is paid at
// actual cost.
const FeatureUncappedCataract = "Uncapped cataract coverage"

// Analysis is the plan insight for one condition.
type Analysis struct {
	Category          diseases.Category `json:"category" yaml:"category"`
	SpecialFeatures   []string          `json:"special_features" yaml:"special_features"`
	PlanSpecificRules map[string]string `json:"plan_specific_rules" yaml:"plan_specific_rules"`
	WaitingPeriods    map[string]string `json:"waiting_periods" yaml:"waiting_periods"`
	Recommendations   []string          `json:"recommendations" yaml:"recommendations"`
}

// WaitingWaived reports whether the plan waives a waiting period relevant
// to the condition.
func (a *Analysis) WaitingWaived() bool {
	return a != nil && a.PlanSpecificRules[RuleWaitingWaived] == "true"
}

// Uncapped reports whether the condition's sub-limit is paid at actual cost.
func (a *Analysis) Uncapped() bool {
	if a == nil {
		return false
	}
	for _, f := range a.SpecialFeatures {
		if strings.HasPrefix(f, "Uncapped") {
			return true
		}
	}
	return false
}

// HasFeature reports whether any special feature contains s, ignoring case.
func (a *Analysis) HasFeature(s string) bool {
	if a == nil {
		return false
	}
	s = strings.ToLower(s)
	for _, f := range a.SpecialFeatures {
		if strings.Contains(strings.ToLower(f), s) {
			return true
		}
	}
	return false
}

func (a *Analysis) addFeature(f string) {
	for _, existing := range a.SpecialFeatures {
		if existing == f {
			return
		}
	}
	a.SpecialFeatures = append(a.SpecialFeatures, f)
}

func (a *Analysis) recommend(r string) {
	a.Recommendations = append(a.Recommendations, r)
}

// extractor fills an analysis from the document sections it cares about.
type extractor func(doc *policydoc.Document, a *Analysis)

// Analyzer dispatches a condition to the extractor of its category.
type Analyzer struct {
	extractors map[diseases.Category]extractor
	logger     *slog.Logger
}

// NewAnalyzer creates an analyzer with the built-in extractors.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		extractors: map[diseases.Category]extractor{
			diseases.CategoryCataract:  extractCataract,
			diseases.CategoryMaternity: extractMaternity,
			diseases.CategoryHeart:     extractHeart,
			diseases.CategoryDiabetes:  extractDiabetes,
			diseases.CategoryAccident:  extractAccident,
			diseases.CategoryCancer:    extractCancer,
			diseases.CategoryGeneric:   extractGeneric,
		},
		logger: logger.With("component", "planintel"),
	}
}

// Analyze categorizes the condition and runs its extractor. doc may be nil.
func (a *Analyzer) Analyze(condition string, doc *policydoc.Document) *Analysis {
	return a.AnalyzeCategory(diseases.Categorize(condition), doc)
}

// AnalyzeCategory runs the extractor for an already computed category.
func (a *Analyzer) AnalyzeCategory(category diseases.Category, doc *policydoc.Document) *Analysis {
	out := &Analysis{
		Category:          category,
		SpecialFeatures:   []string{},
		PlanSpecificRules: map[string]string{},
		WaitingPeriods:    map[string]string{},
		Recommendations:   []string{},
	}
	if doc == nil {
		out.recommend("Select a plan to see plan-specific rules for this condition")
		return out
	}
	out.WaitingPeriods = doc.WaitingPeriods()

	fn, ok := a.extractors[category]
	if !ok {
		fn = extractGeneric
	}
	fn(doc, out)

	if waived(doc, categoryWords[category]) {
		out.PlanSpecificRules[RuleWaitingWaived] = "true"
	}

	a.logger.Debug("plan analysed",
		"plan_id", doc.ID(),
		"category", string(category),
		"features", len(out.SpecialFeatures),
		"rules", len(out.PlanSpecificRules),
	)
	return out
}
