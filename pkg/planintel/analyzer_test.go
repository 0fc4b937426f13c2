package planintel

import (
	"testing"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/diseases"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

func mustDoc(t *testing.T, data string) *policydoc.Document {
	t.Helper()
	doc, err := policydoc.Parse("test-plan", []byte(data))
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return doc
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestAnalyze_UncappedCataract(t *testing.T) {
	a := NewAnalyzer(nil)
	doc := mustDoc(t, `{"sublimits": {"Cataract Limits": "ACTUAL"}}`)

	got := a.Analyze("age-related cataract", doc)
	if got.Category != diseases.CategoryCataract {
		t.Errorf("expected cataract category, got %s", got.Category)
	}
	if !contains(got.SpecialFeatures, FeatureUncappedCataract) {
		t.Errorf("expected %q feature, got %v", FeatureUncappedCataract, got.SpecialFeatures)
	}
	if !got.Uncapped() {
		t.Error("expected analysis to report uncapped coverage")
	}
	if got.PlanSpecificRules[RuleCataractLimit] != "actual" {
		t.Errorf("expected cataract_limit=actual, got %q", got.PlanSpecificRules[RuleCataractLimit])
	}
	if contains(got.Recommendations, genericCataractWaiting) {
		t.Error("expected generic waiting recommendation to be replaced")
	}
}

func TestAnalyze_CappedCataract(t *testing.T) {
	a := NewAnalyzer(nil)
	doc := mustDoc(t, `{"sublimits": {"Cataract": "₹40,000 per eye"}}`)

	got := a.Analyze("cataract", doc)
	if got.Uncapped() {
		t.Error("expected capped coverage")
	}
	if got.PlanSpecificRules[RuleCataractLimit] != "₹40,000 per eye" {
		t.Errorf("expected limit to be reported, got %q", got.PlanSpecificRules[RuleCataractLimit])
	}
	if !contains(got.Recommendations, genericCataractWaiting) {
		t.Errorf("expected generic waiting recommendation, got %v", got.Recommendations)
	}
}

func TestAnalyze_WaitingWaived(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		plan      string
		waived    bool
	}{
		{
			name:      "waiting table entry",
			condition: "cataract",
			plan:      `{"Waiting Periods": {"Specific Diseases": "24 months", "Cataract": "Waived"}}`,
			waived:    true,
		},
		{
			name:      "feature text",
			condition: "type 2 diabetes",
			plan:      `{"features": ["Diabetes covered from day 1"]}`,
			waived:    true,
		},
		{
			name:      "unrelated waiver",
			condition: "cataract",
			plan:      `{"features": ["No waiting period for accidents"]}`,
		},
		{
			name:      "regular waiting period",
			condition: "cataract",
			plan:      `{"Waiting Periods": {"Cataract": "2 years"}}`,
		},
	}

	a := NewAnalyzer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.condition, mustDoc(t, tt.plan))
			if got.WaitingWaived() != tt.waived {
				t.Errorf("expected waived=%v, got rules %v", tt.waived, got.PlanSpecificRules)
			}
		})
	}
}

func TestAnalyze_Maternity(t *testing.T) {
	a := NewAnalyzer(nil)
	doc := mustDoc(t, `{
		"maternity_benefits": {
			"Waiting Period": {"First delivery": "9 months", "Second delivery": "24 months"},
			"Normal delivery limit": "₹50,000",
			"Caesarean limit": "₹75,000",
			"Newborn cover": "Covered"
		}
	}`)

	got := a.Analyze("normal delivery", doc)
	if got.Category != diseases.CategoryMaternity {
		t.Fatalf("expected maternity category, got %s", got.Category)
	}

	expected := map[string]string{
		RuleMaternityCover:      "true",
		"delivery_1_waiting":    "274 days",
		"delivery_2_waiting":    "730 days",
		"normal_delivery_limit": "₹50,000",
		"caesarean_limit":       "₹75,000",
	}
	for k, v := range expected {
		if got.PlanSpecificRules[k] != v {
			t.Errorf("expected %s=%q, got %q", k, v, got.PlanSpecificRules[k])
		}
	}
	if !contains(got.SpecialFeatures, "Newborn cover: Covered") {
		t.Errorf("expected newborn feature, got %v", got.SpecialFeatures)
	}
}

func TestAnalyze_MaternityAbsent(t *testing.T) {
	a := NewAnalyzer(nil)
	got := a.Analyze("pregnancy", mustDoc(t, `{"Company": "Acme"}`))
	if got.PlanSpecificRules[RuleMaternityCover] != policydoc.NotSpecified {
		t.Errorf("expected maternity not specified, got %q", got.PlanSpecificRules[RuleMaternityCover])
	}
}

func TestAnalyze_Generic(t *testing.T) {
	a := NewAnalyzer(nil)
	doc := mustDoc(t, `{
		"sublimits": {"Room Rent": "1% of sum insured per day", "Co-pay": "20% for insured above 65 years"},
		"Waiting Periods": {"Initial": "30 days"}
	}`)

	got := a.Analyze("dengue fever", doc)
	if got.Category != diseases.CategoryGeneric {
		t.Errorf("expected generic category, got %s", got.Category)
	}
	if got.PlanSpecificRules[RuleRoomRent] != "1% of sum insured per day" {
		t.Errorf("expected room rent rule, got %q", got.PlanSpecificRules[RuleRoomRent])
	}
	if got.PlanSpecificRules[RuleCopay] != "20% for insured above 65 years" {
		t.Errorf("expected co-pay rule, got %q", got.PlanSpecificRules[RuleCopay])
	}
	if got.WaitingPeriods["Initial"] != "30 days" {
		t.Errorf("expected waiting table to be carried, got %v", got.WaitingPeriods)
	}
}

func TestAnalyze_CategoryScansOwnSections(t *testing.T) {
	a := NewAnalyzer(nil)
	doc := mustDoc(t, `{
		"sublimits": {"Chemotherapy": "Up to sum insured", "Angioplasty": "₹2 Lakh"},
		"features": ["Second opinion for cancer", "Annual health check-up"]
	}`)

	got := a.Analyze("chemotherapy for breast cancer", doc)
	if got.Category != diseases.CategoryCancer {
		t.Fatalf("expected cancer category, got %s", got.Category)
	}
	if got.PlanSpecificRules["chemotherapy"] != "Up to sum insured" {
		t.Errorf("expected chemotherapy sub-limit, got %v", got.PlanSpecificRules)
	}
	if _, ok := got.PlanSpecificRules["angioplasty"]; ok {
		t.Error("expected cardiac sub-limit to be ignored for cancer")
	}
	if !got.HasFeature("second opinion") {
		t.Errorf("expected cancer feature, got %v", got.SpecialFeatures)
	}
	if got.HasFeature("health check") {
		t.Error("expected unrelated feature to be ignored")
	}
}

func TestAnalyze_NilDocument(t *testing.T) {
	got := NewAnalyzer(nil).Analyze("cataract", nil)
	if got.Category != diseases.CategoryCataract {
		t.Errorf("expected cataract category, got %s", got.Category)
	}
	if len(got.PlanSpecificRules) != 0 || len(got.SpecialFeatures) != 0 {
		t.Errorf("expected empty analysis, got %+v", got)
	}
	if len(got.Recommendations) != 1 {
		t.Errorf("expected one recommendation, got %v", got.Recommendations)
	}
}

func TestRuleKey(t *testing.T) {
	tests := map[string]string{
		"Room Rent":             "room_rent",
		"Room Rent (per day)":   "room_rent_per_day",
		"Normal delivery limit": "normal_delivery_limit",
		"ICU":                   "icu",
	}
	for in, expected := range tests {
		if got := ruleKey(in); got != expected {
			t.Errorf("ruleKey(%q): expected %q, got %q", in, expected, got)
		}
	}
}
