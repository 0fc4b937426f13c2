package planintel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/diseases"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

// categoryWords are the words that tie a document entry to a category.
var categoryWords = map[diseases.Category][]string{
	diseases.CategoryCataract:  {"cataract", "lens"},
	diseases.CategoryMaternity: {"maternity", "delivery", "pregnan", "newborn"},
	diseases.CategoryHeart:     {"heart", "cardiac", "angioplasty", "bypass", "coronary"},
	diseases.CategoryDiabetes:  {"diabet", "chronic", "sugar"},
	diseases.CategoryAccident:  {"accident", "trauma", "injur"},
	diseases.CategoryCancer:    {"cancer", "oncology", "chemo", "radiotherapy", "tumo"},
}

const genericCataractWaiting = "Cataract usually carries a 24-month waiting period; check how long the policy has been active"

func extractCataract(doc *policydoc.Document, a *Analysis) {
	key, value, ok := doc.SubLimit("cataract")
	switch {
	case ok && policydoc.IsUncapped(value):
		a.addFeature(FeatureUncappedCataract)
		a.PlanSpecificRules[RuleCataractLimit] = "actual"
		a.recommend("Cataract surgery is paid at actual cost under this plan; only the sum insured caps the claim")
	case ok:
		a.PlanSpecificRules[RuleCataractLimit] = value
		a.recommend(fmt.Sprintf("Cataract claims are capped by the %q sub-limit: %s", key, value))
		a.recommend(genericCataractWaiting)
	default:
		a.recommend(genericCataractWaiting)
	}
	scanFeatures(doc, a, categoryWords[diseases.CategoryCataract])
}

func extractMaternity(doc *policydoc.Document, a *Analysis) {
	m := doc.Maternity()
	switch {
	case !m.Present:
		a.PlanSpecificRules[RuleMaternityCover] = policydoc.NotSpecified
		a.recommend("The plan does not describe maternity cover; confirm with the insurer before filing")
		return
	case !m.Covered:
		a.PlanSpecificRules[RuleMaternityCover] = "false"
		a.recommend("Maternity expenses are not covered by this plan")
		return
	}
	a.PlanSpecificRules[RuleMaternityCover] = "true"

	deliveries := make([]int, 0, len(m.WaitingDays))
	for n := range m.WaitingDays {
		deliveries = append(deliveries, n)
	}
	sort.Ints(deliveries)
	for _, n := range deliveries {
		if n == 0 {
			a.PlanSpecificRules["maternity_waiting"] = fmt.Sprintf("%d days", m.WaitingDays[n])
			continue
		}
		a.PlanSpecificRules[fmt.Sprintf("delivery_%d_waiting", n)] = fmt.Sprintf("%d days", m.WaitingDays[n])
	}

	for _, k := range sortedKeys(m.Amounts) {
		a.PlanSpecificRules[ruleKey(k)] = m.Amounts[k]
	}
	for _, k := range sortedKeys(m.Details) {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "newborn") || strings.Contains(lk, "baby") {
			a.addFeature("Newborn cover: " + m.Details[k])
		}
	}

	if len(deliveries) > 0 {
		a.recommend("Maternity waiting periods depend on the delivery number; count them from the first policy start date")
	}
	scanFeatures(doc, a, categoryWords[diseases.CategoryMaternity])
}

func extractHeart(doc *policydoc.Document, a *Analysis) {
	if scan(doc, a, categoryWords[diseases.CategoryHeart]) == 0 {
		a.recommend("No cardiac sub-limit found; the claim is limited only by the sum insured")
	}
	a.recommend("Cardiac procedures are usually pre-authorized; request cashless approval before admission")
}

func extractDiabetes(doc *policydoc.Document, a *Analysis) {
	scan(doc, a, categoryWords[diseases.CategoryDiabetes])
	if waived(doc, categoryWords[diseases.CategoryDiabetes]) {
		a.recommend("This plan covers diabetes without the usual waiting period")
		return
	}
	a.recommend("Diabetes diagnosed before the policy start is pre-existing and must be declared")
}

func extractAccident(doc *policydoc.Document, a *Analysis) {
	scan(doc, a, categoryWords[diseases.CategoryAccident])
	for _, k := range sortedKeys(a.WaitingPeriods) {
		v := a.WaitingPeriods[k]
		if strings.Contains(strings.ToLower(k+" "+v), "accident") {
			a.PlanSpecificRules[RuleAccidentWaiting] = v
			break
		}
	}
	a.recommend("Accidents are normally covered from day one; keep the FIR or medico-legal certificate for road accidents")
}

func extractCancer(doc *policydoc.Document, a *Analysis) {
	if scan(doc, a, categoryWords[diseases.CategoryCancer]) == 0 {
		a.recommend("No oncology sub-limit found; chemotherapy and radiotherapy are paid within the sum insured")
	}
}

func extractGeneric(doc *policydoc.Document, a *Analysis) {
	if _, v, ok := doc.SubLimit("room rent", "room"); ok {
		a.PlanSpecificRules[RuleRoomRent] = v
		if !policydoc.IsUncapped(v) {
			a.recommend(fmt.Sprintf("Choose a room within the room-rent limit (%s) to avoid proportionate deductions", v))
		}
	}
	if rule, ok := doc.CoPay(); ok {
		a.PlanSpecificRules[RuleCopay] = rule.Text
		a.recommend(fmt.Sprintf("A co-pay applies under this plan: %s", rule.Text))
	}
}

// scan copies sub-limits and features that mention any of words. It returns
// the number of entries found.
func scan(doc *policydoc.Document, a *Analysis, words []string) int {
	limits := doc.SubLimits()
	found := 0
	for _, k := range sortedKeys(limits) {
		if mentions(k, words) {
			a.PlanSpecificRules[ruleKey(k)] = limits[k]
			found++
		}
	}
	return found + scanFeatures(doc, a, words)
}

func scanFeatures(doc *policydoc.Document, a *Analysis, words []string) int {
	found := 0
	for _, f := range doc.SpecialFeatures() {
		if mentions(f, words) {
			a.addFeature(f)
			found++
		}
	}
	return found
}

// waived reports whether any waiting-period entry, sub-limit or feature
// relevant to words waives its waiting period.
func waived(doc *policydoc.Document, words []string) bool {
	if len(words) == 0 {
		return false
	}
	periods := doc.WaitingPeriods()
	for _, k := range sortedKeys(periods) {
		if mentions(k+" "+periods[k], words) && policydoc.IsWaived(periods[k]) {
			return true
		}
	}

	var texts []string
	limits := doc.SubLimits()
	for _, k := range sortedKeys(limits) {
		texts = append(texts, k+": "+limits[k])
	}
	texts = append(texts, doc.SpecialFeatures()...)
	for _, t := range texts {
		lower := strings.ToLower(t)
		if !mentions(lower, words) {
			continue
		}
		if strings.Contains(lower, "wait") || strings.Contains(lower, "day 1") || strings.Contains(lower, "day one") {
			if policydoc.IsWaived(lower) {
				return true
			}
		}
	}
	return false
}

func mentions(s string, words []string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// ruleKey turns a document key into a snake_case rule name.
func ruleKey(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
