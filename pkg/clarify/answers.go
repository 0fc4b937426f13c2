package clarify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/extract"
)

var deliveryDigits = regexp.MustCompile(`\b([1-9])\b`)

// ApplyAnswer turns a free-text answer into a facts patch for the question
// it answers. Text that cannot be classified yields an empty patch.
func (g *Generator) ApplyAnswer(text string, c Clarification) claim.Facts {
	var patch claim.Facts
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return patch
	}

	switch c.Type {
	case TypeCataractCause:
		switch {
		case hasAny(lower, "injur", "trauma", "accident"):
			patch.CataractCause = claim.Ptr(claim.CataractTraumatic)
		case hasAny(lower, "congenital", "birth"):
			patch.CataractCause = claim.Ptr(claim.CataractCongenital)
			patch.CongenitalCondition = claim.Ptr(true)
		case hasAny(lower, "diabet", "sugar"):
			patch.CataractCause = claim.Ptr(claim.CataractDiabetic)
		case hasAny(lower, "age", "old", "senile", "elderly"):
			patch.CataractCause = claim.Ptr(claim.CataractAgeRelated)
		}

	case TypeCataractEyes:
		switch {
		case hasAny(lower, "both", "bilateral", "two eyes", "2 eyes"):
			patch.CataractEyes = claim.Ptr(claim.EyesBilateral)
		case hasAny(" "+lower+" ", " one ", "single", "left", "right", "unilateral", "1 eye"):
			patch.CataractEyes = claim.Ptr(claim.EyesUnilateral)
		}

	case TypeDeliveryNumber:
		if n, ok := deliveryNumber(lower); ok {
			patch.DeliveryNumber = claim.Ptr(n)
		}

	case TypeAccidentType:
		if t, err := extract.ParseAccidentType(lower); err == nil {
			patch.ClaimType = claim.TypeAccident
			patch.Accident = &claim.Accident{Type: t}
		}

	case TypeAccidentDocs:
		if v, err := extract.ParseDocumentation(lower); err == nil {
			patch.ClaimType = claim.TypeAccident
			patch.Accident = &claim.Accident{Documentation: claim.Ptr(v)}
		}

	case TypeConsultation:
		if v, ok := extract.ParseYesNo(lower); ok {
			patch.ClaimType = claim.TypeAccident
			patch.Accident = &claim.Accident{MedicalConsultation: claim.Ptr(v)}
		}

	case TypeMedicalRecords:
		if v, ok := extract.ParseYesNo(lower); ok {
			patch.ClaimType = claim.TypeAccident
			patch.Accident = &claim.Accident{MedicalRecords: claim.Ptr(v)}
		}

	case TypeCopayAcknowledge:
		if v, ok := extract.ParseYesNo(lower); ok {
			patch.CopayAcknowledged = claim.Ptr(v)
		}

	case TypePreExisting:
		if v, ok := extract.ParseYesNo(lower); ok {
			patch.PreExistingDisease = claim.Ptr(v)
		}

	case TypeEmergency:
		switch {
		case hasAny(lower, "planned", "elective", "scheduled"):
			patch.Emergency = claim.Ptr(false)
		case hasAny(lower, "emergency"):
			patch.Emergency = claim.Ptr(!negated(lower))
		default:
			if v, ok := extract.ParseYesNo(lower); ok {
				patch.Emergency = claim.Ptr(v)
			}
		}

	case TypeTreatmentType:
		if t, err := extract.ParseTreatment(lower); err == nil {
			patch.TreatmentType = claim.Ptr(t)
		}

	case TypeConsumables:
		if v, ok := extract.ParseYesNo(lower); ok {
			patch.ConsumablesRequired = claim.Ptr(v)
		}

	case TypeAyush:
		if v, ok := extract.ParseYesNo(lower); ok {
			patch.AyushTreatment = claim.Ptr(v)
		}

	case TypePolicyDuration:
		if d, err := extract.ParseDateAnswer(text, g.now()); err == nil {
			patch.PolicyStartDate = &d
		}
	}
	return patch
}

func deliveryNumber(lower string) (int, bool) {
	switch {
	case hasAny(lower, "first", "1st"):
		return 1, true
	case hasAny(lower, "second", "2nd"):
		return 2, true
	case hasAny(lower, "third", "3rd", "later"):
		return 3, true
	case hasAny(lower, "fourth", "4th"):
		return 4, true
	}
	if m := deliveryDigits.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	return 0, false
}

func negated(lower string) bool {
	return hasAny(lower, "not ", "no ", "wasn't", "was not", "non-")
}

func hasAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
