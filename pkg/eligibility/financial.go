package eligibility

import (
	"github.com/shopspring/decimal"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

var hundred = decimal.NewFromInt(100)

// CopayPercent returns the co-pay that applies to a patient under doc: the
// larger of the age-based co-pay and the policy's own rule. doc may be nil.
func (e *Engine) CopayPercent(age *int, doc *policydoc.Document) float64 {
	if doc == nil {
		return e.copayPercent(age, policydoc.CoPay{}, false)
	}
	rule, ok := doc.CoPay()
	return e.copayPercent(age, rule, ok)
}

func (e *Engine) copayPercent(age *int, rule policydoc.CoPay, hasRule bool) float64 {
	pct := 0.0
	if age != nil && *age > e.cfg.SeniorAge {
		pct = e.cfg.SeniorCopayPercent
	}
	if hasRule {
		applies := !rule.AgeQualified || (age != nil && rule.AppliesTo(*age, e.cfg.SeniorAge))
		if applies && rule.Percent > pct {
			pct = rule.Percent
		}
	}
	return pct
}

func (e *Engine) financial(ev *evaluation) Financial {
	pct := e.copayPercent(ev.facts.PatientAge, ev.terms.copay, ev.terms.hasCopay)
	return Breakdown(claimAmount(ev.facts), e.sumInsured(ev), pct)
}

// Breakdown computes the payable split. The co-pay is rounded to whole
// rupees, half away from zero, and the final amount is claim minus co-pay.
func Breakdown(claimAmount, sumInsured, copayPercent float64) Financial {
	amount := decimal.NewFromFloat(claimAmount)
	pct := decimal.NewFromFloat(copayPercent)
	copay := amount.Mul(pct).Div(hundred).Round(0)
	return Financial{
		ClaimAmount:  amount,
		SumInsured:   decimal.NewFromFloat(sumInsured),
		CopayPercent: pct,
		CopayAmount:  copay,
		FinalAmount:  amount.Sub(copay),
	}
}
