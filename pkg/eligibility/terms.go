package eligibility

import "github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"

// terms are the plan values the checks need, resolved once per evaluation
// with the engine defaults filled in.
type terms struct {
	doc *policydoc.Document

	initialDays     int
	preExistingDays int
	specificDays    int
	hasSpecificDays bool

	sumInsured    float64
	hasSumInsured bool

	copay    policydoc.CoPay
	hasCopay bool
}

func (e *Engine) resolveTerms(doc *policydoc.Document) terms {
	t := terms{
		doc:             doc,
		initialDays:     e.cfg.InitialWaitingDays,
		preExistingDays: e.cfg.PreExistingWaitingDays,
	}
	if doc == nil {
		return t
	}
	if days, ok := doc.WaitingPeriod(policydoc.WaitingInitial); ok {
		t.initialDays = days
	}
	if days, ok := doc.WaitingPeriod(policydoc.WaitingPreExisting); ok {
		t.preExistingDays = days
	}
	if days, ok := doc.WaitingPeriod(policydoc.WaitingSpecificDisease); ok {
		t.specificDays, t.hasSpecificDays = days, true
	}
	if si, ok := doc.SumInsured(); ok && si > 0 {
		t.sumInsured, t.hasSumInsured = si, true
	}
	t.copay, t.hasCopay = doc.CoPay()
	return t
}

// snapshot is the coverage-detail pass-through. Every key is always present.
func (t terms) snapshot() map[string]string {
	out := map[string]string{
		"company":                  policydoc.NotSpecified,
		"plan_name":                policydoc.NotSpecified,
		"sum_insured":              policydoc.NotSpecified,
		"room_rent":                policydoc.NotSpecified,
		"copay":                    policydoc.NotSpecified,
		"initial_waiting":          pluralDays(t.initialDays),
		"specific_disease_waiting": policydoc.NotSpecified,
		"pre_existing_waiting":     describeDays(t.preExistingDays),
		"maternity":                policydoc.NotSpecified,
	}
	if t.hasSpecificDays {
		out["specific_disease_waiting"] = describeDays(t.specificDays)
	}
	if t.hasCopay {
		out["copay"] = t.copay.Text
	}
	if t.doc == nil {
		return out
	}

	if v := t.doc.Company(); v != "" {
		out["company"] = v
	}
	if v := t.doc.PlanName(); v != "" {
		out["plan_name"] = v
	}
	if v := t.doc.SumInsuredText(); v != "" {
		out["sum_insured"] = v
	}
	if _, v, ok := t.doc.SubLimit("room rent", "room"); ok {
		out["room_rent"] = v
	}
	if m := t.doc.Maternity(); m.Present {
		if m.Covered {
			out["maternity"] = "Covered"
		} else {
			out["maternity"] = "Not covered"
		}
	}
	return out
}
