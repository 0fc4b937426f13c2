package diseases

// Risk is a coarse claim risk tier.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Kind says where a rule's waiting period comes from.
type Kind string

const (
	// KindSpecific rules follow the plan's specific-disease waiting period
	// when the plan defines one, and fall back to WaitingDays otherwise.
	KindSpecific Kind = "specific"

	// KindFixed rules always use WaitingDays.
	KindFixed Kind = "fixed"
)

// Rule describes a covered condition.
type Rule struct {
	Key                     string `json:"key" yaml:"key"`
	WaitingDays             int    `json:"waiting_days" yaml:"waiting_days"`
	HospitalizationRequired bool   `json:"hospitalization_required" yaml:"hospitalization_required"`
	Risk                    Risk   `json:"risk" yaml:"risk"`
	Kind                    Kind   `json:"kind" yaml:"kind"`
}

// Exclusion is a permanently excluded condition.
type Exclusion struct {
	Key    string `json:"key" yaml:"key"`
	Reason string `json:"reason" yaml:"reason"`
}

// defaultRules is searched in order; more specific keys come first so that a
// weak token match never shadows them.
var defaultRules = []Rule{
	{Key: "cataract", WaitingDays: 730, Risk: RiskLow, Kind: KindSpecific},
	{Key: "gallbladder stones", WaitingDays: 730, HospitalizationRequired: true, Risk: RiskMedium, Kind: KindSpecific},
	{Key: "kidney stones", WaitingDays: 730, HospitalizationRequired: true, Risk: RiskMedium, Kind: KindSpecific},
	{Key: "hernia", WaitingDays: 730, HospitalizationRequired: true, Risk: RiskMedium, Kind: KindSpecific},
	{Key: "hemorrhoids", WaitingDays: 730, Risk: RiskLow, Kind: KindSpecific},
	{Key: "sinusitis", WaitingDays: 730, Risk: RiskLow, Kind: KindSpecific},
	{Key: "tonsillitis", WaitingDays: 730, Risk: RiskLow, Kind: KindSpecific},
	{Key: "varicose veins", WaitingDays: 730, HospitalizationRequired: true, Risk: RiskLow, Kind: KindSpecific},
	{Key: "hysterectomy", WaitingDays: 730, HospitalizationRequired: true, Risk: RiskMedium, Kind: KindSpecific},
	{Key: "joint replacement", WaitingDays: 1460, HospitalizationRequired: true, Risk: RiskHigh, Kind: KindFixed},
	{Key: "heart disease", WaitingDays: 1095, HospitalizationRequired: true, Risk: RiskHigh, Kind: KindFixed},
	{Key: "cancer", WaitingDays: 1095, HospitalizationRequired: true, Risk: RiskHigh, Kind: KindFixed},
	{Key: "diabetes", WaitingDays: 1095, Risk: RiskMedium, Kind: KindFixed},
	{Key: "hypertension", WaitingDays: 1095, Risk: RiskMedium, Kind: KindFixed},
	{Key: "maternity", WaitingDays: 270, HospitalizationRequired: true, Risk: RiskMedium, Kind: KindFixed},
	{Key: "appendicitis", WaitingDays: 0, HospitalizationRequired: true, Risk: RiskMedium, Kind: KindFixed},
	{Key: "fracture", WaitingDays: 0, HospitalizationRequired: true, Risk: RiskLow, Kind: KindFixed},
}

var defaultExclusions = []Exclusion{
	{Key: "cosmetic", Reason: "Cosmetic or aesthetic procedures are permanently excluded"},
	{Key: "infertility", Reason: "Infertility and assisted reproduction treatments are permanently excluded"},
	{Key: "self-inflicted", Reason: "Self-inflicted injuries are permanently excluded"},
	{Key: "alcoholism", Reason: "Conditions caused by alcohol abuse are permanently excluded"},
	{Key: "substance abuse", Reason: "Conditions caused by drug or substance abuse are permanently excluded"},
	{Key: "obesity", Reason: "Obesity and weight-control treatment are permanently excluded"},
	{Key: "experimental", Reason: "Experimental or unproven treatments are permanently excluded"},
	{Key: "warfare", Reason: "Injuries from war, invasion or nuclear hazards are permanently excluded"},
	{Key: "baldness", Reason: "Treatment for baldness or hair loss is permanently excluded"},
	{Key: "gender reassignment", Reason: "Gender reassignment procedures are permanently excluded"},
	{Key: "sterilization", Reason: "Sterilization procedures are permanently excluded"},
}

// Base is the disease rule base. The zero value is not usable; use NewBase.
type Base struct {
	rules      []Rule
	exclusions []Exclusion
}

// NewBase returns the built-in rule base. Extra rules are searched before
// the built-in ones.
func NewBase(extra ...Rule) *Base {
	rules := make([]Rule, 0, len(extra)+len(defaultRules))
	rules = append(rules, extra...)
	rules = append(rules, defaultRules...)
	return &Base{
		rules:      rules,
		exclusions: append([]Exclusion(nil), defaultExclusions...),
	}
}

// Rules returns a copy of the covered-condition table in search order.
func (b *Base) Rules() []Rule {
	return append([]Rule(nil), b.rules...)
}

// Lookup returns the covered-condition rule for a free-text condition. A
// strong match anywhere in the table beats a token match; ties go to the
// earlier rule.
func (b *Base) Lookup(condition string) (Rule, bool) {
	return bestMatch(condition, b.rules, func(r Rule) string { return r.Key })
}

// Exclusion returns the permanent exclusion matching the condition. Only
// substring and synonym matches count; a shared token is not enough to
// exclude a claim.
func (b *Base) Exclusion(condition string) (Exclusion, bool) {
	for _, e := range b.exclusions {
		if Match(condition, e.Key) == StrongMatch {
			return e, true
		}
	}
	return Exclusion{}, false
}

func bestMatch[T any](condition string, items []T, key func(T) string) (T, bool) {
	var (
		best     T
		bestRank = NoMatch
	)
	for _, item := range items {
		s := Match(condition, key(item))
		if s > bestRank {
			best, bestRank = item, s
			if s == StrongMatch {
				break
			}
		}
	}
	return best, bestRank != NoMatch
}
