package eligibility

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/diseases"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

// Engine decides whether a claim is payable under a policy document. It is
// safe for concurrent use and, for a fixed clock, deterministic.
type Engine struct {
	cfg    Config
	base   *diseases.Base
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used when a claim has no date of its own.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRuleBase replaces the built-in disease rule base.
func WithRuleBase(base *diseases.Base) Option {
	return func(e *Engine) {
		e.base = base
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine. Zero config fields take their defaults.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	cfg = withDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid eligibility config: %w", err)
	}
	e := &Engine{
		cfg:    cfg,
		base:   diseases.NewBase(),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "eligibility")
	return e, nil
}

func withDefaults(cfg Config) Config {
	d := DefaultConfig()
	if cfg.InitialWaitingDays == 0 {
		cfg.InitialWaitingDays = d.InitialWaitingDays
	}
	if cfg.PreExistingWaitingDays == 0 {
		cfg.PreExistingWaitingDays = d.PreExistingWaitingDays
	}
	if cfg.AccidentWaitingDays == 0 {
		cfg.AccidentWaitingDays = d.AccidentWaitingDays
	}
	if cfg.SeniorAge == 0 {
		cfg.SeniorAge = d.SeniorAge
	}
	if cfg.SeniorCopayPercent == 0 {
		cfg.SeniorCopayPercent = d.SeniorCopayPercent
	}
	if cfg.DefaultSumInsured == 0 {
		cfg.DefaultSumInsured = d.DefaultSumInsured
	}
	return cfg
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// RuleBase returns the disease rule base in use.
func (e *Engine) RuleBase() *diseases.Base {
	return e.base
}

// evaluation carries the state of one Evaluate call.
type evaluation struct {
	facts      claim.Facts
	terms      terms
	ref        claim.Date
	policyAge  int
	condition  string
	preExist   bool
	congenital bool
	emergency  bool

	result *Result
}

func (ev *evaluation) reject(code RejectionCode, format string, args ...any) {
	ev.result.Rejections = append(ev.result.Rejections, Rejection{
		Code:   code,
		Reason: fmt.Sprintf(format, args...),
	})
}

// Evaluate runs every check for the claim and returns a fresh result. The
// document may be nil, in which case only the generic rules apply.
func (e *Engine) Evaluate(facts claim.Facts, doc *policydoc.Document) *Result {
	f := facts.Clone()
	f.Normalize()

	ev := &evaluation{
		facts:      f,
		terms:      e.resolveTerms(doc),
		ref:        e.referenceDate(f),
		condition:  f.Condition(),
		preExist:   isTrue(f.PreExistingDisease),
		congenital: isTrue(f.CongenitalCondition),
		emergency:  isTrue(f.Emergency),
		result: &Result{
			RiskLevel:               diseases.RiskMedium,
			ClaimType:               f.ClaimType,
			Rejections:              []Rejection{},
			WaitingPeriodsRemaining: map[string]string{},
		},
	}
	if f.PolicyStartDate != nil {
		if age := f.PolicyStartDate.DaysUntil(ev.ref); age > 0 {
			ev.policyAge = age
		}
	}

	switch f.ClaimType {
	case claim.TypeAccident:
		e.evaluateAccident(ev)
	case claim.TypeIllness:
		e.evaluateIllness(ev)
	default:
		e.commonChecks(ev, false)
	}

	e.checkSumInsured(ev)

	r := ev.result
	r.Condition = ev.condition
	r.PolicyAgeDays = ev.policyAge
	r.ReferenceDate = ev.ref
	r.Eligible = len(r.Rejections) == 0
	r.Financial = e.financial(ev)
	r.CoverageDetails = ev.terms.snapshot()
	r.Recommendations = recommendations(ev)
	r.NextSteps = nextSteps(ev)
	r.Summary = summary(r)

	e.logger.Debug("claim evaluated",
		"claim_type", string(r.ClaimType),
		"eligible", r.Eligible,
		"rejections", len(r.Rejections),
		"policy_age_days", r.PolicyAgeDays,
	)
	return r
}

// referenceDate is the claim date, else the accident date, else today.
func (e *Engine) referenceDate(f claim.Facts) claim.Date {
	if f.ClaimDate != nil {
		return *f.ClaimDate
	}
	if f.Accident != nil && f.Accident.IncidentDate != nil {
		return *f.Accident.IncidentDate
	}
	return claim.DateOf(e.now())
}

// commonChecks runs the checks shared by every flow. Reasons accumulate.
// skipWaiting suppresses the waiting-period checks only.
func (e *Engine) commonChecks(ev *evaluation, skipWaiting bool) {
	t := ev.terms

	if !skipWaiting && ev.policyAge < t.initialDays {
		remaining := t.initialDays - ev.policyAge
		ev.reject(RejectInitialWaiting,
			"Claim falls within the %d-day initial waiting period; %d days remaining", t.initialDays, remaining)
		ev.result.WaitingPeriodsRemaining["initial"] = pluralDays(remaining)
	}

	if !skipWaiting && ev.preExist && ev.policyAge < t.preExistingDays {
		remaining := t.preExistingDays - ev.policyAge
		ev.reject(RejectPreExistingWaiting,
			"Pre-existing conditions have a waiting period of %s; about %s remaining",
			describeDays(t.preExistingDays), ceilYears(remaining))
		ev.result.WaitingPeriodsRemaining["pre_existing"] = ceilYears(remaining)
	}

	if ev.congenital {
		ev.reject(RejectCongenital, "Congenital conditions are permanently excluded")
	}

	if ev.condition == "" {
		return
	}

	if ex, ok := e.base.Exclusion(ev.condition); ok {
		ev.reject(RejectPermanentExclusion, "%s", ex.Reason)
	}

	rule, ok := e.base.Lookup(ev.condition)
	if !ok {
		return
	}
	ev.result.MatchedRule = rule.Key
	ev.result.RiskLevel = rule.Risk

	if skipWaiting || ev.emergency {
		return
	}
	waiting := rule.WaitingDays
	if rule.Kind == diseases.KindSpecific && t.hasSpecificDays {
		waiting = t.specificDays
	}
	if waiting > ev.policyAge {
		remaining := waiting - ev.policyAge
		ev.reject(RejectDiseaseWaiting,
			"%s has a waiting period of %s; %s remaining", capitalize(rule.Key), describeDays(waiting), remainingText(remaining))
		ev.result.WaitingPeriodsRemaining[rule.Key] = remainingText(remaining)
	}
}

// evaluateAccident applies the accident sub-flow. A road-traffic accident
// with documentation skips every waiting check.
func (e *Engine) evaluateAccident(ev *evaluation) {
	acc := ev.facts.Accident
	if acc == nil {
		acc = &claim.Accident{}
	}

	switch acc.Type {
	case claim.AccidentRoadTraffic:
		documented := isTrue(acc.Documentation)
		e.commonChecks(ev, documented)
		if documented {
			ev.result.RiskLevel = diseases.RiskLow
			return
		}
		ev.reject(RejectMissingPoliceDocs, "Road traffic accident claims need an FIR or police report")
		ev.result.RiskLevel = diseases.RiskHigh

	case claim.AccidentDomestic:
		e.commonChecks(ev, false)
		e.domesticChecks(ev, acc)
		ev.result.RiskLevel = diseases.RiskMedium

	default:
		e.commonChecks(ev, false)
		ev.result.RiskLevel = diseases.RiskMedium
	}
}

func (e *Engine) domesticChecks(ev *evaluation, acc *claim.Accident) {
	start := ev.facts.PolicyStartDate
	incident := ev.ref
	if acc.IncidentDate != nil {
		incident = *acc.IncidentDate
	}

	if start != nil {
		gap := start.DaysUntil(incident)
		switch {
		case gap < 0:
			ev.reject(RejectIncidentBeforePolicy, "The accident happened before the policy started")
		case gap < e.cfg.AccidentWaitingDays:
			remaining := e.cfg.AccidentWaitingDays - gap
			ev.reject(RejectAccidentWaiting,
				"Domestic accidents are covered %d days after policy start; the accident happened on day %d", e.cfg.AccidentWaitingDays, gap)
			ev.result.WaitingPeriodsRemaining["accident"] = pluralDays(remaining)
		}
	}

	// Unknown counts as missing, as with road-traffic documentation.
	if !isTrue(acc.MedicalConsultation) {
		ev.reject(RejectMissingConsultation, "A medical consultation after the accident is required%s", unconfirmed(acc.MedicalConsultation))
	}
	if !isTrue(acc.MedicalRecords) {
		ev.reject(RejectMissingMedicalRecords, "Medical records of the accident treatment are required%s", unconfirmed(acc.MedicalRecords))
	}
}

func unconfirmed(b *bool) string {
	if b == nil {
		return "; not confirmed yet"
	}
	return ""
}

// evaluateIllness applies the illness sub-flow. The illness sub-record
// names the condition and its flags add to the top-level ones.
func (e *Engine) evaluateIllness(ev *evaluation) {
	if ill := ev.facts.Illness; ill != nil {
		if ill.Type != "" {
			ev.condition = ill.Type
		}
		ev.preExist = ev.preExist || isTrue(ill.PreExisting)
		ev.congenital = ev.congenital || isTrue(ill.Congenital)
	}
	e.commonChecks(ev, false)
}

// checkSumInsured applies to every flow.
func (e *Engine) checkSumInsured(ev *evaluation) {
	si := e.sumInsured(ev)
	if amount := claimAmount(ev.facts); amount > si {
		ev.reject(RejectExceedsSumInsured,
			"Claim amount %s exceeds the sum insured of %s", FormatINRFloat(amount), FormatINRFloat(si))
	}
}

func (e *Engine) sumInsured(ev *evaluation) float64 {
	if ev.facts.SumInsured != nil && *ev.facts.SumInsured > 0 {
		return *ev.facts.SumInsured
	}
	if ev.terms.hasSumInsured {
		return ev.terms.sumInsured
	}
	return e.cfg.DefaultSumInsured
}

func claimAmount(f claim.Facts) float64 {
	if f.ClaimAmount == nil {
		return 0
	}
	return *f.ClaimAmount
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
