package policydoc

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// NotSpecified is the display value for fields missing from a document.
const NotSpecified = "Not specified"

// WaitingKind identifies one row of a plan's waiting-period table.
type WaitingKind string

const (
	// WaitingInitial is the period after inception during which only
	// accidents are payable.
	WaitingInitial WaitingKind = "initial"

	// WaitingSpecificDisease applies to the listed specific diseases.
	WaitingSpecificDisease WaitingKind = "specific_disease"

	// WaitingPreExisting applies to conditions that predate the policy.
	WaitingPreExisting WaitingKind = "pre_existing"
)

// Section aliases, normalized.
var (
	companyKeys     = []string{"company", "insurer", "company name", "insurance company"}
	planNameKeys    = []string{"plan name", "plan", "name", "product name"}
	sumInsuredKeys  = []string{"sum insured", "sum insured range", "sum assured", "cover amount"}
	entryAgeKeys    = []string{"entry age", "entry age bounds", "age limit", "eligibility age"}
	coverageKeys    = []string{"basic coverages", "basic coverage", "coverages", "coverage", "benefits"}
	subLimitKeys    = []string{"sub limits", "sublimits", "limits", "sub limit"}
	waitingKeys     = []string{"waiting periods", "waiting period", "waiting"}
	maternityKeys   = []string{"maternity", "maternity benefits", "maternity rider", "maternity cover"}
	featureKeys     = []string{"special features", "features", "key features", "additional features"}
	copayKeys       = []string{"co pay", "copay", "co payment", "copayment"}
	planIDKeys      = []string{"plan id", "id"}
	waitingKindKeys = map[WaitingKind][]string{
		WaitingInitial:         {"initial", "initial waiting", "initial waiting period", "first 30 days"},
		WaitingSpecificDisease: {"specific disease", "specific diseases", "specified disease", "disease specific", "specific"},
		WaitingPreExisting:     {"pre existing", "pre existing disease", "pre existing diseases", "ped"},
	}
)

var ageQualifiers = []string{" age ", "aged", "years of age", "senior", "above", "older", "+"}

// ErrEmptyDocument is returned when a plan file decodes to nothing usable.
var ErrEmptyDocument = errors.New("policy document is empty")

// Document is a read-only view over one decoded plan file.
type Document struct {
	id   string
	root map[string]any
}

// Maternity summarises the maternity rider of a plan.
type Maternity struct {
	// Present is true when the document has a maternity section at all.
	Present bool

	// Covered is false when the section explicitly denies the benefit.
	Covered bool

	// WaitingDays maps delivery number (1, 2, ...) to the waiting period in
	// days. Key 0 holds a waiting period that applies to every delivery.
	WaitingDays map[int]int

	// Amounts holds the payable limits (normal, caesarean, newborn ...).
	Amounts map[string]string

	// Details holds every other field of the section as display text.
	Details map[string]string
}

// CoPay describes a co-payment rule found in the document.
type CoPay struct {
	// Percent is the co-pay percentage.
	Percent float64

	// AgeQualified is true when the rule only applies to older patients.
	AgeQualified bool

	// MinAge is the age above which an age-qualified rule applies. It is 0
	// when the text names no threshold; callers then use their senior age.
	MinAge int

	// Text is the original rule text.
	Text string
}

// AppliesTo reports whether the rule applies to a patient of the given age.
// seniorAge is used when the rule is age-qualified without a threshold.
func (c CoPay) AppliesTo(age, seniorAge int) bool {
	if !c.AgeQualified {
		return true
	}
	threshold := c.MinAge
	if threshold == 0 {
		threshold = seniorAge
	}
	return age > threshold
}

// Parse decodes a JSON plan document.
func Parse(id string, data []byte) (*Document, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to decode policy document %q: %w", id, err)
	}
	return New(id, root)
}

// New wraps an already decoded tree. The map is not copied; callers must not
// modify it afterwards.
func New(id string, root map[string]any) (*Document, error) {
	if len(root) == 0 {
		return nil, ErrEmptyDocument
	}
	d := &Document{id: id, root: root}
	if d.id == "" {
		if v, ok := d.lookupString(planIDKeys); ok {
			d.id = v
		}
	}
	return d, nil
}

// ID returns the plan identifier.
func (d *Document) ID() string {
	return d.id
}

// Raw returns the decoded tree. It must be treated as read-only.
func (d *Document) Raw() map[string]any {
	return d.root
}

// Company returns the insurer name, or "" when absent.
func (d *Document) Company() string {
	v, _ := d.lookupString(companyKeys)
	return v
}

// PlanName returns the plan's marketing name, or "" when absent.
func (d *Document) PlanName() string {
	v, _ := d.lookupString(planNameKeys)
	return v
}

// SumInsuredText returns the sum-insured field as written.
func (d *Document) SumInsuredText() string {
	v, _ := d.lookupString(sumInsuredKeys)
	return v
}

// SumInsured returns the largest sum insured offered by the plan.
func (d *Document) SumInsured() (float64, bool) {
	v, ok := d.lookup(sumInsuredKeys)
	if !ok {
		return 0, false
	}
	if f, ok := v.(float64); ok {
		return f, true
	}
	return MaxAmount(stringify(v))
}

// EntryAge returns the minimum and maximum entry age.
func (d *Document) EntryAge() (min, max int, ok bool) {
	v, found := d.lookup(entryAgeKeys)
	if !found {
		return 0, 0, false
	}
	if m, isMap := v.(map[string]any); isMap {
		lo, okLo := numberIn(m, "min", "minimum", "from")
		hi, okHi := numberIn(m, "max", "maximum", "to")
		return int(lo), int(hi), okLo || okHi
	}
	nums := amountPattern.FindAllStringSubmatch(strings.ToLower(stringify(v)), -1)
	if len(nums) == 0 {
		return 0, 0, false
	}
	lo, _ := strconv.Atoi(nums[0][1])
	hi := lo
	if len(nums) > 1 {
		hi, _ = strconv.Atoi(nums[len(nums)-1][1])
	}
	return lo, hi, true
}

// BasicCoverages returns the coverage table as display strings.
func (d *Document) BasicCoverages() map[string]string {
	return d.flatSection(coverageKeys)
}

// SubLimits returns the sub-limit table as display strings.
func (d *Document) SubLimits() map[string]string {
	return d.flatSection(subLimitKeys)
}

// SubLimit finds the first sub-limit whose key contains any of the given
// names. Keys are searched in sorted order.
func (d *Document) SubLimit(names ...string) (key, value string, ok bool) {
	limits := d.SubLimits()
	keys := sortedKeys(limits)
	for _, name := range names {
		n := normalize(name)
		for _, k := range keys {
			if strings.Contains(normalize(k), n) {
				return k, limits[k], true
			}
		}
	}
	return "", "", false
}

// WaitingPeriodText returns the raw waiting-period entry for kind.
func (d *Document) WaitingPeriodText(kind WaitingKind) (string, bool) {
	section, ok := d.lookup(waitingKeys)
	if !ok {
		return "", false
	}
	m, isMap := section.(map[string]any)
	if !isMap {
		return "", false
	}
	v, found := findIn(m, waitingKindKeys[kind])
	if !found {
		return "", false
	}
	return stringify(v), true
}

// WaitingPeriod returns the waiting period for kind in days.
func (d *Document) WaitingPeriod(kind WaitingKind) (int, bool) {
	section, ok := d.lookup(waitingKeys)
	if !ok {
		return 0, false
	}
	m, isMap := section.(map[string]any)
	if !isMap {
		return 0, false
	}
	v, found := findIn(m, waitingKindKeys[kind])
	if !found {
		return 0, false
	}
	if f, isNum := v.(float64); isNum {
		return int(f), true
	}
	return ParseDuration(stringify(v))
}

// WaitingPeriods returns every entry of the waiting-period table.
func (d *Document) WaitingPeriods() map[string]string {
	return d.flatSection(waitingKeys)
}

// Maternity returns the maternity rider.
func (d *Document) Maternity() Maternity {
	out := Maternity{
		WaitingDays: make(map[int]int),
		Amounts:     make(map[string]string),
		Details:     make(map[string]string),
	}
	v, ok := d.lookup(maternityKeys)
	if !ok {
		return out
	}
	out.Present = true
	out.Covered = true

	m, isMap := v.(map[string]any)
	if !isMap {
		text := stringify(v)
		out.Covered = !IsNegative(text)
		out.Details["maternity"] = text
		if days, ok := ParseDuration(text); ok && strings.Contains(strings.ToLower(text), "wait") {
			out.WaitingDays[0] = days
		}
		return out
	}

	for _, k := range sortedKeys(m) {
		nk := normalize(k)
		text := stringify(m[k])
		switch {
		case nk == "covered" || nk == "available" || nk == "coverage":
			out.Covered = !IsNegative(text)
		case strings.Contains(nk, "wait"):
			collectMaternityWaiting(out.WaitingDays, nk, m[k])
		case strings.Contains(nk, "amount") || strings.Contains(nk, "limit") ||
			strings.Contains(nk, "normal") || strings.Contains(nk, "caesarean") ||
			strings.Contains(nk, "cesarean") || strings.Contains(nk, "c section"):
			out.Amounts[k] = text
		default:
			out.Details[k] = text
		}
	}
	return out
}

// collectMaternityWaiting reads either a single waiting period or a nested
// map keyed by delivery ("first delivery", "2nd", ...).
func collectMaternityWaiting(dst map[int]int, key string, v any) {
	if nested, ok := v.(map[string]any); ok {
		for k, inner := range nested {
			if days, ok := durationOf(inner); ok {
				dst[deliveryNumber(normalize(k))] = days
			}
		}
		return
	}
	if days, ok := durationOf(v); ok {
		dst[deliveryNumber(key)] = days
	}
}

func deliveryNumber(key string) int {
	switch {
	case strings.Contains(key, "first") || strings.Contains(key, "1st") || strings.HasSuffix(key, " 1"):
		return 1
	case strings.Contains(key, "second") || strings.Contains(key, "2nd") || strings.HasSuffix(key, " 2"):
		return 2
	case strings.Contains(key, "third") || strings.Contains(key, "3rd") || strings.HasSuffix(key, " 3"):
		return 3
	}
	return 0
}

func durationOf(v any) (int, bool) {
	if f, ok := v.(float64); ok {
		return int(f), true
	}
	return ParseDuration(stringify(v))
}

// SpecialFeatures returns the free-form feature list. Map-shaped sections
// are rendered as "name: description".
func (d *Document) SpecialFeatures() []string {
	v, ok := d.lookup(featureKeys)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringify(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		out := make([]string, 0, len(t))
		for _, k := range sortedKeys(t) {
			out = append(out, k+": "+stringify(t[k]))
		}
		return out
	default:
		if s := stringify(v); s != "" {
			return []string{s}
		}
	}
	return nil
}

// CoPay returns the plan's co-payment rule. The rule is looked up among the
// sub-limits first and then as a top-level field.
func (d *Document) CoPay() (CoPay, bool) {
	text := ""
	if _, v, ok := d.SubLimit("co pay", "copay", "co payment"); ok {
		text = v
	} else if v, ok := d.lookupString(copayKeys); ok {
		text = v
	}
	if text == "" {
		return CoPay{}, false
	}
	pct, ok := ParsePercent(text)
	if !ok {
		return CoPay{}, false
	}
	rule := CoPay{Percent: pct, Text: text}
	lower := strings.ToLower(text)
	if containsAny(lower, ageQualifiers) {
		rule.AgeQualified = true
		for _, m := range amountPattern.FindAllStringSubmatch(lower, -1) {
			n, err := strconv.Atoi(m[1])
			if err == nil && n >= 40 && n <= 100 && float64(n) != pct {
				rule.MinAge = n
				break
			}
		}
	}
	return rule, true
}

// HasBenefit reports whether any coverage, sub-limit or feature mentions one
// of the keywords with a value that does not deny the benefit.
func (d *Document) HasBenefit(keywords ...string) bool {
	sections := []map[string]string{d.BasicCoverages(), d.SubLimits()}
	for _, section := range sections {
		for k, v := range section {
			nk := strings.ToLower(k)
			for _, kw := range keywords {
				if strings.Contains(nk, kw) && !IsNegative(v) {
					return true
				}
			}
		}
	}
	for _, f := range d.SpecialFeatures() {
		lf := strings.ToLower(f)
		for _, kw := range keywords {
			if strings.Contains(lf, kw) && !IsNegative(lf) {
				return true
			}
		}
	}
	return false
}

// flatSection renders a section as key → display string.
func (d *Document) flatSection(aliases []string) map[string]string {
	out := make(map[string]string)
	v, ok := d.lookup(aliases)
	if !ok {
		return out
	}
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			out[k] = stringify(inner)
		}
	case []any:
		for i, inner := range t {
			out[strconv.Itoa(i+1)] = stringify(inner)
		}
	default:
		out[aliases[0]] = stringify(v)
	}
	return out
}

func (d *Document) lookup(aliases []string) (any, bool) {
	return findIn(d.root, aliases)
}

func (d *Document) lookupString(aliases []string) (string, bool) {
	v, ok := d.lookup(aliases)
	if !ok {
		return "", false
	}
	switch v.(type) {
	case map[string]any, []any:
		return "", false
	}
	s := stringify(v)
	return s, s != ""
}

// findIn searches m for any alias, top level first, then nested maps
// breadth-first.
func findIn(m map[string]any, aliases []string) (any, bool) {
	queue := []map[string]any{m}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		keys := sortedKeys(cur)
		for _, alias := range aliases {
			for _, k := range keys {
				if normalize(k) == alias {
					return cur[k], true
				}
			}
		}
		for _, k := range keys {
			if nested, ok := cur[k].(map[string]any); ok {
				queue = append(queue, nested)
			}
		}
	}
	return nil, false
}

func numberIn(m map[string]any, names ...string) (float64, bool) {
	v, ok := findIn(m, names)
	if !ok {
		return 0, false
	}
	if f, isNum := v.(float64); isNum {
		return f, true
	}
	if i, isInt := v.(int); isInt {
		return float64(i), true
	}
	return ParseAmount(stringify(v))
}

// stringify renders a decoded JSON/YAML value for display.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case map[string]any:
		parts := make([]string, 0, len(t))
		for _, k := range sortedKeys(t) {
			parts = append(parts, k+": "+stringify(t[k]))
		}
		return strings.Join(parts, "; ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
