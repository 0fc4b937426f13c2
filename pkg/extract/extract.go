package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

var (
	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,3})\s*(?:-|\s)?\s*(?:years?|yrs?)[\s-]*old\b`),
		regexp.MustCompile(`\b(\d{1,3})\s*(?:yo|y/o)\b`),
		regexp.MustCompile(`\baged?\s*(?:is|of|:|=)?\s*(\d{1,3})\b`),
		regexp.MustCompile(`\b(\d{1,3})\s*(?:years?|yrs?)\s+of\s+age\b`),
	}

	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:₹|\brs\.?|\binr)\s*([\d,]+(?:\.\d+)?\s*(?:crores?|cr|lakhs?|lacs?|l|k|thousand)?)\b`),
		regexp.MustCompile(`\b([\d,]+(?:\.\d+)?\s*(?:crores?|lakhs?|lacs?|thousand|k))\b`),
		regexp.MustCompile(`\b([\d,]+(?:\.\d+)?)\s*(?:rupees|rs|inr)\b`),
		regexp.MustCompile(`(?:claim|bill|amount|cost|expense|expenses|estimate)\s*(?:amount)?\s*(?:is|of|was|:|=|around|about)?\s*([\d,]{4,}(?:\.\d+)?)\b`),
	}

	sumInsuredPattern = regexp.MustCompile(`(?:sum insured|sum assured|cover(?:age)? (?:amount|of))\s*(?:is|of|:|=)?\s*((?:₹|rs\.?|inr)?\s*[\d,]+(?:\.\d+)?\s*(?:crores?|cr|lakhs?|lacs?|l|k)?)\b`)

	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:my name is|name is|name:|patient is|patient name is|patient:|this is|i am|i'm)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){0,2})`),
		regexp.MustCompile(`(?i:for my (?:father|mother|wife|husband|son|daughter|brother|sister)),?\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){0,2})`),
	}

	conditionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:suffering from|diagnosed with|diagnosis is|diagnosis:|treatment for|surgery for|operation for|admitted for|hospitali[sz]ed for|condition is|condition:|claim for|treated for|undergoing|need|needs)\s+(?:a |an |the )?([a-z][a-z\s'-]{2,60}?)(?:\s+(?:and|on|in|at|with|since|from|last|which|because|after|costing|worth|of rs|for rs|amount|claim|bill)\b|[.,;!?]|$)`),
	}
)

// notNames are capitalized words that follow "I am" without being a name.
var notNames = map[string]bool{
	"Having": true, "Suffering": true, "Diagnosed": true, "Not": true, "Looking": true,
	"Claiming": true, "Admitted": true, "Going": true, "Planning": true, "The": true,
	"A": true, "An": true, "Male": true, "Female": true, "Pregnant": true, "Diabetic": true,
	"Insured": true, "Covered": true, "Here": true, "Trying": true, "Asking": true,
}

// conditionKeywords are recognized even without a lead-in phrase. Longer
// phrases come first.
var conditionKeywords = []string{
	"age-related cataract", "age related cataract", "cataract",
	"kidney stones", "kidney stone", "gallbladder stones", "gallstones",
	"heart attack", "heart disease", "angioplasty", "bypass surgery",
	"knee replacement", "hip replacement", "joint replacement",
	"hernia", "piles", "hemorrhoids", "appendicitis", "fracture",
	"dengue", "malaria", "typhoid", "pneumonia", "covid",
	"diabetes", "hypertension", "cancer", "chemotherapy", "tumor",
	"delivery", "pregnancy", "maternity", "caesarean", "c-section",
	"sinusitis", "tonsillitis", "hysterectomy", "varicose veins",
	"stroke", "asthma", "jaundice", "infection",
}

// injuryWords name an unspecified injury. They are tried after every
// specific condition and lead-in pattern, and all read as "injury".
var injuryWords = []string{"injuries", "injury", "injured", "accident"}

// locationOnly matches an answer that only says where something happened.
var locationOnly = regexp.MustCompile(`^(?:it (?:happened|was) )?(?:(?:at|on|in|near|inside|outside) )?(?:the |my |a |our |his |her )?(?:home|house|work|workplace|office|road|street|highway|kitchen|stairs|staircase|bathroom|gym|school|college|factory|site|ground|field|park|market)$`)

var (
	roadWords      = []string{"road", "traffic", "car ", "bike", "vehicle", "collision", "motorcycle", "scooter", "truck", "bus ", "hit by", "two-wheeler", "two wheeler", "rta"}
	domesticWords  = []string{"at home", "home", "house", "kitchen", "stairs", "bathroom", "slipped", "fell", "domestic"}
	workplaceWords = []string{"at work", "workplace", "office", "factory", "construction site", "on duty"}
	sportsWords    = []string{"sport", "playing", "cricket", "football", "gym", "tennis", "badminton", "match"}
	accidentWords  = []string{"accident", "injured", "injury", "fracture", "collision", "crash", "fell", "slipped", "burn"}
	docsYesWords   = []string{"fir", "police report", "police complaint", "mlc", "medico-legal", "police case"}
	docsNoWords    = []string{"no fir", "without fir", "no police", "without police", "didn't file", "did not file", "not filed"}
)

// Extractor derives claim facts from free text with regular expressions and
// keyword lists. It never guesses: a fact is only set when a pattern fires.
type Extractor struct {
	now func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the clock used to resolve relative dates.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns every fact recognized in text. The result is normalized.
func (e *Extractor) Extract(text string) claim.Facts {
	var f claim.Facts
	if strings.TrimSpace(text) == "" {
		return f
	}
	lower := strings.ToLower(text)

	if name, ok := nameFrom(text); ok {
		f.PatientName = &name
	}
	if age, ok := ageFrom(lower); ok {
		f.PatientAge = &age
	}
	if g, ok := genderFrom(lower); ok {
		f.Gender = &g
	}
	if amount, ok := amountFrom(lower); ok {
		f.ClaimAmount = &amount
	}
	if si, ok := sumInsuredFrom(lower); ok {
		f.SumInsured = &si
	}
	if c, ok := conditionFrom(text); ok {
		f.MedicalCondition = &c
	}
	if t, ok := treatmentFrom(lower); ok {
		f.TreatmentType = &t
	}

	e.extractDates(text, lower, &f)
	extractFlags(lower, &f)
	extractAccident(lower, &f)

	f.Normalize()
	return f
}

// extractDates assigns each absolute date by the words just before it.
// Relative policy durations ("policy for 2 years") fill the start date.
func (e *Extractor) extractDates(text, lower string, f *claim.Facts) {
	for _, fd := range findDates(text) {
		from := fd.start - 60
		if from < 0 {
			from = 0
		}
		window := strings.ToLower(text[from:fd.start])
		d := fd.date
		switch {
		case containsLast(window, "policy", "started", "bought", "purchased", "inception", "took", "taken", "since"):
			if f.PolicyStartDate == nil {
				f.PolicyStartDate = &d
			}
		case containsLast(window, "accident", "incident", "injured", "fell", "happened"):
			if f.Accident == nil {
				f.Accident = &claim.Accident{}
			}
			if f.Accident.IncidentDate == nil {
				f.Accident.IncidentDate = &d
			}
		default:
			if f.ClaimDate == nil {
				f.ClaimDate = &d
			}
		}
	}

	if f.PolicyStartDate == nil && strings.Contains(lower, "policy") {
		idx := strings.Index(lower, "policy")
		if d, ok := relativeDate(lower[idx:], e.now()); ok {
			f.PolicyStartDate = &d
		}
	}
}

// containsLast reports whether any word occurs in the clause nearest the
// end of window.
func containsLast(window string, words ...string) bool {
	if i := strings.LastIndexAny(window, ".;"); i >= 0 {
		window = window[i+1:]
	}
	if i := strings.LastIndex(window, " and "); i >= 0 {
		window = window[i+len(" and "):]
	}
	return containsAny(window, words...)
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func ageFrom(lower string) (int, bool) {
	for _, re := range agePatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			age, err := strconv.Atoi(m[1])
			if err == nil && age <= claim.MaxPatientAge {
				return age, true
			}
		}
	}
	return 0, false
}

func amountFrom(lower string) (float64, bool) {
	for _, re := range amountPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(lower, -1) {
			// Skip the sum insured; it is extracted separately.
			prefixStart := m[2] - 24
			if prefixStart < 0 {
				prefixStart = 0
			}
			if containsAny(lower[prefixStart:m[2]], "sum insured", "sum assured", "cover of", "coverage of", "cover amount") {
				continue
			}
			if v, ok := policydoc.ParseAmount(lower[m[2]:m[3]]); ok && v > 0 {
				return v, true
			}
		}
	}
	return 0, false
}

func sumInsuredFrom(lower string) (float64, bool) {
	m := sumInsuredPattern.FindStringSubmatch(lower)
	if m == nil {
		return 0, false
	}
	v, ok := policydoc.ParseAmount(m[1])
	return v, ok && v > 0
}

func nameFrom(text string) (string, bool) {
	for _, re := range namePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		words := strings.Fields(m[1])
		if len(words) == 0 || notNames[words[0]] {
			continue
		}
		// Stop at the first word that is not part of the name.
		kept := words[:0]
		for _, w := range words {
			if notNames[w] {
				break
			}
			kept = append(kept, w)
		}
		return strings.Join(kept, " "), true
	}
	return "", false
}

func genderFrom(lower string) (string, bool) {
	padded := " " + strings.NewReplacer(",", " ", ".", " ").Replace(lower) + " "
	for _, w := range []string{" female ", " woman ", " lady ", " girl ", " mother ", " wife ", " daughter ", " sister ", " she ", " her "} {
		if strings.Contains(padded, w) {
			return "female", true
		}
	}
	for _, w := range []string{" male ", " man ", " boy ", " father ", " husband ", " son ", " brother ", " he ", " his "} {
		if strings.Contains(padded, w) {
			return "male", true
		}
	}
	return "", false
}

func conditionFrom(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range conditionKeywords {
		if i := strings.Index(lower, kw); i >= 0 {
			// Keep a qualifier directly before the keyword ("age-related").
			return expandCondition(lower, i, kw), true
		}
	}
	for _, re := range conditionPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			c := strings.TrimSpace(m[1])
			if c != "" && !isFiller(c) && !locationOnly.MatchString(c) {
				return c, true
			}
		}
	}
	if ContainsAnyWord(lower, injuryWords...) {
		return "injury", true
	}
	return "", false
}

func expandCondition(lower string, i int, kw string) string {
	for _, q := range []string{"age-related ", "age related ", "bilateral ", "traumatic ", "diabetic ", "chronic ", "acute ", "breast ", "lung ", "normal ", "second ", "first "} {
		if i >= len(q) && lower[i-len(q):i] == q {
			return q + kw
		}
	}
	return kw
}

func isFiller(s string) bool {
	switch s {
	case "a claim", "claim", "treatment", "surgery", "help", "insurance", "money", "it", "this":
		return true
	}
	return false
}

func treatmentFrom(lower string) (string, bool) {
	switch {
	case strings.Contains(lower, "day care") || strings.Contains(lower, "daycare") || strings.Contains(lower, "day-care"):
		return claim.TreatmentDaycare, true
	case strings.Contains(lower, "opd") || strings.Contains(lower, "outpatient") || strings.Contains(lower, "out-patient"):
		return claim.TreatmentOutpatient, true
	case strings.Contains(lower, "admitted") || strings.Contains(lower, "hospitalised") ||
		strings.Contains(lower, "hospitalized") || strings.Contains(lower, "inpatient") || strings.Contains(lower, "in-patient"):
		return claim.TreatmentInpatient, true
	case strings.Contains(lower, "surgery") || strings.Contains(lower, "operation"):
		return claim.TreatmentSurgery, true
	}
	return "", false
}

func extractFlags(lower string, f *claim.Facts) {
	switch {
	case ContainsAnyWord(lower, "no pre-existing", "not pre-existing", "no preexisting", "no existing condition", "not a pre-existing"):
		f.PreExistingDisease = claim.Ptr(false)
	case ContainsAnyWord(lower, "pre-existing", "preexisting", "pre existing", "existing condition", "before the policy", "before taking the policy"):
		f.PreExistingDisease = claim.Ptr(true)
	}

	switch {
	case ContainsAnyWord(lower, "not an emergency", "not emergency", "planned", "non-emergency", "elective"):
		f.Emergency = claim.Ptr(false)
	case ContainsAnyWord(lower, "emergency", "urgent", "ambulance", "icu", "rushed"):
		f.Emergency = claim.Ptr(true)
	}

	switch {
	case ContainsAnyWord(lower, "not congenital", "no congenital"):
		f.CongenitalCondition = claim.Ptr(false)
	case ContainsAnyWord(lower, "congenital", "since birth", "birth defect", "from birth"):
		f.CongenitalCondition = claim.Ptr(true)
	}

	switch {
	case ContainsAnyWord(lower, "no consumables", "without consumables"):
		f.ConsumablesRequired = claim.Ptr(false)
	case ContainsAnyWord(lower, "consumables", "gloves", "ppe kit", "disposables"):
		f.ConsumablesRequired = claim.Ptr(true)
	}

	if ContainsAnyWord(lower, "ayurved", "homeopath", "unani", "siddha", "naturopath", "ayush") {
		f.AyushTreatment = claim.Ptr(true)
	}
}

func extractAccident(lower string, f *claim.Facts) {
	if !ContainsAnyWord(lower, accidentWords...) {
		return
	}
	acc := f.Accident
	if acc == nil {
		acc = &claim.Accident{}
	}

	switch {
	case ContainsAnyWord(lower, roadWords...):
		acc.Type = claim.AccidentRoadTraffic
	case ContainsAnyWord(lower, workplaceWords...):
		acc.Type = claim.AccidentWorkplace
	case ContainsAnyWord(lower, sportsWords...):
		acc.Type = claim.AccidentSports
	case ContainsAnyWord(lower, domesticWords...):
		acc.Type = claim.AccidentDomestic
	}

	switch {
	case ContainsAnyWord(lower, docsNoWords...):
		acc.Documentation = claim.Ptr(false)
	case ContainsAnyWord(lower, docsYesWords...):
		acc.Documentation = claim.Ptr(true)
	}

	switch {
	case ContainsAnyWord(lower, "no doctor", "didn't see a doctor", "did not see a doctor", "no consultation"):
		acc.MedicalConsultation = claim.Ptr(false)
	case ContainsAnyWord(lower, "consulted", "saw a doctor", "visited a doctor", "doctor checked", "treated by"):
		acc.MedicalConsultation = claim.Ptr(true)
	}

	switch {
	case ContainsAnyWord(lower, "no records", "no medical records", "no reports", "lost the records"):
		acc.MedicalRecords = claim.Ptr(false)
	case ContainsAnyWord(lower, "medical records", "discharge summary", "x-ray report", "have the reports", "have reports"):
		acc.MedicalRecords = claim.Ptr(true)
	}

	f.Accident = acc
	f.ClaimType = claim.TypeAccident
}

// ContainsAnyWord reports whether lower contains any of the words or phrases
// as whole words. Stems longer than four letters also match with a suffix.
func ContainsAnyWord(lower string, words ...string) bool {
	padded := " " + strings.NewReplacer(",", " ", ".", " ", "!", " ", "?", " ", ";", " ").Replace(lower) + " "
	for _, w := range words {
		w = strings.TrimSpace(w)
		if strings.Contains(padded, " "+w) && wordEnds(padded, w) {
			return true
		}
	}
	return false
}

// wordEnds allows suffixes on stems ("ayurved" matches "ayurvedic") only
// when the stem is longer than four letters.
func wordEnds(padded, w string) bool {
	if len(w) > 4 {
		return true
	}
	return strings.Contains(padded, " "+w+" ")
}
