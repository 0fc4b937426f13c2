package extract

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

// ErrUnrecognized is returned when an answer cannot be read as the
// requested field.
var ErrUnrecognized = errors.New("answer not recognized")

var (
	agoPattern      = regexp.MustCompile(`\b(\d+(?:\.\d+)?|a|an|one|two|three|four|five|six|seven|eight|nine|ten)\s*(years?|yrs?|months?|weeks?|days?)\s*(?:ago|back|before)`)
	durationFor     = regexp.MustCompile(`\b(?:for|since|about|around|nearly|almost)\s+(\d+(?:\.\d+)?|a|an|one|two|three|four|five|six|seven|eight|nine|ten)\s*(years?|yrs?|months?|weeks?|days?)`)
	integerPattern  = regexp.MustCompile(`\b(\d{1,3})\b`)
	isoDatePattern  = regexp.MustCompile(`\b\d{4}[-/]\d{1,2}[-/]\d{1,2}\b`)
	dmyDatePattern  = regexp.MustCompile(`\b\d{1,2}[-/.]\d{1,2}[-/.]\d{4}\b`)
	longDatePattern = regexp.MustCompile(`(?i)\b(?:\d{1,2}(?:st|nd|rd|th)?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*,?\s+\d{4}|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})\b`)
	ordinalSuffix   = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)`)
)

var numberWords = map[string]float64{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

var (
	yesWords    = []string{"yes", "yeah", "yep", "yup", "correct", "true", "sure", "right", "of course", "definitely", "i do", "it is", "it was", "have", "available"}
	noWords     = []string{"no", "nope", "nah", "not", "false", "never", "don't", "dont", "doesn't", "didn't", "none", "without"}
	unsureWords = []string{"not sure", "unsure", "don't know", "dont know", "no idea", "maybe", "not certain", "can't say", "cannot say"}
)

// ParseYesNo classifies a yes/no answer. The second result is false when
// the answer is neither, including "not sure".
func ParseYesNo(text string) (bool, bool) {
	lower := " " + strings.ToLower(strings.TrimSpace(text)) + " "
	lower = strings.NewReplacer(",", " ", ".", " ", "!", " ", "?", " ").Replace(lower)
	for _, w := range unsureWords {
		if strings.Contains(lower, " "+w+" ") {
			return false, false
		}
	}
	for _, w := range noWords {
		if strings.Contains(lower, " "+w+" ") {
			return false, true
		}
	}
	for _, w := range yesWords {
		if strings.Contains(lower, " "+w+" ") {
			return true, true
		}
	}
	return false, false
}

// ParseAge reads a patient age from an answer.
func ParseAge(text string) (int, error) {
	if age, ok := ageFrom(strings.ToLower(text)); ok {
		return age, nil
	}
	m := integerPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, ErrUnrecognized
	}
	age, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, ErrUnrecognized
	}
	return age, nil
}

// ParseName reads a patient name from an answer. Digits disqualify the
// answer.
func ParseName(text string) (string, error) {
	if name, ok := nameFrom(text); ok {
		return name, nil
	}
	s := strings.Trim(strings.TrimSpace(text), ".!,")
	if s == "" || strings.ContainsAny(s, "0123456789@") {
		return "", ErrUnrecognized
	}
	words := strings.Fields(s)
	if len(words) > 4 {
		return "", ErrUnrecognized
	}
	for i, w := range words {
		words[i] = titleCase(w)
	}
	return strings.Join(words, " "), nil
}

// ParseAmountAnswer reads a claim amount from an answer.
func ParseAmountAnswer(text string) (float64, error) {
	amount, ok := policydoc.ParseAmount(text)
	if !ok || amount <= 0 {
		return 0, ErrUnrecognized
	}
	return amount, nil
}

// ParseDateAnswer reads an absolute date or a relative one ("2 years ago",
// "for 6 months") measured back from now.
func ParseDateAnswer(text string, now time.Time) (claim.Date, error) {
	if dates := findDates(text); len(dates) > 0 {
		return dates[0].date, nil
	}
	if d, ok := relativeDate(strings.ToLower(text), now); ok {
		return d, nil
	}
	return claim.Date{}, ErrUnrecognized
}

// ParseCondition reads a medical condition from an answer.
func ParseCondition(text string) (string, error) {
	if c, ok := conditionFrom(text); ok {
		return c, nil
	}
	s := strings.ToLower(strings.Join(strings.Fields(strings.Trim(strings.TrimSpace(text), ".!,")), " "))
	if s == "" || len(s) > 120 || locationOnly.MatchString(s) {
		return "", ErrUnrecognized
	}
	return s, nil
}

// ParseAccidentType reads an accident sub-type from an answer such as
// "at home" or "a bike accident".
func ParseAccidentType(text string) (claim.AccidentType, error) {
	lower := strings.ToLower(text)
	switch {
	case ContainsAnyWord(lower, roadWords...):
		return claim.AccidentRoadTraffic, nil
	case ContainsAnyWord(lower, workplaceWords...):
		return claim.AccidentWorkplace, nil
	case ContainsAnyWord(lower, sportsWords...):
		return claim.AccidentSports, nil
	case ContainsAnyWord(lower, domesticWords...):
		return claim.AccidentDomestic, nil
	case ContainsAnyWord(lower, "other", "something else", "elsewhere", "outside"):
		return claim.AccidentOther, nil
	}
	return "", ErrUnrecognized
}

// ParseDocumentation reads whether police documentation exists. Mentions
// of an FIR count as yes unless negated.
func ParseDocumentation(text string) (bool, error) {
	lower := strings.ToLower(text)
	switch {
	case ContainsAnyWord(lower, docsNoWords...):
		return false, nil
	case ContainsAnyWord(lower, docsYesWords...):
		return true, nil
	}
	if v, ok := ParseYesNo(text); ok {
		return v, nil
	}
	return false, ErrUnrecognized
}

// ParseTreatment reads the treatment type from an answer.
func ParseTreatment(text string) (string, error) {
	lower := strings.ToLower(text)
	if t, ok := treatmentFrom(lower); ok {
		return t, nil
	}
	switch {
	case ContainsAnyWord(lower, "admission", "hospital stay", "overnight", "ward", "icu"):
		return claim.TreatmentInpatient, nil
	case ContainsAnyWord(lower, "same day", "discharged the same day"):
		return claim.TreatmentDaycare, nil
	case ContainsAnyWord(lower, "consultation", "clinic", "checkup", "check-up"):
		return claim.TreatmentOutpatient, nil
	}
	return "", ErrUnrecognized
}

// relativeDate resolves "N units ago" and "for N units" phrases.
func relativeDate(lower string, now time.Time) (claim.Date, bool) {
	m := agoPattern.FindStringSubmatch(lower)
	if m == nil {
		m = durationFor.FindStringSubmatch(lower)
	}
	if m == nil {
		return claim.Date{}, false
	}
	n, ok := numberWords[m[1]]
	if !ok {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return claim.Date{}, false
		}
		n = v
	}
	today := claim.DateOf(now)
	switch unit := m[2]; {
	case strings.HasPrefix(unit, "y"):
		whole := int(n)
		d := claim.Date{Time: today.AddDate(-whole, 0, 0)}
		if frac := n - float64(whole); frac > 0 {
			d = d.AddDays(-int(frac * 365))
		}
		return d, true
	case strings.HasPrefix(unit, "mo"):
		return claim.Date{Time: today.AddDate(0, -int(n), 0)}, true
	case strings.HasPrefix(unit, "w"):
		return today.AddDays(-int(n * 7)), true
	default:
		return today.AddDays(-int(n)), true
	}
}

type foundDate struct {
	date  claim.Date
	start int
}

// findDates returns every absolute date in text in order of appearance.
func findDates(text string) []foundDate {
	var out []foundDate
	seen := make(map[int]bool)
	for _, re := range []*regexp.Regexp{isoDatePattern, dmyDatePattern, longDatePattern} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if seen[loc[0]] {
				continue
			}
			raw := ordinalSuffix.ReplaceAllString(text[loc[0]:loc[1]], "$1")
			raw = strings.ReplaceAll(raw, "/", "-")
			raw = strings.ReplaceAll(raw, ".", "-")
			d, err := parseLooseDate(raw)
			if err != nil {
				continue
			}
			seen[loc[0]] = true
			out = append(out, foundDate{date: d, start: loc[0]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

var looseLayouts = []string{
	"2006-1-2",
	"2-1-2006",
	"2 January 2006",
	"2 Jan 2006",
	"2 January, 2006",
	"2 Jan, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

func parseLooseDate(raw string) (claim.Date, error) {
	raw = titleMonth(strings.Join(strings.Fields(raw), " "))
	raw = strings.Replace(raw, "Sept ", "Sep ", 1)
	for _, layout := range looseLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return claim.DateOf(t), nil
		}
	}
	return claim.ParseDate(raw)
}

// titleMonth capitalizes month names so time.Parse accepts them.
func titleMonth(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 && w[0] >= 'a' && w[0] <= 'z' {
			words[i] = titleCase(w)
		}
	}
	return strings.Join(words, " ")
}

func titleCase(w string) string {
	if w == "" {
		return w
	}
	lower := strings.ToLower(w)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
