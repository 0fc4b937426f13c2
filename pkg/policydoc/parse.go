package policydoc

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Multipliers for Indian currency units.
const (
	thousand = 1_000
	lakh     = 100_000
	crore    = 10_000_000
)

var (
	amountPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(crores?|cr|lakhs?|lacs?|l|thousand|k)?\b`)
	durationPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(years?|yrs?|months?|mons?|weeks?|days?)\b`)
	percentPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:%|percent|per cent)`)
	plainNumber     = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

var waiverWords = []string{
	"waived", "no waiting", "not applicable", "nil", "none", "immediate", "day 1", "day one",
}

var uncappedWords = []string{
	"actual", "no limit", "no cap", "no sub-limit", "no sublimit", "no sub limit",
	"uncapped", "unlimited", "up to sum insured", "upto sum insured", "full sum insured",
}

var negativeWords = []string{
	"not covered", "excluded", "not available", "not applicable", "n/a", "no cover",
}

// ParseAmount parses the first monetary amount in s. It understands rupee
// prefixes, Indian digit grouping and the lakh/crore/thousand units.
func ParseAmount(s string) (float64, bool) {
	amounts := ParseAmounts(s)
	if len(amounts) == 0 {
		return 0, false
	}
	return amounts[0], true
}

// ParseAmounts returns every amount found in s, in order of appearance.
func ParseAmounts(s string) []float64 {
	clean := strings.ToLower(s)
	clean = strings.NewReplacer("₹", " ", "rs.", " ", "inr", " ", ",", "").Replace(clean)
	clean = strings.ReplaceAll(clean, "rs ", " ")

	var out []float64
	for _, m := range amountPattern.FindAllStringSubmatch(clean, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(m[2], "cr"):
			v *= crore
		case strings.HasPrefix(m[2], "la") || m[2] == "l":
			v *= lakh
		case m[2] == "k" || m[2] == "thousand":
			v *= thousand
		}
		out = append(out, v)
	}
	return out
}

// MaxAmount returns the largest amount in s. A range such as
// "3 Lakh - 1 Crore" yields the upper bound.
func MaxAmount(s string) (float64, bool) {
	amounts := ParseAmounts(s)
	if len(amounts) == 0 {
		return 0, false
	}
	max := amounts[0]
	for _, a := range amounts[1:] {
		if a > max {
			max = a
		}
	}
	return max, true
}

// ParseDuration converts a waiting-period description into days.
// Months are counted as 365/12 days so that "36 months" equals "3 years".
// Waiver phrases ("waived", "nil", "no waiting period") yield zero.
func ParseDuration(s string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" {
		return 0, false
	}
	if plainNumber.MatchString(lower) {
		v, _ := strconv.ParseFloat(lower, 64)
		return int(math.Round(v)), true
	}

	m := durationPattern.FindStringSubmatch(lower)
	if m == nil {
		if containsAny(lower, waiverWords) {
			return 0, true
		}
		return 0, false
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	unit := m[2]
	switch {
	case strings.HasPrefix(unit, "y"):
		return int(math.Round(v * 365)), true
	case strings.HasPrefix(unit, "mon"):
		return int(math.Round(v * 365 / 12)), true
	case strings.HasPrefix(unit, "w"):
		return int(math.Round(v * 7)), true
	default:
		return int(math.Round(v)), true
	}
}

// ParsePercent returns the first percentage in s.
func ParsePercent(s string) (float64, bool) {
	m := percentPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsUncapped reports whether a sub-limit value means "paid at actual cost".
func IsUncapped(s string) bool {
	return containsAny(strings.ToLower(s), uncappedWords)
}

// IsWaived reports whether a value describes a waived waiting period.
func IsWaived(s string) bool {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "waiting") && (strings.Contains(lower, "waived") || strings.Contains(lower, "no waiting")) {
		return true
	}
	days, ok := ParseDuration(lower)
	return ok && days == 0
}

// IsNegative reports whether a coverage value denies the benefit.
func IsNegative(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch lower {
	case "no", "false", "nil", "none", "0", "":
		return true
	}
	return containsAny(lower, negativeWords)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
