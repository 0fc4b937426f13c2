package eligibility

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR renders an amount with the rupee sign and Indian digit
// grouping, e.g. ₹1,25,000. Paise are kept only when non-zero.
func FormatINR(d decimal.Decimal) string {
	neg := d.IsNegative()
	d = d.Abs()
	whole := d.Truncate(0)
	frac := d.Sub(whole)

	digits := whole.String()
	var grouped string
	if len(digits) <= 3 {
		grouped = digits
	} else {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		grouped = strings.Join(parts, ",") + "," + tail
	}

	out := "₹" + grouped
	if !frac.IsZero() {
		out += strings.TrimPrefix(frac.StringFixed(2), "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatINRFloat is FormatINR for float amounts.
func FormatINRFloat(v float64) string {
	return FormatINR(decimal.NewFromFloat(v))
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// ceilYears renders whole years, rounded up.
func ceilYears(days int) string {
	years := (days + 364) / 365
	if years <= 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", years)
}

// remainingText uses days below a year and whole years (ceiling) above.
func remainingText(days int) string {
	if days < 365 {
		return pluralDays(days)
	}
	return ceilYears(days)
}

// describeDays renders a period in its most natural unit.
func describeDays(days int) string {
	switch {
	case days > 0 && days%365 == 0:
		if days == 365 {
			return "1 year"
		}
		return fmt.Sprintf("%d years", days/365)
	case days >= 60 && isWholeMonths(days):
		return fmt.Sprintf("%d months", monthsOf(days))
	default:
		return pluralDays(days)
	}
}

// Months are 365/12 days; a period is whole months when it rounds exactly.
func isWholeMonths(days int) bool {
	m := monthsOf(days)
	return m > 0 && (m*365+6)/12 == days
}

func monthsOf(days int) int {
	return (days*12 + 182) / 365
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
