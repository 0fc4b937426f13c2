package logging

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Redactor masks personal data and credentials in log attributes.
type Redactor struct {
	patterns []redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// PII pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternEmail       = "email"
	PatternAadhaar     = "aadhaar"
	PatternPAN         = "pan"
	PatternPhone       = "phone"
)

// Patterns run in order; Aadhaar must precede phone so a 12-digit number
// is not half-masked as a phone number.
var defaultPatterns = []struct {
	name, regex, replacement string
}{
	{PatternAPIKey, `\bsk-[a-zA-Z0-9_-]{8,}`, "sk-***"},
	{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
	{PatternEmail, `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, "***@***"},
	{PatternAadhaar, `\b\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`, "XXXX-XXXX-XXXX"},
	{PatternPAN, `\b[A-Z]{5}\d{4}[A-Z]\b`, "XXXXX0000X"},
	{PatternPhone, `(?:\+91[\s-]?|\b0)?\b[6-9]\d{9}\b`, "+91-XXXXXXXXXX"},
}

// secretKeys are masked when they appear anywhere in an attribute key.
var secretKeys = []string{
	"password", "passwd", "secret", "token", "api_key", "apikey", "authorization",
}

// personalKeys are masked when they are the whole attribute key.
var personalKeys = map[string]bool{
	"patient_name": true,
	"utterance":    true,
	"email":        true,
	"phone":        true,
}

// NewRedactor creates a Redactor with the built-in patterns.
func NewRedactor() *Redactor {
	r := &Redactor{patterns: make([]redactPattern, 0, len(defaultPatterns))}
	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}
	return r
}

// RedactString masks every pattern match in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactAttr returns a with sensitive values masked. Groups are redacted
// recursively.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, maskValue(v))
	}

	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.RedactString(v.String()))
	case slog.KindGroup:
		group := v.Group()
		out := make([]any, len(group))
		for i, ga := range group {
			out[i] = r.RedactAttr(ga)
		}
		return slog.Group(a.Key, out...)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
		if s, ok := v.Any().(fmt.Stringer); ok {
			return slog.String(a.Key, r.RedactString(s.String()))
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	if personalKeys[lower] {
		return true
	}
	for _, s := range secretKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// maskValue keeps only the length of a string value.
func maskValue(v slog.Value) string {
	if v.Kind() == slog.KindString {
		if n := len(v.String()); n > 0 {
			return fmt.Sprintf("[redacted %d chars]", n)
		}
		return ""
	}
	return "***"
}
