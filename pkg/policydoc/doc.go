// Package policydoc models an insurance plan document whose shape is not
// fixed. Plan files come from many insurers and nest their sections
// differently, so a Document keeps the decoded tree as-is and exposes typed
// accessors with documented defaults instead of a rigid struct.
//
// # Lookup Rules
//
// Section and field names are matched after normalization: lower case, with
// underscores, hyphens and repeated spaces folded into a single space. Each
// accessor accepts a small alias list (for example "sub_limits", "sublimits"
// and "limits") and searches the top level first, then nested objects
// breadth-first.
//
// # Defaults
//
// A missing field never means "excluded". Accessors report absence through a
// boolean so callers can fall back to their generic rule:
//
//	days, ok := doc.WaitingPeriod(policydoc.WaitingInitial)
//	if !ok {
//	    days = cfg.InitialWaitingDays
//	}
//
// # Value Parsing
//
// Amounts ("₹5,00,000", "5 lakh", "1 Cr", "50k"), durations ("30 days",
// "24 months", "2 years", "waived") and percentages ("10%") are parsed by the
// helpers in parse.go. Documents are read-only once parsed.
package policydoc
