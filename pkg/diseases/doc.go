// Package diseases holds the disease rule base: covered conditions with
// their waiting periods and risk tiers, permanent exclusions, and the fuzzy
// matcher that maps free-text conditions onto rule keys.
//
// Matching is deliberately fuzzy. A condition such as "piles claim" must find
// the "hemorrhoids" rule, so Matches tries substring containment, then
// bidirectional synonym groups, then overlap of significant tokens. Generic
// filler words ("surgery", "treatment", "pain", ...) never count as overlap.
//
// Categorize is independent of the rule tables and is used to route plan
// analysis and clarifications.
package diseases
