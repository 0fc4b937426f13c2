// Insurance Assistant checks health insurance claims against plan documents.
//
// It holds a conversation with the claimant, collects the facts a claim
// needs, evaluates them against the plan's waiting periods, sub-limits and
// co-pay rules, and explains the outcome:
//   - Plan lookup by name or ID, with hot reload from a directory or git
//   - Step-by-step fact gathering and clarification questions
//   - Deterministic eligibility and payout calculation
//   - Follow-up help on co-pay, documents, filing and appeals
//
// Usage:
//
//	# Start an interactive assessment
//	insurance-assistant chat
//
//	# Start with a custom configuration file and a preselected plan
//	insurance-assistant chat --config /path/to/config.yaml --plan star-health-gold
//
//	# Assess a claim described in a facts file
//	insurance-assistant assess --plan star-health-gold --facts claim.yaml
//
//	# List the loaded plans
//	insurance-assistant plans list
//
//	# Combine plan JSON files into one document
//	insurance-assistant plans merge --dir plans/ --out merged.json
//
//	# Show version information
//	insurance-assistant version
package main

func main() {
	Execute()
}
