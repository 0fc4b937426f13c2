// Package anthropic implements the Anthropic Messages API adapter.
//
// System messages are lifted into the top-level system field, and
// max_tokens defaults to DefaultMaxTokens because the API requires it.
package anthropic
