// Package providers defines the LLM provider abstraction used by the
// natural-language collaborator.
//
// Adapters live in subpackages (openai, anthropic) and embed HTTPProvider,
// which supplies connection pooling, retries with exponential backoff and
// health tracking.
//
// # Errors
//
// Adapters return typed errors so callers can decide how to degrade:
//
//   - AuthError: the API key was rejected (401/403), never retried
//   - RateLimitError: 429, carries RetryAfter when the provider sends it
//   - TimeoutError: the context or client deadline expired
//   - ParseError: the response body could not be decoded
//   - ProviderError: any other non-2xx status, after retries for 5xx
//   - ValidationError, ConfigError: caller mistakes caught before sending
//
// Kind maps an error to a short label for metrics.
package providers
