package providers

import "context"

// Provider is implemented by every LLM adapter. The collaborator only needs
// one-shot completions.
//
// Example usage:
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := provider.SendCompletion(ctx, &CompletionRequest{
//	    Model:    "gpt-4o-mini",
//	    Messages: []Message{{Role: RoleUser, Content: "Hello!"}},
//	})
type Provider interface {
	// SendCompletion sends a completion request and returns the normalized
	// response. Transient failures are retried with exponential backoff.
	SendCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// GetName returns the provider's configured name.
	GetName() string

	// GetType returns the adapter type ("openai", "anthropic").
	GetType() string

	// IsHealthy reports whether recent requests have succeeded.
	IsHealthy() bool

	// Close releases idle connections.
	Close() error
}
