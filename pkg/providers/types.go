package providers

import "time"

// Message is a single provider-agnostic chat message.
type Message struct {
	// Role identifies the sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionRequest is a provider-agnostic completion request.
type CompletionRequest struct {
	// Model is the model identifier (e.g., "gpt-4o-mini", "claude-3-5-haiku-latest")
	Model string `json:"model"`

	// Messages is the conversation, system prompt first
	Messages []Message `json:"messages"`

	// Temperature controls randomness
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens is the maximum number of tokens to generate
	MaxTokens int `json:"max_tokens,omitempty"`

	// JSONMode asks the provider for a single JSON object, where supported
	JSONMode bool `json:"-"`
}

// CompletionResponse is a normalized completion response.
type CompletionResponse struct {
	ID           string     `json:"id"`
	Model        string     `json:"model"`
	Content      string     `json:"content"`
	FinishReason string     `json:"finish_reason"`
	Usage        TokenUsage `json:"usage"`
	Created      int64      `json:"created"`
}

// ProviderHealth tracks the health of a provider.
type ProviderHealth struct {
	IsHealthy             bool
	LastCheck             time.Time
	LastError             error
	ConsecutiveFailures   int
	LastSuccessfulRequest time.Time
	TotalRequests         int64
	FailedRequests        int64
}

// ProviderConfig configures one provider instance.
type ProviderConfig struct {
	// Name is the provider identifier used in logs and errors
	Name string

	// Type is the adapter type (openai, anthropic)
	Type string

	// BaseURL is the API endpoint base URL
	BaseURL string

	// APIKey is the authentication key
	APIKey string

	// Timeout bounds each HTTP attempt
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt
	MaxRetries int

	// RetryBackoff is the first retry delay; it doubles per attempt.
	// Default: 1s
	RetryBackoff time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reason constants
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)
