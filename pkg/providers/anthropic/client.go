package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/providers"
)

const (
	// DefaultBaseURL is the Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultAnthropicVersion is the API version to use
	DefaultAnthropicVersion = "2023-06-01"
)

// Provider is the Anthropic Messages API adapter.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates an Anthropic provider.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{Provider: "anthropic", Field: "name", Message: "provider name is required"}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{Provider: config.Name, Field: "api_key", Message: "API key is required for Anthropic"}
	}
	if config.Type == "" {
		config.Type = "anthropic"
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 10
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 5
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Provider{HTTPProvider: providers.NewHTTPProvider(config)}, nil
}

// SendCompletion sends a completion request to Anthropic.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := providers.ValidateRequest(req); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/messages", p.GetConfig().BaseURL)
	headers := map[string]string{
		"x-api-key":         p.GetConfig().APIKey,
		"anthropic-version": DefaultAnthropicVersion,
		"Content-Type":      "application/json",
	}

	var resp messagesResponse
	if err := p.DoJSONRequest(ctx, "POST", url, transformRequest(req), &resp, headers); err != nil {
		return nil, err
	}

	out, err := transformResponse(&resp)
	if err != nil {
		return nil, &providers.ParseError{Provider: p.GetName(), Cause: err}
	}
	return out, nil
}
