package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/providers"
)

// DefaultBaseURL is the OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// Provider is the OpenAI chat completions adapter. It also serves any
// OpenAI-compatible endpoint through BaseURL.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates an OpenAI provider.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{Provider: "openai", Field: "name", Message: "provider name is required"}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{Provider: config.Name, Field: "api_key", Message: "API key is required for OpenAI"}
	}
	if config.Type == "" {
		config.Type = "openai"
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

// SendCompletion sends a chat completion request.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := providers.ValidateRequest(req); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/chat/completions", p.GetConfig().BaseURL)
	headers := map[string]string{
		"Authorization": "Bearer " + p.GetConfig().APIKey,
		"Content-Type":  "application/json",
	}

	var resp chatResponse
	if err := p.DoJSONRequest(ctx, "POST", url, transformRequest(req), &resp, headers); err != nil {
		return nil, err
	}

	out, err := transformResponse(&resp)
	if err != nil {
		return nil, &providers.ParseError{Provider: p.GetName(), Cause: err}
	}
	return out, nil
}
