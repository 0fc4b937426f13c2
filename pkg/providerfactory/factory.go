package providerfactory

import (
	"fmt"
	"log/slog"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/config"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/providers"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/providers/anthropic"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/providers/openai"
)

// NewProvider creates a provider instance based on the configuration.
//
// Supported provider types:
//   - "openai": OpenAI Chat Completions, and any compatible endpoint via BaseURL
//   - "anthropic": Anthropic Messages API
//
// When config.Type is empty it is inferred from the name; unknown names are
// treated as OpenAI-compatible.
func NewProvider(cfg providers.ProviderConfig) (providers.Provider, error) {
	providerType := cfg.Type
	if providerType == "" {
		providerType = inferProviderType(cfg.Name)
		cfg.Type = providerType
	}

	slog.Debug("creating provider",
		"name", cfg.Name,
		"type", providerType,
		"base_url", cfg.BaseURL,
	)

	var (
		provider providers.Provider
		err      error
	)
	switch providerType {
	case "openai":
		provider, err = openai.NewProvider(cfg)
	case "anthropic":
		provider, err = anthropic.NewProvider(cfg)
	default:
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: openai, anthropic)", providerType),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", cfg.Name, err)
	}

	slog.Debug("provider created", "name", cfg.Name, "type", providerType)
	return provider, nil
}

// FromCollaboratorConfig creates the provider behind the natural-language
// collaborator. It returns nil, nil when the provider is "none".
func FromCollaboratorConfig(cfg config.CollaboratorConfig) (providers.Provider, error) {
	if cfg.Provider == "" || cfg.Provider == "none" {
		return nil, nil
	}
	return NewProvider(providers.ProviderConfig{
		Name:       cfg.Provider,
		Type:       cfg.Provider,
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	})
}

func inferProviderType(name string) string {
	switch name {
	case "anthropic", "claude":
		return "anthropic"
	default:
		return "openai"
	}
}
