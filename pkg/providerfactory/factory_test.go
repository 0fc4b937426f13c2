package providerfactory

import (
	"testing"
	"time"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/config"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/providers"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   providers.ProviderConfig
		wantType string
		wantErr  bool
	}{
		{
			name:     "openai",
			config:   providers.ProviderConfig{Name: "openai", Type: "openai", APIKey: "test-key", Timeout: 30 * time.Second},
			wantType: "openai",
		},
		{
			name:     "anthropic",
			config:   providers.ProviderConfig{Name: "anthropic", Type: "anthropic", APIKey: "test-key"},
			wantType: "anthropic",
		},
		{
			name:     "inferred compatible endpoint",
			config:   providers.ProviderConfig{Name: "ollama", BaseURL: "http://localhost:11434/v1", APIKey: "unused"},
			wantType: "openai",
		},
		{
			name:     "inferred anthropic",
			config:   providers.ProviderConfig{Name: "claude", APIKey: "test-key"},
			wantType: "anthropic",
		},
		{
			name:    "unsupported type",
			config:  providers.ProviderConfig{Name: "x", Type: "generic", APIKey: "test-key"},
			wantErr: true,
		},
		{
			name:    "missing key",
			config:  providers.ProviderConfig{Name: "openai", Type: "openai"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider() failed: %v", err)
			}
			defer provider.Close()

			if provider.GetType() != tt.wantType {
				t.Errorf("expected provider type %s, got %s", tt.wantType, provider.GetType())
			}
			if provider.GetName() != tt.config.Name {
				t.Errorf("expected provider name %s, got %s", tt.config.Name, provider.GetName())
			}
		})
	}
}

func TestFromCollaboratorConfig(t *testing.T) {
	p, err := FromCollaboratorConfig(config.CollaboratorConfig{Provider: "none"})
	if err != nil || p != nil {
		t.Errorf("expected nil provider for none, got %v, %v", p, err)
	}

	p, err = FromCollaboratorConfig(config.CollaboratorConfig{
		Provider:   "anthropic",
		APIKey:     "test-key",
		Model:      "claude-3-5-haiku-latest",
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()
	if p.GetType() != "anthropic" {
		t.Errorf("expected anthropic provider, got %s", p.GetType())
	}
}
