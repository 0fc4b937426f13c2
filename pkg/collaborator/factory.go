package collaborator

import (
	"fmt"
	"log/slog"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/config"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/providerfactory"
)

// New builds the resilient collaborator described by cfg. Provider "none"
// yields a heuristic-only collaborator.
func New(cfg config.CollaboratorConfig, logger *slog.Logger, opts ...Option) (*Resilient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]Option{WithTimeout(cfg.Timeout), WithLogger(logger)}, opts...)

	provider, err := providerfactory.FromCollaboratorConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create collaborator: %w", err)
	}
	if provider == nil {
		logger.Info("natural-language collaborator disabled, using heuristics")
		return NewResilient(nil, opts...), nil
	}

	llm, err := NewLLM(provider, cfg.Model, cfg.MaxTokens, logger)
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("failed to create collaborator: %w", err)
	}
	logger.Info("natural-language collaborator enabled",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"timeout", cfg.Timeout,
	)
	return NewResilient(llm, opts...), nil
}
