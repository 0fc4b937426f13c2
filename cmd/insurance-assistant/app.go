package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/clarify"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/cli"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/config"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/plans"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/secrets"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/telemetry/logging"
)

// loadConfig reads the config file and applies environment overrides.
// --verbose forces debug logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if err := resolveSecrets(context.Background(), cfg); err != nil {
		return nil, cli.NewConfigError("secrets", err.Error())
	}
	return cfg, nil
}

// resolveSecrets replaces ${secret:name} references in credential fields.
func resolveSecrets(ctx context.Context, cfg *config.Config) error {
	fields := map[string]*string{
		"collaborator.api_key":              &cfg.Collaborator.APIKey,
		"plans.git.auth.token":              &cfg.Plans.Git.Auth.Token,
		"plans.git.auth.ssh_key_passphrase": &cfg.Plans.Git.Auth.SSHKeyPassphrase,
	}
	referenced := false
	for _, v := range fields {
		if secrets.IsReference(*v) {
			referenced = true
		}
	}
	if !referenced {
		return nil
	}

	var providers []secrets.Provider
	if cfg.Secrets.Directory != "" {
		files, err := secrets.NewFileProvider(cfg.Secrets.Directory)
		if err != nil {
			return err
		}
		providers = append(providers, files)
	}
	providers = append(providers, secrets.NewEnvProvider(cfg.Secrets.EnvPrefix))

	return secrets.NewManager(nil, providers...).ResolveAll(ctx, fields)
}

// newLogger builds the process logger and installs it as the slog default.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)
	return logger, nil
}

// loadPlans creates the plan manager and performs the initial load.
func loadPlans(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...plans.ManagerOption) (*plans.Manager, error) {
	manager, err := plans.NewManager(&cfg.Plans, logger, opts...)
	if err != nil {
		return nil, cli.NewConfigError("plans", err.Error())
	}
	if err := manager.Load(ctx); err != nil {
		return manager, fmt.Errorf("failed to load plans from %s: %w", manager.Directory(), err)
	}
	return manager, nil
}

// newEngine builds the eligibility engine and the clarification generator
// from the configuration.
func newEngine(cfg *config.Config, logger *slog.Logger) (*eligibility.Engine, *clarify.Generator, error) {
	engine, err := eligibility.NewEngine(cfg.Eligibility, eligibility.WithLogger(logger))
	if err != nil {
		return nil, nil, cli.NewConfigError("eligibility", err.Error())
	}
	clarifier := clarify.NewGenerator(engine,
		clarify.WithMaxQuestions(cfg.Clarifications.MaxQuestions),
		clarify.WithSeniorAge(engine.Config().SeniorAge),
		clarify.WithLogger(logger),
	)
	return engine, clarifier, nil
}
