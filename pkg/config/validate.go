package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "sessions.ttl").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Has reports whether a field failed validation.
func (e ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Validate validates the entire configuration and returns a ValidationError
// if any rule fails. All errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validatePlans(&cfg.Plans)...)
	errs = append(errs, validateSessions(&cfg.Sessions)...)

	if err := cfg.Eligibility.Validate(); err != nil {
		errs = append(errs, FieldError{Field: "eligibility", Message: err.Error()})
	}

	if cfg.Clarifications.MaxQuestions < 1 {
		errs = append(errs, FieldError{
			Field:   "clarifications.max_questions",
			Message: "max questions must be at least 1",
		})
	}

	errs = append(errs, validateCollaborator(&cfg.Collaborator)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validatePlans(cfg *PlansConfig) []FieldError {
	var errs []FieldError

	if !cfg.Git.Enabled && cfg.Directory == "" {
		errs = append(errs, FieldError{
			Field:   "plans.directory",
			Message: "plan directory is required",
		})
	}
	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "plans.debounce_interval",
			Message: "debounce interval cannot be negative",
		})
	}
	if cfg.MaxFileSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "plans.max_file_size",
			Message: "max file size must be positive",
		})
	}
	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("plans.extensions[%d]", i),
				Message: fmt.Sprintf("extension %q must start with '.'", ext),
			})
		}
	}

	if !cfg.Git.Enabled {
		return errs
	}

	git := &cfg.Git
	if git.Repository == "" {
		errs = append(errs, FieldError{
			Field:   "plans.git.repository",
			Message: "repository is required when git is enabled",
		})
	}
	if git.Branch == "" {
		errs = append(errs, FieldError{
			Field:   "plans.git.branch",
			Message: "branch is required when git is enabled",
		})
	}

	switch git.Auth.Type {
	case "none":
	case "token":
		if git.Auth.Token == "" {
			errs = append(errs, FieldError{
				Field:   "plans.git.auth.token",
				Message: "token is required for token auth",
			})
		}
	case "ssh":
		if git.Auth.SSHKeyPath == "" {
			errs = append(errs, FieldError{
				Field:   "plans.git.auth.ssh_key_path",
				Message: "ssh key path is required for ssh auth",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "plans.git.auth.type",
			Message: fmt.Sprintf("invalid auth type %q: must be 'none', 'token', or 'ssh'", git.Auth.Type),
		})
	}

	if git.Poll.Interval < 0 {
		errs = append(errs, FieldError{
			Field:   "plans.git.poll.interval",
			Message: "poll interval cannot be negative",
		})
	}
	if git.Poll.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "plans.git.poll.timeout",
			Message: "poll timeout must be positive",
		})
	}
	if git.Clone.Depth < 0 {
		errs = append(errs, FieldError{
			Field:   "plans.git.clone.depth",
			Message: "clone depth cannot be negative",
		})
	}

	return errs
}

func validateSessions(cfg *SessionsConfig) []FieldError {
	var errs []FieldError

	if cfg.TTL <= 0 {
		errs = append(errs, FieldError{
			Field:   "sessions.ttl",
			Message: "ttl must be positive",
		})
	}
	if _, err := cron.ParseStandard(cfg.SweepSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "sessions.sweep_schedule",
			Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.SweepSchedule, err),
		})
	}
	if cfg.TranscriptLimit < 1 {
		errs = append(errs, FieldError{
			Field:   "sessions.transcript_limit",
			Message: "transcript limit must be at least 1",
		})
	}
	if cfg.Snapshots.Enabled && cfg.Snapshots.Path == "" {
		errs = append(errs, FieldError{
			Field:   "sessions.snapshots.path",
			Message: "snapshot path is required when snapshots are enabled",
		})
	}

	return errs
}

func validateCollaborator(cfg *CollaboratorConfig) []FieldError {
	var errs []FieldError

	switch cfg.Provider {
	case "none":
		return nil
	case "openai", "anthropic":
	default:
		errs = append(errs, FieldError{
			Field:   "collaborator.provider",
			Message: fmt.Sprintf("invalid provider %q: must be 'none', 'openai', or 'anthropic'", cfg.Provider),
		})
		return errs
	}

	if cfg.APIKey == "" {
		errs = append(errs, FieldError{
			Field:   "collaborator.api_key",
			Message: "api key is required when a provider is configured",
		})
	}
	if cfg.Model == "" {
		errs = append(errs, FieldError{
			Field:   "collaborator.model",
			Message: "model is required when a provider is configured",
		})
	}
	if cfg.BaseURL != "" {
		if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "collaborator.base_url",
				Message: fmt.Sprintf("invalid base URL %q", cfg.BaseURL),
			})
		}
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "collaborator.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.MaxRetries < 0 {
		errs = append(errs, FieldError{
			Field:   "collaborator.max_retries",
			Message: "max retries cannot be negative",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" || cfg.Metrics.Path[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
		if cfg.Metrics.Address == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.address",
				Message: "metrics address is required when metrics are enabled",
			})
		}
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
