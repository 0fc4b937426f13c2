package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ASSISTANT_"

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates the result. A missing file yields the defaults. Environment
// variables are not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides named ASSISTANT_SECTION_FIELD (e.g.
// ASSISTANT_COLLABORATOR_API_KEY). A .env file in the working directory is
// loaded first when present; variables already set in the environment win
// over it.
//
// The loading sequence is:
//  1. Load .env, if present
//  2. Load YAML from file
//  3. Apply default values
//  4. Apply environment variable overrides
//  5. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
			}
		}
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Plans
	envString("PLANS_DIRECTORY", &cfg.Plans.Directory)
	envBool("PLANS_WATCH", &cfg.Plans.Watch)
	envDuration("PLANS_DEBOUNCE_INTERVAL", &cfg.Plans.DebounceInterval)
	envList("PLANS_EXTENSIONS", &cfg.Plans.Extensions)
	envBool("PLANS_GIT_ENABLED", &cfg.Plans.Git.Enabled)
	envString("PLANS_GIT_REPOSITORY", &cfg.Plans.Git.Repository)
	envString("PLANS_GIT_BRANCH", &cfg.Plans.Git.Branch)
	envString("PLANS_GIT_PATH", &cfg.Plans.Git.Path)
	envString("PLANS_GIT_AUTH_TYPE", &cfg.Plans.Git.Auth.Type)
	envString("PLANS_GIT_AUTH_TOKEN", &cfg.Plans.Git.Auth.Token)
	envString("PLANS_GIT_AUTH_SSH_KEY_PATH", &cfg.Plans.Git.Auth.SSHKeyPath)
	envString("PLANS_GIT_AUTH_SSH_KEY_PASSPHRASE", &cfg.Plans.Git.Auth.SSHKeyPassphrase)
	envDuration("PLANS_GIT_POLL_INTERVAL", &cfg.Plans.Git.Poll.Interval)
	envString("PLANS_GIT_CLONE_LOCAL_PATH", &cfg.Plans.Git.Clone.LocalPath)

	// Sessions
	envDuration("SESSIONS_TTL", &cfg.Sessions.TTL)
	envString("SESSIONS_SWEEP_SCHEDULE", &cfg.Sessions.SweepSchedule)
	envInt("SESSIONS_TRANSCRIPT_LIMIT", &cfg.Sessions.TranscriptLimit)
	envBool("SESSIONS_SNAPSHOTS_ENABLED", &cfg.Sessions.Snapshots.Enabled)
	envString("SESSIONS_SNAPSHOTS_PATH", &cfg.Sessions.Snapshots.Path)

	// Eligibility
	envInt("ELIGIBILITY_INITIAL_WAITING_DAYS", &cfg.Eligibility.InitialWaitingDays)
	envInt("ELIGIBILITY_PRE_EXISTING_WAITING_DAYS", &cfg.Eligibility.PreExistingWaitingDays)
	envInt("ELIGIBILITY_ACCIDENT_WAITING_DAYS", &cfg.Eligibility.AccidentWaitingDays)
	envInt("ELIGIBILITY_SENIOR_AGE", &cfg.Eligibility.SeniorAge)
	envFloat("ELIGIBILITY_SENIOR_COPAY_PERCENT", &cfg.Eligibility.SeniorCopayPercent)
	envFloat("ELIGIBILITY_DEFAULT_SUM_INSURED", &cfg.Eligibility.DefaultSumInsured)

	// Clarifications
	envInt("CLARIFICATIONS_MAX_QUESTIONS", &cfg.Clarifications.MaxQuestions)

	// Collaborator
	envString("COLLABORATOR_PROVIDER", &cfg.Collaborator.Provider)
	envString("COLLABORATOR_MODEL", &cfg.Collaborator.Model)
	envString("COLLABORATOR_BASE_URL", &cfg.Collaborator.BaseURL)
	envString("COLLABORATOR_API_KEY", &cfg.Collaborator.APIKey)
	envDuration("COLLABORATOR_TIMEOUT", &cfg.Collaborator.Timeout)
	envInt("COLLABORATOR_MAX_RETRIES", &cfg.Collaborator.MaxRetries)

	// Secrets
	envString("SECRETS_DIRECTORY", &cfg.Secrets.Directory)

	// Telemetry
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_LOGGING_REDACT_PII"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Logging.RedactPII = &b
		}
	}
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_ADDRESS", &cfg.Telemetry.Metrics.Address)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envFloat("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
	envBool("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envFloat(name string, dst *float64) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func envList(name string, dst *[]string) {
	val := os.Getenv(EnvPrefix + name)
	if val == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}
