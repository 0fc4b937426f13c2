package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assistant.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
plans:
  directory: "./data/plans"
  watch: true

sessions:
  ttl: "45m"
  snapshots:
    enabled: true
    path: "./test-sessions.db"

eligibility:
  senior_age: 65

clarifications:
  max_questions: 5

collaborator:
  provider: "openai"
  model: "gpt-4o-mini"
  api_key: "test-key-123"
  timeout: "5s"

telemetry:
  logging:
    level: "debug"
    format: "json"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Plans.Directory != "./data/plans" || !cfg.Plans.Watch {
		t.Errorf("unexpected plans config: %+v", cfg.Plans)
	}
	if cfg.Sessions.TTL != 45*time.Minute {
		t.Errorf("expected ttl 45m, got %v", cfg.Sessions.TTL)
	}
	if !cfg.Sessions.Snapshots.Enabled || cfg.Sessions.Snapshots.Path != "./test-sessions.db" {
		t.Errorf("unexpected snapshots config: %+v", cfg.Sessions.Snapshots)
	}
	if cfg.Eligibility.SeniorAge != 65 {
		t.Errorf("expected senior age 65, got %d", cfg.Eligibility.SeniorAge)
	}
	if cfg.Eligibility.InitialWaitingDays != 30 {
		t.Errorf("expected default initial waiting 30, got %d", cfg.Eligibility.InitialWaitingDays)
	}
	if cfg.Clarifications.MaxQuestions != 5 {
		t.Errorf("expected max questions 5, got %d", cfg.Clarifications.MaxQuestions)
	}
	if cfg.Collaborator.Provider != "openai" || cfg.Collaborator.Timeout != 5*time.Second {
		t.Errorf("unexpected collaborator config: %+v", cfg.Collaborator)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level debug, got %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected defaults, got error: %v", err)
	}
	if cfg.Plans.Directory != DefaultPlansDirectory {
		t.Errorf("expected directory %q, got %q", DefaultPlansDirectory, cfg.Plans.Directory)
	}
	if cfg.Collaborator.Provider != DefaultCollaboratorProvider {
		t.Errorf("expected provider %q, got %q", DefaultCollaboratorProvider, cfg.Collaborator.Provider)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "plans: [unclosed")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
collaborator:
  provider: "openai"
telemetry:
  logging:
    level: "verbose"
`)

	_, err := LoadConfig(path)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"collaborator.api_key", "collaborator.model", "telemetry.logging.level"} {
		if !verr.Has(field) {
			t.Errorf("expected error for %s, got %v", field, verr.Errors)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"plans.directory", cfg.Plans.Directory, DefaultPlansDirectory},
		{"plans.debounce_interval", cfg.Plans.DebounceInterval, DefaultPlansDebounce},
		{"plans.max_file_size", cfg.Plans.MaxFileSize, DefaultPlansMaxFileSize},
		{"plans.git.branch", cfg.Plans.Git.Branch, DefaultGitBranch},
		{"plans.git.auth.type", cfg.Plans.Git.Auth.Type, DefaultGitAuthType},
		{"plans.git.poll.interval", cfg.Plans.Git.Poll.Interval, DefaultGitPollInterval},
		{"sessions.ttl", cfg.Sessions.TTL, DefaultSessionTTL},
		{"sessions.sweep_schedule", cfg.Sessions.SweepSchedule, DefaultSweepSchedule},
		{"sessions.transcript_limit", cfg.Sessions.TranscriptLimit, DefaultTranscriptLimit},
		{"sessions.snapshots.path", cfg.Sessions.Snapshots.Path, DefaultSnapshotPath},
		{"eligibility.senior_age", cfg.Eligibility.SeniorAge, 60},
		{"eligibility.pre_existing_waiting_days", cfg.Eligibility.PreExistingWaitingDays, 1095},
		{"clarifications.max_questions", cfg.Clarifications.MaxQuestions, DefaultMaxQuestions},
		{"collaborator.timeout", cfg.Collaborator.Timeout, DefaultCollaboratorTimeout},
		{"telemetry.logging.level", cfg.Telemetry.Logging.Level, DefaultLoggingLevel},
		{"telemetry.metrics.path", cfg.Telemetry.Metrics.Path, DefaultMetricsPath},
		{"telemetry.tracing.service_name", cfg.Telemetry.Tracing.ServiceName, DefaultTracingServiceName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, tt.got)
			}
		})
	}

	if len(cfg.Plans.Extensions) != 3 {
		t.Errorf("expected 3 default extensions, got %v", cfg.Plans.Extensions)
	}
	if !cfg.Telemetry.Logging.RedactEnabled() {
		t.Error("expected redaction on by default")
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	cfg.Sessions.TTL = time.Hour
	ApplyDefaults(cfg)
	ApplyDefaults(cfg)

	if cfg.Sessions.TTL != time.Hour {
		t.Errorf("expected explicit ttl kept, got %v", cfg.Sessions.TTL)
	}
	if len(cfg.Plans.Extensions) != 3 {
		t.Errorf("expected extensions not duplicated, got %v", cfg.Plans.Extensions)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"git without repository", func(c *Config) { c.Plans.Git.Enabled = true }, "plans.git.repository"},
		{"token auth without token", func(c *Config) {
			c.Plans.Git.Enabled = true
			c.Plans.Git.Repository = "https://example.com/plans.git"
			c.Plans.Git.Auth.Type = "token"
		}, "plans.git.auth.token"},
		{"unknown auth type", func(c *Config) {
			c.Plans.Git.Enabled = true
			c.Plans.Git.Repository = "https://example.com/plans.git"
			c.Plans.Git.Auth.Type = "kerberos"
		}, "plans.git.auth.type"},
		{"extension without dot", func(c *Config) { c.Plans.Extensions = []string{"json"} }, "plans.extensions[0]"},
		{"bad sweep schedule", func(c *Config) { c.Sessions.SweepSchedule = "whenever" }, "sessions.sweep_schedule"},
		{"negative ttl", func(c *Config) { c.Sessions.TTL = -time.Second }, "sessions.ttl"},
		{"bad eligibility", func(c *Config) { c.Eligibility.SeniorCopayPercent = 150 }, "eligibility"},
		{"zero questions", func(c *Config) { c.Clarifications.MaxQuestions = -1 }, "clarifications.max_questions"},
		{"unknown provider", func(c *Config) { c.Collaborator.Provider = "oracle" }, "collaborator.provider"},
		{"bad base url", func(c *Config) {
			c.Collaborator.Provider = "anthropic"
			c.Collaborator.APIKey = "k"
			c.Collaborator.Model = "m"
			c.Collaborator.BaseURL = "not a url"
		}, "collaborator.base_url"},
		{"bad log format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"metrics path without slash", func(c *Config) {
			c.Telemetry.Metrics.Enabled = true
			c.Telemetry.Metrics.Path = "metrics"
		}, "telemetry.metrics.path"},
		{"tracing without endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "telemetry.tracing.endpoint"},
		{"sample ratio out of range", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 2 }, "telemetry.tracing.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !verr.Has(tt.field) {
				t.Errorf("expected error for %s, got %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestValidationError_Message(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if single.Error() != "configuration validation failed: a: bad" {
		t.Errorf("unexpected message: %q", single.Error())
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	want := "configuration validation failed with 2 errors:\n  - a: bad\n  - b: worse\n"
	if multi.Error() != want {
		t.Errorf("expected %q, got %q", want, multi.Error())
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
collaborator:
  provider: "anthropic"
  model: "claude-haiku"
`)

	t.Setenv("ASSISTANT_COLLABORATOR_API_KEY", "from-env")
	t.Setenv("ASSISTANT_SESSIONS_TTL", "10m")
	t.Setenv("ASSISTANT_PLANS_WATCH", "true")
	t.Setenv("ASSISTANT_PLANS_EXTENSIONS", ".json, .yml")
	t.Setenv("ASSISTANT_ELIGIBILITY_SENIOR_AGE", "70")
	t.Setenv("ASSISTANT_TELEMETRY_LOGGING_REDACT_PII", "false")
	t.Setenv("ASSISTANT_CLARIFICATIONS_MAX_QUESTIONS", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Collaborator.APIKey != "from-env" {
		t.Errorf("expected api key from env, got %q", cfg.Collaborator.APIKey)
	}
	if cfg.Sessions.TTL != 10*time.Minute {
		t.Errorf("expected ttl 10m, got %v", cfg.Sessions.TTL)
	}
	if !cfg.Plans.Watch {
		t.Error("expected watch enabled")
	}
	if len(cfg.Plans.Extensions) != 2 || cfg.Plans.Extensions[1] != ".yml" {
		t.Errorf("expected overridden extensions, got %v", cfg.Plans.Extensions)
	}
	if cfg.Eligibility.SeniorAge != 70 {
		t.Errorf("expected senior age 70, got %d", cfg.Eligibility.SeniorAge)
	}
	if cfg.Telemetry.Logging.RedactEnabled() {
		t.Error("expected redaction disabled")
	}
	if cfg.Clarifications.MaxQuestions != DefaultMaxQuestions {
		t.Errorf("expected unparsable override ignored, got %d", cfg.Clarifications.MaxQuestions)
	}
}

func TestLoadConfigWithEnvOverrides_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ASSISTANT_PLANS_DIRECTORY=/srv/plans\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Chdir(wd)
		os.Unsetenv("ASSISTANT_PLANS_DIRECTORY")
	})

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Plans.Directory != "/srv/plans" {
		t.Errorf("expected directory from .env, got %q", cfg.Plans.Directory)
	}
}

func TestApplyDefaults_Secrets(t *testing.T) {
	cfg := Default()
	if cfg.Secrets.EnvPrefix != DefaultSecretsEnvPrefix {
		t.Errorf("expected env prefix %q, got %q", DefaultSecretsEnvPrefix, cfg.Secrets.EnvPrefix)
	}
	if cfg.Secrets.Directory != "" {
		t.Errorf("expected the secrets directory to be unset, got %q", cfg.Secrets.Directory)
	}
}
