package config

import (
	"time"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
)

// Config is the root configuration structure for the insurance assistant.
type Config struct {
	// Plans configures where plan documents are loaded from.
	Plans PlansConfig `yaml:"plans"`

	// Sessions configures conversation lifetime and persistence.
	Sessions SessionsConfig `yaml:"sessions"`

	// Eligibility contains the generic rules applied when a plan is silent.
	Eligibility eligibility.Config `yaml:"eligibility"`

	// Clarifications configures the follow-up question generator.
	Clarifications ClarificationsConfig `yaml:"clarifications"`

	// Collaborator configures the natural-language collaborator.
	Collaborator CollaboratorConfig `yaml:"collaborator"`

	// Secrets configures how ${secret:name} references are resolved.
	Secrets SecretsConfig `yaml:"secrets"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PlansConfig configures the plan repository.
type PlansConfig struct {
	// Directory holds plan files (.json, .yaml, .yml).
	// Default: "./plans"
	Directory string `yaml:"directory"`

	// Watch reloads plans when files in Directory change.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval groups bursts of file events into one reload.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// Extensions lists the plan file extensions.
	// Default: [".json", ".yaml", ".yml"]
	Extensions []string `yaml:"extensions"`

	// MaxFileSize is the largest plan file accepted, in bytes.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`

	// Git configures a git-backed plan source. When enabled, plans are read
	// from the clone instead of Directory.
	Git GitConfig `yaml:"git"`
}

// GitConfig configures git-backed plan loading.
type GitConfig struct {
	// Enabled determines if git mode is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository URL (HTTPS or SSH).
	// Example: "https://github.com/insurer/plans.git"
	Repository string `yaml:"repository"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within the repository to plan files.
	// Default: "" (repository root)
	Path string `yaml:"path"`

	// Auth configures git authentication.
	Auth GitAuthConfig `yaml:"auth"`

	// Poll configures change detection.
	Poll GitPollConfig `yaml:"poll"`

	// Clone configures repository cloning.
	Clone GitCloneConfig `yaml:"clone"`
}

// GitAuthConfig configures git authentication.
type GitAuthConfig struct {
	// Type: "token", "ssh" or "none".
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication.
	// Required when Type is "token".
	Token string `yaml:"token"`

	// SSHKeyPath for SSH authentication.
	// Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted SSH keys.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// GitPollConfig configures change detection.
type GitPollConfig struct {
	// Interval between polls. Zero disables polling; plans are then loaded
	// once at startup.
	// Default: 30s
	Interval time.Duration `yaml:"interval"`

	// Timeout for git operations.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// GitCloneConfig configures repository cloning.
type GitCloneConfig struct {
	// Depth for shallow clones (0 = full clone).
	// Default: 1
	Depth int `yaml:"depth"`

	// LocalPath where the repository is cloned.
	// Default: system temp directory
	LocalPath string `yaml:"local_path"`

	// CleanOnStart removes the local clone before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`
}

// SessionsConfig configures the session store.
type SessionsConfig struct {
	// TTL is the inactivity period after which a session is evicted.
	// Default: 30m
	TTL time.Duration `yaml:"ttl"`

	// SweepSchedule is the cron schedule of the eviction sweep.
	// Default: "@every 1m"
	SweepSchedule string `yaml:"sweep_schedule"`

	// TranscriptLimit bounds the transcript kept per session.
	// Default: 50
	TranscriptLimit int `yaml:"transcript_limit"`

	// Snapshots configures SQLite persistence of sessions.
	Snapshots SnapshotsConfig `yaml:"snapshots"`
}

// SnapshotsConfig configures session snapshots.
type SnapshotsConfig struct {
	// Enabled writes every committed session to SQLite and restores them
	// on startup.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file.
	// Default: "data/sessions.db"
	Path string `yaml:"path"`

	// CheckpointInterval is how often the WAL is checkpointed.
	// Default: 5m
	CheckpointInterval time.Duration `yaml:"checkpoint_interval"`

	// BusyTimeout is how long to wait for database locks.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// ClarificationsConfig configures the clarification generator.
type ClarificationsConfig struct {
	// MaxQuestions caps the questions produced per analysis pass.
	// Default: 3
	MaxQuestions int `yaml:"max_questions"`
}

// CollaboratorConfig configures the natural-language collaborator.
type CollaboratorConfig struct {
	// Provider selects the backend: "none", "openai" or "anthropic".
	// "none" uses the deterministic extractor and narrator only.
	// Default: "none"
	Provider string `yaml:"provider"`

	// Model is the model name sent to the provider.
	Model string `yaml:"model"`

	// BaseURL is the provider API base URL.
	// Default: the provider's public endpoint.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates with the provider.
	// Required unless Provider is "none".
	APIKey string `yaml:"api_key"`

	// Timeout bounds every collaborator call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the retry budget of the provider client.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`

	// MaxTokens caps a completion.
	// Default: 1024
	MaxTokens int `yaml:"max_tokens"`
}

// SecretsConfig configures secret resolution. Credentials in the
// collaborator and git sections may be written as ${secret:name}.
type SecretsConfig struct {
	// EnvPrefix prefixes the environment variable of a secret: the secret
	// "openai-api-key" is read from ASSISTANT_SECRET_OPENAI_API_KEY.
	// Default: "ASSISTANT_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Directory holds one file per secret, named after the secret.
	// Files must not be readable by group or others. Checked before the
	// environment when set.
	// Default: "" (files disabled)
	Directory string `yaml:"directory"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII masks personal data in log attributes.
	// Default: true
	RedactPII *bool `yaml:"redact_pii"`
}

// RedactEnabled reports whether PII redaction is on.
func (c LoggingConfig) RedactEnabled() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Address is the listen address of the metrics endpoint.
	// Default: "127.0.0.1:9090"
	Address string `yaml:"address"`

	// Path is the HTTP path of the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "insurance_assistant"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP/gRPC collector address.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is the service name in traces.
	// Default: "insurance-assistant"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the export timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
