package config

import (
	"time"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
)

// Default values for configuration fields.
const (
	// Plans defaults
	DefaultPlansDirectory   = "./plans"
	DefaultPlansDebounce    = 100 * time.Millisecond
	DefaultPlansMaxFileSize = int64(10 * 1024 * 1024)
	DefaultGitBranch        = "main"
	DefaultGitAuthType      = "none"
	DefaultGitPollInterval  = 30 * time.Second
	DefaultGitPollTimeout   = 10 * time.Second
	DefaultGitCloneDepth    = 1

	// Sessions defaults
	DefaultSessionTTL                 = 30 * time.Minute
	DefaultSweepSchedule              = "@every 1m"
	DefaultTranscriptLimit            = 50
	DefaultSnapshotPath               = "data/sessions.db"
	DefaultSnapshotCheckpointInterval = 5 * time.Minute
	DefaultSnapshotBusyTimeout        = 5 * time.Second

	// Clarifications defaults
	DefaultMaxQuestions = 3

	// Secrets defaults
	DefaultSecretsEnvPrefix = "ASSISTANT_SECRET_"

	// Collaborator defaults
	DefaultCollaboratorProvider   = "none"
	DefaultCollaboratorTimeout    = 10 * time.Second
	DefaultCollaboratorMaxRetries = 2
	DefaultCollaboratorMaxTokens  = 1024

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultMetricsAddress     = "127.0.0.1:9090"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "insurance_assistant"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "insurance-assistant"
	DefaultTracingTimeout     = 10 * time.Second
)

// DefaultPlanExtensions are the plan file extensions recognised by default.
var DefaultPlanExtensions = []string{".json", ".yaml", ".yml"}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets defaults for any fields that have zero values.
// It is idempotent.
func ApplyDefaults(cfg *Config) {
	applyPlansDefaults(&cfg.Plans)
	applySessionsDefaults(&cfg.Sessions)
	applyEligibilityDefaults(&cfg.Eligibility)

	if cfg.Clarifications.MaxQuestions == 0 {
		cfg.Clarifications.MaxQuestions = DefaultMaxQuestions
	}

	applyCollaboratorDefaults(&cfg.Collaborator)

	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyPlansDefaults(cfg *PlansConfig) {
	if cfg.Directory == "" {
		cfg.Directory = DefaultPlansDirectory
	}
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = DefaultPlansDebounce
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = append([]string(nil), DefaultPlanExtensions...)
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = DefaultPlansMaxFileSize
	}

	git := &cfg.Git
	if git.Branch == "" {
		git.Branch = DefaultGitBranch
	}
	if git.Auth.Type == "" {
		git.Auth.Type = DefaultGitAuthType
	}
	if git.Poll.Interval == 0 {
		git.Poll.Interval = DefaultGitPollInterval
	}
	if git.Poll.Timeout == 0 {
		git.Poll.Timeout = DefaultGitPollTimeout
	}
	if git.Clone.Depth == 0 {
		git.Clone.Depth = DefaultGitCloneDepth
	}
}

func applySessionsDefaults(cfg *SessionsConfig) {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = DefaultSweepSchedule
	}
	if cfg.TranscriptLimit == 0 {
		cfg.TranscriptLimit = DefaultTranscriptLimit
	}
	if cfg.Snapshots.Path == "" {
		cfg.Snapshots.Path = DefaultSnapshotPath
	}
	if cfg.Snapshots.CheckpointInterval == 0 {
		cfg.Snapshots.CheckpointInterval = DefaultSnapshotCheckpointInterval
	}
	if cfg.Snapshots.BusyTimeout == 0 {
		cfg.Snapshots.BusyTimeout = DefaultSnapshotBusyTimeout
	}
}

func applyEligibilityDefaults(cfg *eligibility.Config) {
	def := eligibility.DefaultConfig()
	if cfg.InitialWaitingDays == 0 {
		cfg.InitialWaitingDays = def.InitialWaitingDays
	}
	if cfg.PreExistingWaitingDays == 0 {
		cfg.PreExistingWaitingDays = def.PreExistingWaitingDays
	}
	if cfg.AccidentWaitingDays == 0 {
		cfg.AccidentWaitingDays = def.AccidentWaitingDays
	}
	if cfg.SeniorAge == 0 {
		cfg.SeniorAge = def.SeniorAge
	}
	if cfg.SeniorCopayPercent == 0 {
		cfg.SeniorCopayPercent = def.SeniorCopayPercent
	}
	if cfg.DefaultSumInsured == 0 {
		cfg.DefaultSumInsured = def.DefaultSumInsured
	}
}

func applyCollaboratorDefaults(cfg *CollaboratorConfig) {
	if cfg.Provider == "" {
		cfg.Provider = DefaultCollaboratorProvider
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultCollaboratorTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultCollaboratorMaxRetries
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultCollaboratorMaxTokens
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = DefaultMetricsAddress
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
}
