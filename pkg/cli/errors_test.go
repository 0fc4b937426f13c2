package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		err  *ConfigError
		want string
	}{
		{NewConfigError("plans.directory", "directory does not exist"), "config error in plans.directory: directory does not exist"},
		{NewConfigError("", "failed to load config"), "config error: failed to load config"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestCommandError(t *testing.T) {
	inner := errors.New("plan not found")
	err := NewCommandError("assess", inner)

	if got := err.Error(); got != "command assess failed: plan not found" {
		t.Errorf("unexpected message %q", got)
	}
	if !errors.Is(err, inner) {
		t.Error("expected CommandError to unwrap to the inner error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"command", NewCommandError("chat", errors.New("boom")), ExitFailure},
		{"config", NewConfigError("", "bad yaml"), ExitConfig},
		{"wrapped config", fmt.Errorf("startup: %w", NewConfigError("telemetry", "bad")), ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
