package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid JSON config", config: Config{Level: "info", Format: "json", RedactPII: true}},
		{name: "valid text config", config: Config{Level: "debug", Format: "text"}},
		{name: "valid console config", config: Config{Level: "warn", Format: "console", RedactPII: true}},
		{name: "defaults", config: Config{}},
		{name: "invalid log level", config: Config{Level: "invalid", Format: "json"}, wantErr: true},
		{name: "invalid format", config: Config{Level: "info", Format: "invalid"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.config.Writer = &buf
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v\n%s", err, buf.String())
	}
	return entry
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered, got %s", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn to be written, got %s", buf.String())
	}
}

func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Format: "json", RedactPII: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.With("api_key", "sk-abcdefghijkl").Info("claim received from asha@example.com",
		"patient_name", "Asha Rao",
		"utterance", "call me on +91 9876543210",
		"note", "aadhaar 1234 5678 9012",
		"error", errors.New("upstream rejected Bearer abc.def"),
		"patient_age", 45,
	)

	entry := decodeLine(t, &buf)
	out := buf.String()

	for _, leaked := range []string{"asha@example.com", "Asha Rao", "9876543210", "1234 5678 9012", "abc.def", "sk-abcdefghijkl"} {
		if strings.Contains(out, leaked) {
			t.Errorf("expected %q to be redacted, got %s", leaked, out)
		}
	}
	if entry["patient_name"] != "[redacted 8 chars]" {
		t.Errorf("expected patient name length mask, got %v", entry["patient_name"])
	}
	if entry["note"] != "aadhaar XXXX-XXXX-XXXX" {
		t.Errorf("expected masked aadhaar, got %v", entry["note"])
	}
	if entry["patient_age"] != float64(45) {
		t.Errorf("expected non-string values to pass through, got %v", entry["patient_age"])
	}
}

func TestLogger_NoRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("hello", "patient_name", "Asha Rao")
	if entry := decodeLine(t, &buf); entry["patient_name"] != "Asha Rao" {
		t.Errorf("expected raw value without redaction, got %v", entry["patient_name"])
	}
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx := WithSession(context.Background(), "sess-1")
	ctx = WithRequestID(ctx, "req-9")
	ctx = WithPlan(ctx, "star-comprehensive")
	ctx, span := tp.Tracer("test").Start(ctx, "op")
	defer span.End()

	logger.InfoContext(ctx, "transition")

	entry := decodeLine(t, &buf)
	want := map[string]string{
		"session_id": "sess-1",
		"request_id": "req-9",
		"plan_id":    "star-comprehensive",
		"trace_id":   span.SpanContext().TraceID().String(),
	}
	for key, value := range want {
		if entry[key] != value {
			t.Errorf("expected %s=%q, got %v", key, value, entry[key])
		}
	}
}

func TestLogger_ConsoleOmitsTime(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("ready", "plans", 3)
	out := buf.String()
	if strings.Contains(out, "time=") {
		t.Errorf("expected console output without time, got %q", out)
	}
	if !strings.Contains(out, "msg=ready") || !strings.Contains(out, "plans=3") {
		t.Errorf("unexpected console output %q", out)
	}
}

func TestFromConfig(t *testing.T) {
	off := false
	cfg := FromConfig(config.LoggingConfig{Level: "debug", Format: "json", RedactPII: &off})
	if cfg.Level != "debug" || cfg.Format != "json" || cfg.RedactPII {
		t.Errorf("unexpected config %+v", cfg)
	}
	if !FromConfig(config.LoggingConfig{}).RedactPII {
		t.Error("expected redaction on by default")
	}
}

func TestRedactor_RedactString(t *testing.T) {
	r := NewRedactor()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"api key", "key sk-proj1234567890", "key sk-***"},
		{"email", "mail asha.rao@example.co.in now", "mail ***@*** now"},
		{"pan", "PAN ABCDE1234F on file", "PAN XXXXX0000X on file"},
		{"mobile", "call 9876543210", "call +91-XXXXXXXXXX"},
		{"dates untouched", "policy started 2024-01-01", "policy started 2024-01-01"},
		{"amount untouched", "claim of 150000 rupees", "claim of 150000 rupees"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactString(tt.input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRedactor_Groups(t *testing.T) {
	r := NewRedactor()
	a := r.RedactAttr(slog.Group("claim", slog.String("patient_name", "Ravi"), slog.Int("age", 60)))

	group := a.Value.Group()
	if len(group) != 2 {
		t.Fatalf("expected 2 attrs in group, got %d", len(group))
	}
	if group[0].Value.String() != "[redacted 4 chars]" {
		t.Errorf("expected nested name to be masked, got %q", group[0].Value.String())
	}
	if group[1].Value.Int64() != 60 {
		t.Errorf("expected age to pass through, got %v", group[1].Value)
	}
}
