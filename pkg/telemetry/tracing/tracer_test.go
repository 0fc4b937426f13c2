package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if tracer.Enabled() {
		t.Error("expected disabled tracer")
	}

	ctx, span := tracer.Start(context.Background(), "noop")
	span.End()
	if TraceID(ctx) != "" {
		t.Errorf("expected no trace ID from noop tracer, got %q", TraceID(ctx))
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("expected noop shutdown to succeed, got %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := New(&config.TracingConfig{Enabled: true, SampleRatio: 1}); err == nil {
		t.Error("expected error for missing endpoint")
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name    string
		ratio   float64
		wantErr bool
	}{
		{"always", 1, false},
		{"never", 0, false},
		{"ratio", 0.25, false},
		{"negative", -0.1, true},
		{"above one", 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := createSampler(tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("createSampler(%v) error = %v, wantErr %v", tt.ratio, err, tt.wantErr)
			}
			if !tt.wantErr && sampler == nil {
				t.Error("expected sampler")
			}
		})
	}
}

func TestTracer_ExportsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(&config.TracingConfig{Enabled: true, SampleRatio: 1}, exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() failed: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, span := tracer.Start(context.Background(), "conversation.turn")
	SetSessionAttributes(span, "sess-1", "data_gathering", "")
	SetTransitionAttributes(span, "data_gathering", "plan_analysis")
	SetAssessmentAttributes(span, false, "accident", []string{"waiting_period"})
	SetError(span, errors.New("boom"))
	if TraceID(ctx) == "" {
		t.Error("expected trace ID on the span context")
	}
	span.End()

	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() failed: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name != "conversation.turn" {
		t.Errorf("expected span name conversation.turn, got %s", got.Name)
	}
	if got.Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", got.Status.Code)
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range got.Attributes {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrSessionID].AsString() != "sess-1" {
		t.Errorf("expected session attribute, got %v", attrs[AttrSessionID])
	}
	if _, ok := attrs[AttrPlanID]; ok {
		t.Error("expected empty plan to be skipped")
	}
	if attrs[AttrStageTo].AsString() != "plan_analysis" {
		t.Errorf("expected transition target, got %v", attrs[AttrStageTo])
	}
	if attrs[AttrEligible].AsBool() {
		t.Error("expected eligible=false")
	}
	if rejections := attrs[AttrRejections].AsStringSlice(); len(rejections) != 1 || rejections[0] != "waiting_period" {
		t.Errorf("expected rejections attribute, got %v", rejections)
	}

	var serviceName string
	for _, kv := range got.Resource.Attributes() {
		if kv.Key == "service.name" {
			serviceName = kv.Value.AsString()
		}
	}
	if serviceName != config.DefaultTracingServiceName {
		t.Errorf("expected default service name, got %q", serviceName)
	}
}

func TestTracer_NeverSamples(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(&config.TracingConfig{Enabled: true, SampleRatio: 0}, exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() failed: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Start(context.Background(), "dropped")
	span.End()
	_ = tracer.ForceFlush(context.Background())

	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("expected no sampled spans, got %d", n)
	}
}
