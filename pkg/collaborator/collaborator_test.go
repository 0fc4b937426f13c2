package collaborator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	testhelpers "github.com/Sanjai-Magilan/insurance-assistant/internal/providers"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/config"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/planintel"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/providers/anthropic"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/providers/openai"
)

type observation struct {
	op, outcome string
}

type recorder struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recorder) RecordCollaborator(op, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{op, outcome})
}

func (r *recorder) last() observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.obs) == 0 {
		return observation{}
	}
	return r.obs[len(r.obs)-1]
}

// stub is a scripted collaborator.
type stub struct {
	extract func(ctx context.Context) (claim.Facts, error)
	narrate func(ctx context.Context) (string, error)
}

func (s *stub) Name() string { return "stub" }

func (s *stub) Extract(ctx context.Context, _ string, _ Hints) (claim.Facts, error) {
	return s.extract(ctx)
}

func (s *stub) Narrate(ctx context.Context, _ *eligibility.Result, _ *planintel.Analysis) (string, error) {
	return s.narrate(ctx)
}

func sampleResult() *eligibility.Result {
	return &eligibility.Result{
		Eligible:  false,
		Condition: "cataract",
		Rejections: []eligibility.Rejection{
			{Code: eligibility.RejectDiseaseWaiting, Reason: "Cataract has a 24 month waiting period"},
		},
		Financial: eligibility.Breakdown(50000, 300000, 10),
	}
}

func newOpenAILLM(t *testing.T, mock *testhelpers.MockServer) *LLM {
	t.Helper()
	provider, err := openai.NewProvider(testhelpers.TestConfigWithURL("openai", "openai", mock.URL()+"/v1"))
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { provider.Close() })

	llm, err := NewLLM(provider, "gpt-4o-mini", 256, nil)
	if err != nil {
		t.Fatalf("failed to create collaborator: %v", err)
	}
	return llm
}

func TestDecodeFacts(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, f claim.Facts)
		wantErr bool
	}{
		{
			name:    "plain object",
			content: `{"patient_name": "Asha", "patient_age": 45, "claim_amount": 50000}`,
			check: func(t *testing.T, f claim.Facts) {
				if f.PatientName == nil || *f.PatientName != "Asha" {
					t.Errorf("expected name Asha, got %v", f.PatientName)
				}
				if f.PatientAge == nil || *f.PatientAge != 45 {
					t.Errorf("expected age 45, got %v", f.PatientAge)
				}
			},
		},
		{
			name:    "fenced with prose",
			content: "Here you go:\n```json\n{\"medical_condition\": \"cataract\"}\n```",
			check: func(t *testing.T, f claim.Facts) {
				if f.MedicalCondition == nil || *f.MedicalCondition != "cataract" {
					t.Errorf("expected cataract, got %v", f.MedicalCondition)
				}
			},
		},
		{
			name:    "wrong type is skipped",
			content: `{"patient_age": "forty", "patient_name": "Ravi", "policy_start_date": "last year"}`,
			check: func(t *testing.T, f claim.Facts) {
				if f.PatientAge != nil {
					t.Errorf("expected age to be skipped, got %d", *f.PatientAge)
				}
				if f.PolicyStartDate != nil {
					t.Errorf("expected date to be skipped, got %v", f.PolicyStartDate)
				}
				if f.PatientName == nil || *f.PatientName != "Ravi" {
					t.Errorf("expected name Ravi to survive, got %v", f.PatientName)
				}
			},
		},
		{
			name:    "unknown keys and nulls are ignored",
			content: `{"favourite_colour": "blue", "patient_age": null}`,
			check: func(t *testing.T, f claim.Facts) {
				if !f.IsEmpty() {
					t.Errorf("expected no facts, got %+v", f)
				}
			},
		},
		{name: "no object", content: "I could not find anything", wantErr: true},
		{name: "broken object", content: `{"patient_age": 4`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := decodeFacts(tt.content)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Errorf("expected ErrMalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, f)
		})
	}
}

func TestLLM_ExtractDropsInvalidFacts(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOpenAIResponse(`{"patient_age": 200, "claim_amount": 75000, "gender": "robot"}`, "gpt-4o-mini"),
	})

	llm := newOpenAILLM(t, mock)
	facts, err := llm.Extract(context.Background(), "claim of 75000", Hints{AwaitingField: claim.FieldClaimAmount})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if facts.PatientAge != nil {
		t.Errorf("expected out-of-range age to be dropped, got %d", *facts.PatientAge)
	}
	if facts.Gender != nil {
		t.Errorf("expected unknown gender to be dropped, got %s", *facts.Gender)
	}
	if facts.ClaimAmount == nil || *facts.ClaimAmount != 75000 {
		t.Errorf("expected claim amount 75000, got %v", facts.ClaimAmount)
	}

	body, _ := mock.LastRequest()
	var sent map[string]any
	if err := json.Unmarshal(body, &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	messages, _ := sent["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(messages))
	}
	user, _ := messages[1].(map[string]any)
	if content, _ := user["content"].(string); !strings.Contains(content, "claim amount") {
		t.Errorf("expected awaiting-field hint in prompt, got %q", content)
	}
}

func TestResilient_ExtractFallback(t *testing.T) {
	tests := []struct {
		name     string
		response testhelpers.MockResponse
		outcome  string
	}{
		{
			name:     "malformed output",
			response: testhelpers.MockResponse{StatusCode: 200, Body: testhelpers.MockOpenAIResponse("sorry, no JSON today", "gpt-4o-mini")},
			outcome:  ReasonMalformed,
		},
		{
			name:     "empty output",
			response: testhelpers.MockResponse{StatusCode: 200, Body: testhelpers.MockOpenAIResponse("   ", "gpt-4o-mini")},
			outcome:  ReasonEmpty,
		},
		{
			name:     "auth error",
			response: testhelpers.MockResponse{StatusCode: 401, Body: `{"error": "bad key"}`},
			outcome:  "auth",
		},
		{
			name: "slow provider",
			response: testhelpers.MockResponse{
				StatusCode: 200,
				Body:       testhelpers.MockOpenAIResponse(`{"patient_age": 99}`, "gpt-4o-mini"),
				Delay:      time.Second,
			},
			outcome: "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testhelpers.NewMockServer()
			defer mock.Close()
			mock.SetResponse("/v1/chat/completions", tt.response)

			rec := &recorder{}
			r := NewResilient(newOpenAILLM(t, mock), WithTimeout(100*time.Millisecond), WithObserver(rec))

			facts := r.Extract(context.Background(), "My father is 67 years old", Hints{})
			if facts.PatientAge == nil || *facts.PatientAge != 67 {
				t.Errorf("expected heuristic age 67, got %v", facts.PatientAge)
			}
			if got := rec.last(); got.op != OpExtract || got.outcome != tt.outcome {
				t.Errorf("expected extract/%s observation, got %+v", tt.outcome, got)
			}
		})
	}
}

func TestResilient_ExtractSuccess(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOpenAIResponse(`{"patient_age": 70, "medical_condition": "knee replacement"}`, "gpt-4o-mini"),
	})

	rec := &recorder{}
	r := NewResilient(newOpenAILLM(t, mock), WithObserver(rec))
	facts := r.Extract(context.Background(), "seventy year old needs a knee replacement", Hints{})

	if facts.PatientAge == nil || *facts.PatientAge != 70 {
		t.Errorf("expected model age 70, got %v", facts.PatientAge)
	}
	if got := rec.last(); got.outcome != OutcomeOK {
		t.Errorf("expected ok observation, got %+v", got)
	}
	if r.Backend() != "openai" {
		t.Errorf("expected backend openai, got %q", r.Backend())
	}
}

func TestResilient_BackendIgnoringCancellation(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	rec := &recorder{}
	blocked := &stub{
		extract: func(context.Context) (claim.Facts, error) {
			<-release
			return claim.Facts{PatientAge: claim.Ptr(1)}, nil
		},
	}
	r := NewResilient(blocked, WithTimeout(20*time.Millisecond), WithObserver(rec))

	start := time.Now()
	facts := r.Extract(context.Background(), "I am 45 years old", Hints{})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("expected call to return after the timeout, took %s", elapsed)
	}
	if facts.PatientAge == nil || *facts.PatientAge != 45 {
		t.Errorf("expected heuristic age 45, got %v", facts.PatientAge)
	}
	if got := rec.last(); got.outcome != "timeout" {
		t.Errorf("expected timeout observation, got %+v", got)
	}
}

func TestResilient_RecoversPanics(t *testing.T) {
	rec := &recorder{}
	r := NewResilient(&stub{
		extract: func(context.Context) (claim.Facts, error) { panic("boom") },
		narrate: func(context.Context) (string, error) { panic("boom") },
	}, WithObserver(rec))

	facts := r.Extract(context.Background(), "I am 30 years old", Hints{})
	if facts.PatientAge == nil || *facts.PatientAge != 30 {
		t.Errorf("expected heuristic age 30, got %v", facts.PatientAge)
	}
	if got := rec.last(); got.outcome != ReasonPanic {
		t.Errorf("expected panic observation, got %+v", got)
	}

	text := r.Narrate(context.Background(), sampleResult(), nil)
	if !strings.Contains(text, "not payable") {
		t.Errorf("expected template narration, got %q", text)
	}
}

func TestResilient_Narrate(t *testing.T) {
	t.Run("model narration", func(t *testing.T) {
		mock := testhelpers.NewMockServer()
		defer mock.Close()
		mock.SetResponse("/v1/messages", testhelpers.MockResponse{
			StatusCode: 200,
			Body:       testhelpers.MockAnthropicResponse("Your cataract claim must wait.", "claude-3-5-haiku-latest"),
		})

		provider, err := anthropic.NewProvider(testhelpers.TestConfigWithURL("anthropic", "anthropic", mock.URL()))
		if err != nil {
			t.Fatalf("failed to create provider: %v", err)
		}
		defer provider.Close()
		llm, err := NewLLM(provider, "claude-3-5-haiku-latest", 256, nil)
		if err != nil {
			t.Fatalf("failed to create collaborator: %v", err)
		}

		text := NewResilient(llm).Narrate(context.Background(), sampleResult(), nil)
		if text != "Your cataract claim must wait." {
			t.Errorf("expected model narration, got %q", text)
		}
	})

	t.Run("failure uses template", func(t *testing.T) {
		rec := &recorder{}
		r := NewResilient(&stub{
			narrate: func(context.Context) (string, error) { return "", errors.New("down") },
		}, WithObserver(rec))

		text := r.Narrate(context.Background(), sampleResult(), nil)
		if !strings.Contains(text, "Cataract has a 24 month waiting period") {
			t.Errorf("expected rejection reason in narration, got %q", text)
		}
		if got := rec.last(); got.op != OpNarrate || got.outcome != "other" {
			t.Errorf("expected narrate/other observation, got %+v", got)
		}
	})

	t.Run("empty narration uses template", func(t *testing.T) {
		r := NewResilient(&stub{
			narrate: func(context.Context) (string, error) { return "", nil },
		})
		if text := r.Narrate(context.Background(), sampleResult(), nil); !strings.Contains(text, "Estimate:") {
			t.Errorf("expected template narration, got %q", text)
		}
	})
}

func TestNarration(t *testing.T) {
	eligible := &eligibility.Result{
		Eligible:        true,
		Condition:       "appendicitis",
		Financial:       eligibility.Breakdown(100000, 500000, 20),
		Recommendations: []string{"Keep all original bills"},
	}
	analysis := &planintel.Analysis{SpecialFeatures: []string{"No room rent capping"}}

	text := Narration(eligible, analysis)
	for _, want := range []string{"looks payable", "appendicitis", "Co-pay (20%)", "No room rent capping", "Keep all original bills"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected narration to contain %q, got:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Reasons:") {
		t.Error("eligible narration must not list reasons")
	}

	if Narration(nil, nil) != "" {
		t.Error("expected empty narration for nil result")
	}
}

func TestNew(t *testing.T) {
	r, err := New(config.CollaboratorConfig{Provider: "none", Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Backend() != HeuristicName {
		t.Errorf("expected heuristic backend, got %q", r.Backend())
	}

	if _, err := New(config.CollaboratorConfig{Provider: "openai", APIKey: "k"}, nil); err == nil {
		t.Error("expected error for missing model")
	}

	r, err = New(config.CollaboratorConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o-mini"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Backend() != "openai" {
		t.Errorf("expected openai backend, got %q", r.Backend())
	}
}

func TestFailure(t *testing.T) {
	cause := errors.New("connection reset")
	f := newFailure(OpExtract, "openai", cause)
	if !errors.Is(f, cause) {
		t.Error("expected failure to unwrap to its cause")
	}
	if f.Reason != "other" {
		t.Errorf("expected reason other, got %q", f.Reason)
	}
	if !strings.Contains(f.Error(), "openai extract failed") {
		t.Errorf("unexpected message %q", f.Error())
	}
}
