package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/config"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/plans"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

const factsYAML = `patient_name: Ravi Kumar
patient_age: 40
medical_condition: dengue
claim_amount: 40000
policy_start_date: 2020-01-01
claim_date: 2024-02-15
pre_existing_disease: false
`

const factsJSON = `{
	"patient_name": "Ravi Kumar",
	"patient_age": 40,
	"medical_condition": "dengue",
	"claim_amount": 40000,
	"policy_start_date": "2020-01-01",
	"claim_date": "2024-02-15",
	"pre_existing_disease": false
}`

func TestReadFacts(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr bool
	}{
		{"yaml", "claim.yaml", factsYAML, false},
		{"yml", "claim.yml", factsYAML, false},
		{"json", "claim.json", factsJSON, false},
		{"unsupported extension", "claim.txt", factsYAML, true},
		{"malformed json", "broken.json", `{"patient_age": `, true},
		{"invalid facts", "old.yaml", "patient_age: 150\n", true},
		{"bad date", "date.yaml", "policy_start_date: someday\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			writeFile(t, path, tt.content)

			facts, err := readFacts(path)
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("readFacts() returned error: %v", err)
			}
			if missing := facts.Missing(claim.RequiredFields); len(missing) != 0 {
				t.Errorf("expected all required facts, missing %v", missing)
			}
			if facts.PolicyStartDate.String() != "2020-01-01" {
				t.Errorf("expected policy start 2020-01-01, got %s", facts.PolicyStartDate)
			}
		})
	}
}

func TestReadFacts_MissingFile(t *testing.T) {
	if _, err := readFacts(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestFindPlan(t *testing.T) {
	gold, err := policydoc.Parse("gold-care", []byte(goldPlan))
	if err != nil {
		t.Fatalf("failed to parse plan: %v", err)
	}
	reg := plans.NewRegistry()
	if err := reg.Replace([]*policydoc.Document{gold}); err != nil {
		t.Fatalf("failed to load registry: %v", err)
	}

	for _, ref := range []string{"gold-care", "Gold Care"} {
		doc, err := findPlan(reg, ref)
		if err != nil {
			t.Errorf("findPlan(%q) returned error: %v", ref, err)
			continue
		}
		if doc.ID() != "gold-care" {
			t.Errorf("findPlan(%q) = %s, want gold-care", ref, doc.ID())
		}
	}

	if _, err := findPlan(reg, "platinum-xyz"); !errors.Is(err, plans.ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestRunAssess_JSON(t *testing.T) {
	dir := setupConfig(t)
	factsPath := filepath.Join(dir, "claim.yaml")
	writeFile(t, factsPath, factsYAML)

	assessFlags.plan = "gold-care"
	assessFlags.facts = factsPath
	assessFlags.output = "json"

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	if err := runAssess(cmd, nil); err != nil {
		t.Fatalf("runAssess() returned error: %v", err)
	}

	var got struct {
		Plan struct {
			ID string `json:"id"`
		} `json:"plan"`
		Result struct {
			Eligible      bool `json:"eligible"`
			PolicyAgeDays int  `json:"policy_age_days"`
		} `json:"result"`
		Analysis struct {
			Category string `json:"category"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.Plan.ID != "gold-care" {
		t.Errorf("expected plan gold-care, got %q", got.Plan.ID)
	}
	if !got.Result.Eligible {
		t.Errorf("expected an eligible claim, got %s", buf.String())
	}
	if got.Result.PolicyAgeDays != 1506 {
		t.Errorf("expected policy age 1506 days, got %d", got.Result.PolicyAgeDays)
	}
	if got.Analysis.Category == "" {
		t.Error("expected an analysis category")
	}
}

func TestRunAssess_Text(t *testing.T) {
	dir := setupConfig(t)
	factsPath := filepath.Join(dir, "claim.json")
	writeFile(t, factsPath, factsJSON)

	assessFlags.plan = "Gold Care"
	assessFlags.facts = factsPath
	assessFlags.output = "text"

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	if err := runAssess(cmd, nil); err != nil {
		t.Fatalf("runAssess() returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "Plan: Acme Health Gold Care (gold-care)") {
		t.Errorf("unexpected report:\n%s", buf.String())
	}
}

func TestRunAssess_Errors(t *testing.T) {
	dir := setupConfig(t)
	factsPath := filepath.Join(dir, "claim.yaml")
	writeFile(t, factsPath, factsYAML)

	tests := []struct {
		name   string
		plan   string
		facts  string
		output string
	}{
		{"missing plan flag", "", factsPath, "text"},
		{"missing facts flag", "gold-care", "", "text"},
		{"unknown plan", "platinum-xyz", factsPath, "text"},
		{"unknown format", "gold-care", factsPath, "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assessFlags.plan = tt.plan
			assessFlags.facts = tt.facts
			assessFlags.output = tt.output

			cmd := &cobra.Command{}
			cmd.SetOut(&bytes.Buffer{})
			if err := runAssess(cmd, nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestAssessment_TextListsMissingFacts(t *testing.T) {
	a := &assessment{
		Plan:          plans.Summary{ID: "gold-care", Company: "Acme Health", PlanName: "Gold Care"},
		MissingFields: []string{claim.FieldClaimAmount},
	}
	if got := a.Text(); !strings.Contains(got, "Missing facts: claim_amount") {
		t.Errorf("expected missing facts in %q", got)
	}
}

func TestResolveSecrets(t *testing.T) {
	t.Setenv("ASSISTANT_SECRET_OPENAI_API_KEY", "sk-from-env")

	cfg := config.Default()
	cfg.Collaborator.APIKey = "${secret:openai-api-key}"
	cfg.Plans.Git.Auth.Token = "literal-token"
	if err := resolveSecrets(context.Background(), cfg); err != nil {
		t.Fatalf("resolveSecrets() returned error: %v", err)
	}
	if cfg.Collaborator.APIKey != "sk-from-env" {
		t.Errorf("expected the API key from the environment, got %q", cfg.Collaborator.APIKey)
	}
	if cfg.Plans.Git.Auth.Token != "literal-token" {
		t.Errorf("expected literal values to be kept, got %q", cfg.Plans.Git.Auth.Token)
	}

	cfg.Collaborator.APIKey = "${secret:unset-key}"
	if err := resolveSecrets(context.Background(), cfg); err == nil {
		t.Error("expected an error for an unresolved secret")
	}
}
