package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/clarify"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/cli"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/collaborator"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/eligibility"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/planintel"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/plans"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

var assessFlags struct {
	plan   string
	facts  string
	output string
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess a claim described in a facts file",
	Long: `Assess a claim in one shot, without a conversation.

The facts file is JSON or YAML with the claim fields, for example:

  patient_name: Ravi Kumar
  patient_age: 67
  medical_condition: cataract
  claim_amount: 80000
  policy_start_date: 2021-04-01
  pre_existing_disease: false

The command prints the eligibility result, the condition analysis and the
questions that would still be asked.

Examples:
  # Text report
  insurance-assistant assess --plan star-health-gold --facts claim.yaml

  # JSON for scripts
  insurance-assistant assess --plan star-health-gold --facts claim.json --output json`,
	RunE: runAssess,
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().StringVarP(&assessFlags.plan, "plan", "p", "", "plan ID or name (required)")
	assessCmd.Flags().StringVarP(&assessFlags.facts, "facts", "f", "", "claim facts file, JSON or YAML (required)")
	assessCmd.Flags().StringVarP(&assessFlags.output, "output", "o", "text", "output format: text, json, yaml")
}

// assessment is the report printed by the assess command.
type assessment struct {
	Plan           plans.Summary           `json:"plan" yaml:"plan"`
	MissingFields  []string                `json:"missing_fields,omitempty" yaml:"missing_fields,omitempty"`
	Result         *eligibility.Result     `json:"result" yaml:"result"`
	Analysis       *planintel.Analysis     `json:"analysis" yaml:"analysis"`
	Clarifications []clarify.Clarification `json:"clarifications,omitempty" yaml:"clarifications,omitempty"`
}

// Text renders the report for a terminal.
func (a *assessment) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Plan: %s (%s)\n", a.Plan.Label(), a.Plan.ID)
	if len(a.MissingFields) > 0 {
		fmt.Fprintf(&sb, "Missing facts: %s\n", strings.Join(a.MissingFields, ", "))
	}
	sb.WriteString("\n")
	sb.WriteString(collaborator.Narration(a.Result, a.Analysis))
	if len(a.Clarifications) > 0 {
		sb.WriteString("\n\nOpen questions:\n")
		for _, c := range a.Clarifications {
			fmt.Fprintf(&sb, "- [%s] %s\n", c.Priority, c.Question)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func runAssess(cmd *cobra.Command, args []string) error {
	if assessFlags.plan == "" {
		return fmt.Errorf("--plan must be specified")
	}
	if assessFlags.facts == "" {
		return fmt.Errorf("--facts must be specified")
	}
	format, err := cli.ParseFormat(assessFlags.output)
	if err != nil {
		return err
	}
	formatter, err := cli.NewFormatter(format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	facts, err := readFacts(assessFlags.facts)
	if err != nil {
		return cli.NewCommandError("assess", err)
	}

	manager, err := loadPlans(context.Background(), cfg, logger)
	if err != nil {
		return cli.NewCommandError("assess", err)
	}
	doc, err := findPlan(manager, assessFlags.plan)
	if err != nil {
		return cli.NewCommandError("assess", err)
	}

	engine, clarifier, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	report := assess(engine, clarifier, planintel.NewAnalyzer(logger), facts, doc)
	return formatter.FormatTo(stdout(cmd), report)
}

// assess evaluates facts against doc.
func assess(engine *eligibility.Engine, clarifier *clarify.Generator, analyzer *planintel.Analyzer, facts claim.Facts, doc *policydoc.Document) *assessment {
	result := engine.Evaluate(facts, doc)
	return &assessment{
		Plan:           plans.Summary{ID: doc.ID(), Company: doc.Company(), PlanName: doc.PlanName()},
		MissingFields:  facts.Missing(claim.RequiredFields),
		Result:         result,
		Analysis:       analyzer.Analyze(facts.Condition(), doc),
		Clarifications: clarifier.Generate(facts, doc, result),
	}
}

// findPlan looks a plan up by ID, then by name.
func findPlan(repo plans.Repository, ref string) (*policydoc.Document, error) {
	doc, err := repo.Get(ref)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, plans.ErrPlanNotFound) {
		return nil, err
	}
	if doc, ok := repo.Resolve(ref); ok {
		return doc, nil
	}
	return nil, err
}

// readFacts decodes a JSON or YAML facts file and validates it.
func readFacts(path string) (claim.Facts, error) {
	var facts claim.Facts

	data, err := os.ReadFile(path)
	if err != nil {
		return facts, fmt.Errorf("failed to read facts file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &facts)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &facts)
	default:
		return facts, fmt.Errorf("unsupported facts file %q: expected .json, .yaml or .yml", path)
	}
	if err != nil {
		return facts, fmt.Errorf("failed to parse facts file %s: %w", path, err)
	}

	if err := facts.Validate(); err != nil {
		return facts, fmt.Errorf("invalid facts in %s: %w", path, err)
	}
	return facts, nil
}
