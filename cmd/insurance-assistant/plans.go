package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/cli"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/plans"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Inspect and prepare plan documents",
	Long: `Commands for working with insurance plan documents.

Subcommands:
  list  - List the plans found in the configured plan source
  merge - Combine plan JSON files into one document`,
}

var plansListFlags struct {
	output string
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded plans",
	Long: `List the plans in the configured plan directory or git repository,
with their IDs, companies and plan names.

Examples:
  insurance-assistant plans list
  insurance-assistant plans list --output json`,
	RunE: listPlans,
}

var plansMergeFlags struct {
	dir  string
	out  string
	mode string
}

var plansMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge plan JSON files",
	Long: `Merge the JSON files of a directory into one document.

Modes:
  list   - Collect every file into a JSON array (default)
  object - Merge top-level objects key by key; array files are appended
           under "merged_list"

Files that are not valid JSON are skipped with a warning.

Examples:
  insurance-assistant plans merge --dir plans/ --out merged.json
  insurance-assistant plans merge --dir plans/ --out merged.json --mode object`,
	RunE: mergePlans,
}

func init() {
	rootCmd.AddCommand(plansCmd)
	plansCmd.AddCommand(plansListCmd)
	plansCmd.AddCommand(plansMergeCmd)

	plansListCmd.Flags().StringVarP(&plansListFlags.output, "output", "o", "text", "output format: text, json, yaml")

	plansMergeCmd.Flags().StringVarP(&plansMergeFlags.dir, "dir", "d", "", "directory of plan JSON files (required)")
	plansMergeCmd.Flags().StringVar(&plansMergeFlags.out, "out", "", "output file (required)")
	plansMergeCmd.Flags().StringVar(&plansMergeFlags.mode, "mode", "list", "merge mode: list, object")
}

// planList is the output of plans list.
type planList struct {
	Plans []plans.Summary `json:"plans" yaml:"plans"`
}

func (l planList) Text() string {
	if len(l.Plans) == 0 {
		return "No plans loaded"
	}
	width := len("ID")
	for _, p := range l.Plans {
		if len(p.ID) > width {
			width = len(p.ID)
		}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s  %s\n", width, "ID", "PLAN")
	for _, p := range l.Plans {
		fmt.Fprintf(&sb, "%-*s  %s\n", width, p.ID, p.Label())
	}
	fmt.Fprintf(&sb, "\n%d plan(s)", len(l.Plans))
	return sb.String()
}

func listPlans(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(plansListFlags.output)
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

	manager, err := loadPlans(context.Background(), cfg, logger)
	if err != nil {
		return cli.NewCommandError("plans list", err)
	}
	return formatter.FormatTo(stdout(cmd), planList{Plans: manager.List()})
}

func mergePlans(cmd *cobra.Command, args []string) error {
	if plansMergeFlags.dir == "" {
		return fmt.Errorf("--dir must be specified")
	}
	if plansMergeFlags.out == "" {
		return fmt.Errorf("--out must be specified")
	}
	mode, err := plans.ParseMergeMode(plansMergeFlags.mode)
	if err != nil {
		return err
	}

	result, err := plans.MergeDirectory(plansMergeFlags.dir, mode, slog.Default())
	if err != nil {
		return cli.NewCommandError("plans merge", err)
	}
	if err := plans.WriteMerged(plansMergeFlags.out, result.Merged); err != nil {
		return cli.NewCommandError("plans merge", err)
	}

	w := stdout(cmd)
	for _, s := range result.Skipped {
		fmt.Fprintf(w, "⚠ Skipped %s: %v\n", s.Path, s.Err)
	}
	fmt.Fprintf(w, "✓ Merged %d file(s) into %s (%s mode)\n", result.Files, plansMergeFlags.out, mode)
	return nil
}
