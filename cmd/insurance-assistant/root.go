package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/cli"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/version"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "insurance-assistant",
	Short: "Insurance Assistant - health insurance claim eligibility checker",
	Long: `Insurance Assistant checks whether a health insurance claim is payable
under a plan and explains why.

It guides the claimant through the facts a claim needs and evaluates them
against the plan document:
  - Initial, pre-existing disease and condition-specific waiting periods
  - Sub-limits and the sum insured
  - Plan and senior citizen co-pay
  - Accident claims and exclusions

Plans are read from a directory of JSON or YAML files, or from a git repository.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the error's exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// stdout is where a command writes its results. Commands invoked without a
// cobra.Command, as in tests, write to os.Stdout.
func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func stdin(cmd *cobra.Command) io.Reader {
	if cmd == nil {
		return os.Stdin
	}
	return cmd.InOrStdin()
}
