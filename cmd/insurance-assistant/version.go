package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including Git commit and build date.`,
	Run: func(cmd *cobra.Command, args []string) {
		w := stdout(cmd)
		fmt.Fprintf(w, "Insurance Assistant %s\n", version.Version)
		fmt.Fprintf(w, "Git Commit: %s\n", version.GitCommit)
		fmt.Fprintf(w, "Build Date: %s\n", version.BuildDate)
		fmt.Fprintf(w, "Go Version: %s\n", runtime.Version())
		fmt.Fprintf(w, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
