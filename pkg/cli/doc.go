/*
Package cli provides command-line helpers for the insurance-assistant
command.

Output Formatting:

Command results can be printed as text, JSON or YAML:

	formatter, err := cli.NewFormatter(cli.FormatJSON)
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Values implementing Texter control their own text rendering.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Errors:

ConfigError and CommandError wrap failures for reporting; ExitCode maps
them to the process exit status.
*/
package cli
