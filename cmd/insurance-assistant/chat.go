package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/cli"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/collaborator"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/config"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/conversation"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/plans"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/session"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/telemetry/health"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/telemetry/metrics"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/telemetry/tracing"
)

const healthCheckTimeout = 5 * time.Second

var chatFlags struct {
	plan    string
	session string
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive claim assessment",
	Long: `Start an interactive claim assessment on the terminal.

The assistant asks for the plan and the facts of the claim, evaluates it and
answers follow-up questions. Type "exit" or press Ctrl+D to quit.

When configured, the command also watches the plan directory, sweeps idle
sessions, persists sessions to SQLite and serves metrics and health endpoints.

Examples:
  # Start a new conversation
  insurance-assistant chat

  # Start with a plan already chosen
  insurance-assistant chat --plan star-health-gold

  # Resume a persisted session
  insurance-assistant chat --session 3f2a...`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&chatFlags.plan, "plan", "p", "", "plan ID to assess the claim under")
	chatCmd.Flags().StringVarP(&chatFlags.session, "session", "s", "", "session ID to resume")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	out := stdout(cmd)

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.Tracing.Timeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	manager, err := loadPlans(ctx, cfg, logger, plans.WithReloadObserver(collector.RecordPlanReload))
	if manager == nil {
		return err
	}
	defer manager.Close()
	if err != nil {
		// The conversation tells the user no plans are available.
		logger.Warn("starting without plans", "error", err)
	} else {
		fmt.Fprintf(out, "✓ Plans loaded (%d plans)\n", manager.Registry().Count())
	}
	if err := manager.Watch(ctx); err != nil {
		logger.Warn("plan hot reload disabled", "error", err)
	}

	checker := health.New(healthCheckTimeout)
	checker.RegisterCheck("plans", health.PlansCheck(manager.Registry().Count, manager.LastLoadError))

	store, closeStore, err := newSessionStore(ctx, cfg.Sessions, logger, checker)
	if err != nil {
		return err
	}
	defer closeStore()

	sweeper := session.NewSweeper(store, cfg.Sessions.SweepSchedule,
		session.WithSweepObserver(collector.RecordEvictions))
	if err := sweeper.Start(ctx); err != nil {
		return cli.NewConfigError("sessions.sweep_schedule", err.Error())
	}
	defer sweeper.Stop()

	if collector.Enabled() {
		addr, path := cfg.Telemetry.Metrics.Address, cfg.Telemetry.Metrics.Path
		go func() {
			if err := collector.Serve(ctx, addr, path, logger, checker.Mount); err != nil {
				logger.Error("metrics endpoint failed", "error", err)
			}
		}()
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", addr, path)
		fmt.Fprintf(out, "✓ Health endpoint: http://%s/health\n", addr)
	}

	collab, err := collaborator.New(cfg.Collaborator, logger,
		collaborator.WithObserver(collector),
		collaborator.WithTracer(tracer.OTel()),
	)
	if err != nil {
		return cli.NewConfigError("collaborator", err.Error())
	}

	engine, clarifier, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	machine, err := conversation.New(store, manager, engine,
		conversation.WithCollaborator(collab),
		conversation.WithClarifier(clarifier),
		conversation.WithMetrics(collector),
		conversation.WithTracer(tracer.OTel()),
		conversation.WithLogger(logger),
		conversation.WithTranscriptLimit(cfg.Sessions.TranscriptLimit),
	)
	if err != nil {
		return cli.NewCommandError("chat", err)
	}

	fmt.Fprintln(out, "Type \"exit\" to quit.")
	fmt.Fprintln(out)
	if err := chatLoop(ctx, machine, chatFlags.session, chatFlags.plan, stdin(cmd), out); err != nil {
		return cli.NewCommandError("chat", err)
	}
	return nil
}

// newSessionStore creates the in-memory session store, backed by SQLite
// snapshots when enabled. The returned func releases the snapshot database.
func newSessionStore(ctx context.Context, cfg config.SessionsConfig, logger *slog.Logger, checker *health.Checker) (*session.MemoryStore, func(), error) {
	opts := []session.StoreOption{
		session.WithTTL(cfg.TTL),
		session.WithStoreLogger(logger),
	}
	if !cfg.Snapshots.Enabled {
		return session.NewMemoryStore(opts...), func() {}, nil
	}

	snapshots, err := session.NewSQLiteSnapshotsWithConfig(session.SQLiteConfig{
		Path:               cfg.Snapshots.Path,
		CheckpointInterval: cfg.Snapshots.CheckpointInterval,
		BusyTimeout:        cfg.Snapshots.BusyTimeout,
	})
	if err != nil {
		return nil, nil, cli.NewCommandError("chat", fmt.Errorf("failed to open session snapshots: %w", err))
	}
	checker.RegisterOptional("sessions", health.PingCheck(snapshots))

	store := session.NewMemoryStore(append(opts, session.WithSnapshots(snapshots))...)
	restored, err := store.Restore(ctx)
	if err != nil {
		logger.Warn("failed to restore sessions", "path", cfg.Snapshots.Path, "error", err)
	} else if restored > 0 {
		logger.Info("sessions restored", "count", restored)
	}

	return store, func() {
		if err := snapshots.Close(); err != nil {
			logger.Warn("failed to close session snapshots", "error", err)
		}
	}, nil
}

// chatLoop feeds input lines to the machine until EOF, "exit" or
// cancellation of ctx.
func chatLoop(ctx context.Context, m *conversation.Machine, sessionID, planID string, in io.Reader, out io.Writer) error {
	// A new conversation, or one with a plan chosen on the command line,
	// opens with the assistant's prompt.
	if sessionID == "" || planID != "" {
		resp := m.Handle(ctx, conversation.Request{SessionID: sessionID, PlanID: planID})
		printResponse(out, resp)
		sessionID = resp.SessionID
	} else {
		fmt.Fprintf(out, "Resuming session %s.\n", sessionID)
	}

	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		fmt.Fprint(out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				select {
				case err := <-errCh:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if isExit(line) {
				fmt.Fprintf(out, "Goodbye. Your session ID is %s.\n", sessionID)
				return nil
			}
			resp := m.Handle(ctx, conversation.Request{SessionID: sessionID, Utterance: line})
			sessionID = resp.SessionID
			printResponse(out, resp)
		}
	}
}

func isExit(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}

func printResponse(w io.Writer, resp *conversation.Response) {
	fmt.Fprintln(w, resp.Message)
	if len(resp.Suggestions) > 0 {
		fmt.Fprintf(w, "  [%s]\n", strings.Join(resp.Suggestions, " | "))
	}
	fmt.Fprintln(w)
}
