package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aitp-mods/answerbot/internal/engine"
	"github.com/aitp-mods/answerbot/internal/platform"
	"github.com/aitp-mods/answerbot/internal/recency"
	"github.com/aitp-mods/answerbot/internal/reddit"
	"github.com/aitp-mods/answerbot/internal/store"
	"github.com/aitp-mods/answerbot/internal/sweep"
)

// transientBackoff is the fixed pause after a transient platform
// failure before the cycle restarts from the top.
const transientBackoff = 10 * time.Second

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the polling workflow",
		Long: `Start the long-running polling workflow.

Each cycle fetches new submissions, prompts their authors, sweeps
tracked records for time-based removals and pruning, and drains the
inbox for answers. Transient platform failures abort the cycle, back
off 10 seconds, and restart it; the process runs until terminated.

Example:
  answerbot run --settings ./answerbot.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(rootOpts)
		},
	}

	return cmd
}

func runWorkflow(opts *RootOptions) error {
	settings, err := LoadSettings(opts.Settings)
	if err != nil {
		return err
	}

	pol, err := LoadPolicy(settings)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	creds, err := LoadCredentials()
	if err != nil {
		return err
	}

	slog.Info("opening database", "path", settings.Database)
	st, err := store.Open(settings.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	client := reddit.NewClient(creds, pol.Community)
	cache := recency.New(settings.CacheSize)
	runner := sweep.NewRunner(client, st, cache, pol, engine.SystemClock{})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("workflow starting",
		"community", pol.Community,
		"bot_user", pol.BotUser,
		"poll_interval", settings.PollInterval,
	)

	for {
		err := runner.Cycle(ctx)
		switch {
		case err == nil:
			// Cycle complete; sleep until the next one.
			select {
			case <-ctx.Done():
				slog.Info("workflow stopping", "reason", ctx.Err())
				return nil
			case <-time.After(settings.PollInterval):
			}

		case ctx.Err() != nil:
			slog.Info("workflow stopping", "reason", ctx.Err())
			return nil

		case platform.IsTransient(err):
			slog.Error("transient platform error, backing off",
				"error", err,
				"backoff", transientBackoff,
			)
			select {
			case <-ctx.Done():
				slog.Info("workflow stopping", "reason", ctx.Err())
				return nil
			case <-time.After(transientBackoff):
			}

		default:
			// Cycle only surfaces transient errors by contract; anything
			// else is a bug worth crashing on.
			return fmt.Errorf("cycle failed: %w", err)
		}
	}
}
