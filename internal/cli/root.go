// Package cli holds the runbuddy command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/i474232898/runbuddy/internal/cli/formatter"
	"github.com/i474232898/runbuddy/internal/pipeline"
	"github.com/i474232898/runbuddy/internal/trails"
)

// Answerer is satisfied by *pipeline.Service.
type Answerer interface {
	Answer(ctx context.Context, question string) (pipeline.Answer, error)
}

// App holds what the commands need. Serve and Watch block until ctx ends.
type App struct {
	Answerer Answerer
	Catalog  trails.Catalog
	Serve    func(ctx context.Context) error
	Watch    func(ctx context.Context) error
	Level    *slog.LevelVar
	Out      io.Writer
}

// NewRootCmd creates the top-level "runbuddy" command.
func NewRootCmd(app *App) *cobra.Command {
	if app.Out == nil {
		app.Out = os.Stdout
	}

	var (
		question string
		debug    bool
	)

	root := &cobra.Command{
		Use:           `runbuddy --ask "<question>"`,
		Short:         "Ask where to run",
		Long:          "RunBuddy picks a trail for your run from the weather, your calendar and your trail list.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug && app.Level != nil {
				app.Level.Set(slog.LevelDebug)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if question == "" {
				return errors.New(`nothing to ask; try: runbuddy --ask "Where should I run today at 6:30pm?"`)
			}
			answer, err := app.Answerer.Answer(cmd.Context(), question)
			if err != nil {
				return fmt.Errorf("answering question: %w", err)
			}
			fmt.Fprint(app.Out, formatter.FormatAnswer(answer))
			return nil
		},
	}

	root.Flags().StringVar(&question, "ask", "", "free-form question, e.g. \"Where should I run tomorrow at 7am in Markham?\"")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log debug output, including the payload sent for reasoning")

	root.AddCommand(
		newServeCmd(app),
		newWatchCmd(app),
		newTrailsCmd(app),
	)
	return root
}

// untilSignal runs fn with a context cancelled on SIGINT or SIGTERM.
func untilSignal(parent context.Context, fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return fn(ctx)
}

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return errors.New("serve is not configured")
			}
			return untilSignal(cmd.Context(), app.Serve)
		},
	}
}

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Periodically recommend a trail for the next scheduled run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Watch == nil {
				return errors.New("watch is not configured")
			}
			return untilSignal(cmd.Context(), app.Watch)
		},
	}
}
