package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"ascend/internal/bootstrap"
	"ascend/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "ascend",
		Short:         "Missions, focus sessions, workouts and progression",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", defaultDataDir(), "data directory (journal notes live here, state under .ascend/)")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newMissionCmd(&dataDir))
	root.AddCommand(newRoutineCmd(&dataDir))
	root.AddCommand(newFocusCmd(&dataDir))
	root.AddCommand(newWorkoutCmd(&dataDir))
	root.AddCommand(newSessionCmd(&dataDir))
	root.AddCommand(newLedgerCmd(&dataDir))
	root.AddCommand(newStatsCmd(&dataDir))
	root.AddCommand(newSuggestCmd(&dataDir))
	root.AddCommand(newQuizCmd(&dataDir))
	return root
}

func defaultDataDir() string {
	if dir := os.Getenv("ASCEND_DATA"); dir != "" {
		return dir
	}
	return "."
}

func loadApp(dataDir string) (*bootstrap.App, error) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, bootstrap.Options{LogOutput: os.Stderr, Console: true})
}

// withApp opens the application for one command and closes it afterwards.
func withApp(dataDir string, fn func(app *bootstrap.App) error) (err error) {
	app, err := loadApp(dataDir)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, app.Close())
	}()
	return fn(app)
}

// withSessionApp is withApp after resolving a session left behind by an
// earlier process.
func withSessionApp(ctx context.Context, dataDir string, fn func(app *bootstrap.App) error) error {
	return withApp(dataDir, func(app *bootstrap.App) error {
		rec, err := app.SessionCLI.Reconcile(ctx)
		if err != nil {
			return fmt.Errorf("recover session: %w", err)
		}
		if rec.Outcome != "none" && rec.Outcome != "attached" {
			app.Logger.Info().Str("outcome", rec.Outcome).Str("session_id", rec.SessionID).Str("kind", rec.Kind).Msg("session recovered")
		}
		return fn(app)
	})
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*dataDir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
				return fmt.Errorf("create state dir: %w", err)
			}
			logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logFile.Close()
			// The alternate screen owns the terminal, so logs go to a file.
			app, err := bootstrap.New(cfg, bootstrap.Options{LogOutput: logFile})
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.RunTUI(cmd.Context(), app)
		},
	}
}
