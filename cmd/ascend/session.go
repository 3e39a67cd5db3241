package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ascend/internal/bootstrap"
	sessiondto "ascend/internal/modules/session/dto"
	sessionview "ascend/internal/ui/views/session"
)

func newFocusCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "focus <mission-id>",
		Short: "Run a focus session on a mission in the foreground",
		Long:  "Runs the focus countdown. Type p to pause or resume, r to reset, d to finish early, q to abandon.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSessionApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				return runFocus(cmd, app, args[0])
			})
		},
	}
}

func runFocus(cmd *cobra.Command, app *bootstrap.App, missionID string) error {
	ctx := cmd.Context()
	view, err := app.SessionCLI.Status(ctx)
	switch {
	case err == nil && view.Kind == "mission" && view.TargetID == missionID && !view.Detached:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "resuming focus on %s\n", view.TargetTitle)
	default:
		view, err = app.SessionCLI.Focus(ctx, missionID)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "focus on %s for %s\n", view.TargetTitle, sessionview.Clock(view.FocusRemaining))
	}

	lines := readLines(cmd.InOrStdin())
	metricsCtx, stopMetrics := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(metricsCtx)
	g.Go(func() error { return app.ServeMetrics(gctx) })
	g.Go(func() error {
		defer stopMetrics()
		return focusLoop(gctx, cmd.OutOrStdout(), app, lines)
	})
	return g.Wait()
}

func focusLoop(ctx context.Context, out io.Writer, app *bootstrap.App, lines <-chan string) error {
	ticker := time.NewTicker(app.Config.TickUnit)
	defer ticker.Stop()
	for {
		var (
			view sessiondto.SessionOutput
			err  error
		)
		select {
		case <-ctx.Done():
			_, _ = fmt.Fprintln(out)
			return abandonFocus(out, app)
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			switch strings.TrimSpace(strings.ToLower(line)) {
			case "p":
				view, err = app.SessionCLI.Status(ctx)
				if err == nil && view.FocusState == "running" {
					view, err = app.SessionCLI.PauseFocus(ctx)
				} else if err == nil {
					view, err = app.SessionCLI.ResumeFocus(ctx)
				}
			case "r":
				view, err = app.SessionCLI.ResetFocus(ctx)
			case "d":
				view, err = app.SessionCLI.CompleteFocus(ctx)
			case "q":
				return abandonFocus(out, app)
			default:
				continue
			}
			if err != nil {
				_, _ = fmt.Fprintf(out, "\n%v\n", err)
				continue
			}
		case <-ticker.C:
			var ok bool
			view, ok = app.SessionCLI.Tick(ctx)
			if !ok {
				return fmt.Errorf("focus session ended")
			}
		}
		if view.FeedbackOpen {
			_, _ = fmt.Fprintln(out)
			return captureFeedback(ctx, out, app, lines)
		}
		_, _ = fmt.Fprintf(out, "\r%s  %-8s", sessionview.Clock(view.FocusRemaining), view.FocusState)
	}
}

func abandonFocus(out io.Writer, app *bootstrap.App) error {
	// The command context is already cancelled here.
	if err := app.SessionCLI.Abandon(context.Background()); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "session abandoned")
	return nil
}

// captureFeedback asks for difficulty and energy. Closing stdin or
// interrupting dismisses the prompt and returns the mission to planned.
func captureFeedback(ctx context.Context, out io.Writer, app *bootstrap.App, lines <-chan string) error {
	dismiss := func() error {
		if err := app.SessionCLI.DismissFeedback(context.Background()); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, "feedback dismissed, mission returned to planned")
		return nil
	}

	var difficulty string
	for difficulty == "" {
		_, _ = fmt.Fprint(out, "difficulty [easy/normal/hard] (normal): ")
		line, ok := nextLine(ctx, lines)
		if !ok {
			return dismiss()
		}
		switch v := strings.ToLower(strings.TrimSpace(line)); v {
		case "":
			difficulty = "normal"
		case "easy", "normal", "hard":
			difficulty = v
		}
	}

	energy := 0
	for energy == 0 {
		_, _ = fmt.Fprint(out, "energy after, 1-10 (5): ")
		line, ok := nextLine(ctx, lines)
		if !ok {
			return dismiss()
		}
		line = strings.TrimSpace(line)
		if line == "" {
			energy = 5
			continue
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= 10 {
			energy = n
		}
	}

	res, err := app.SessionCLI.SubmitFeedback(ctx, difficulty, energy)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "completed %s\n", res.Mission.Title)
	_, _ = fmt.Fprintf(out, "xp %d (%s)\n", res.Ledger.Experience, res.Ledger.Rank)
	return nil
}

func nextLine(ctx context.Context, lines <-chan string) (string, bool) {
	if lines == nil {
		return "", false
	}
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lines:
		return line, ok
	}
}

// readLines feeds r line by line into the returned channel, closing it at EOF.
func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			ch <- scanner.Text()
		}
	}()
	return ch
}

func newWorkoutCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{Use: "workout", Short: "Run and log workout sessions"}

	startCmd := &cobra.Command{
		Use:   "start <routine-id>",
		Short: "Start a workout on a routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSessionApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				view, err := app.SessionCLI.StartWorkout(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}

	var (
		weight float64
		reps   int
	)
	logCmd := &cobra.Command{
		Use:   "log <exercise-id> <set>",
		Short: "Record weight and reps for a set (sets are numbered from 1)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := strconv.Atoi(args[1])
			if err != nil || set < 1 {
				return fmt.Errorf("set must be a positive number, got %q", args[1])
			}
			weightSet, repsSet := cmd.Flags().Changed("weight"), cmd.Flags().Changed("reps")
			if !weightSet && !repsSet {
				return fmt.Errorf("--weight or --reps is required")
			}
			return withSessionApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				var view sessiondto.SessionOutput
				switch {
				case weightSet && repsSet:
					view, err = app.SessionCLI.LogSetPair(cmd.Context(), args[0], set-1, weight, reps)
				case weightSet:
					view, err = app.SessionCLI.LogSet(cmd.Context(), args[0], set-1, "weight", weight)
				default:
					view, err = app.SessionCLI.LogSet(cmd.Context(), args[0], set-1, "reps", float64(reps))
				}
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
	logCmd.Flags().Float64Var(&weight, "weight", 0, "weight lifted")
	logCmd.Flags().IntVar(&reps, "reps", 0, "repetitions")

	finishCmd := &cobra.Command{
		Use:   "finish",
		Short: "Finish the workout, write its journal note and award xp",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSessionApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				res, err := app.SessionCLI.FinishWorkout(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "%s: %s volume in %d min\n", res.RoutineName, sessionview.FormatWeight(res.TotalVolume), res.DurationMinutes)
				if res.JournalPath != "" {
					_, _ = fmt.Fprintf(out, "journal: %s\n", res.JournalPath)
				}
				printAward(cmd, res.Ledger.Applied, res.Ledger.Experience, res.Ledger.Rank)
				return nil
			})
		},
	}

	abandonCmd := &cobra.Command{
		Use:   "abandon",
		Short: "Discard the active workout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return abandonActive(cmd, *dataDir)
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active workout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showStatus(cmd, *dataDir)
		},
	}

	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List finished workouts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				logs, err := app.SessionCLI.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				for _, l := range logs {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d min\n", l.LoggedAt.Local().Format(time.DateTime), l.RoutineName, sessionview.FormatWeight(l.TotalVolume), l.DurationMinutes)
				}
				return nil
			})
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "max workouts to show")

	cmd.AddCommand(startCmd, logCmd, finishCmd, abandonCmd, statusCmd, historyCmd)
	return cmd
}

func newSessionCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{Use: "session", Short: "Inspect or recover the active session"}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showStatus(cmd, *dataDir)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "abandon",
		Short: "Abandon the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return abandonActive(cmd, *dataDir)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reconcile",
		Short: "Resolve a session left behind by an earlier run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				rec, err := app.SessionCLI.Reconcile(cmd.Context())
				if err != nil {
					return err
				}
				if rec.SessionID == "" {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), rec.Outcome)
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", rec.Outcome, rec.SessionID, rec.Kind, rec.TargetID)
				return nil
			})
		},
	})
	return cmd
}

func showStatus(cmd *cobra.Command, dataDir string) error {
	return withSessionApp(cmd.Context(), dataDir, func(app *bootstrap.App) error {
		view, err := app.SessionCLI.Status(cmd.Context())
		if err != nil {
			return err
		}
		printSession(cmd.OutOrStdout(), view)
		return nil
	})
}

func abandonActive(cmd *cobra.Command, dataDir string) error {
	return withSessionApp(cmd.Context(), dataDir, func(app *bootstrap.App) error {
		if err := app.SessionCLI.Abandon(cmd.Context()); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "session abandoned")
		return nil
	})
}

func printSession(out io.Writer, v sessiondto.SessionOutput) {
	_, _ = fmt.Fprintf(out, "%s session %s on %s", v.Kind, v.SessionID, v.TargetTitle)
	if v.Detached {
		_, _ = fmt.Fprint(out, " (held by another process)")
	}
	_, _ = fmt.Fprintf(out, "\nelapsed: %s\n", sessionview.Clock(v.Elapsed))
	if v.Kind == "mission" {
		_, _ = fmt.Fprintf(out, "focus: %s remaining (%s)\n", sessionview.Clock(v.FocusRemaining), v.FocusState)
		return
	}
	if v.Resting {
		_, _ = fmt.Fprintf(out, "rest: %s\n", sessionview.Clock(v.RestRemaining))
	}
	for _, ex := range v.Exercises {
		sets := make([]string, 0, len(ex.Sets))
		for _, s := range ex.Sets {
			if s.Reps == 0 && s.Weight == 0 {
				sets = append(sets, "-")
				continue
			}
			sets = append(sets, fmt.Sprintf("%sx%d", sessionview.FormatWeight(s.Weight), s.Reps))
		}
		_, _ = fmt.Fprintf(out, "  %s\t%s\t%s\n", ex.ID, ex.Name, strings.Join(sets, " "))
	}
	_, _ = fmt.Fprintf(out, "volume: %s\n", sessionview.FormatWeight(v.Volume))
}
