package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ascend/internal/bootstrap"
	missiondto "ascend/internal/modules/mission/dto"
)

func newMissionCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{Use: "mission", Short: "Manage missions"}

	var (
		category string
		priority string
		planned  string
	)
	addCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a planned mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var plannedDate time.Time
			if planned != "" {
				d, err := time.ParseInLocation(time.DateOnly, planned, time.Local)
				if err != nil {
					return fmt.Errorf("parse --planned: %w", err)
				}
				plannedDate = d
			}
			return withApp(*dataDir, func(app *bootstrap.App) error {
				out, err := app.MissionCLI.Create(cmd.Context(), args[0], category, priority, plannedDate)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\timpact=%d\n", out.ID, out.Title, out.Category, out.Impact)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&category, "category", "", "admin|study|sport|personal|spiritual|language")
	addCmd.Flags().StringVar(&priority, "priority", "medium", "low|medium|high|critical")
	addCmd.Flags().StringVar(&planned, "planned", "", "planned date (YYYY-MM-DD), defaults to today")
	_ = addCmd.MarkFlagRequired("category")

	var (
		statusFilter   string
		categoryFilter string
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List missions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				items, err := app.MissionCLI.List(cmd.Context(), statusFilter, categoryFilter)
				if err != nil {
					return err
				}
				for _, m := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Status, m.Category, m.Priority, m.Title)
				}
				return nil
			})
		},
	}
	listCmd.Flags().StringVar(&statusFilter, "status", "", "planned|in_progress|done")
	listCmd.Flags().StringVar(&categoryFilter, "category", "", "filter by category")

	showCmd := &cobra.Command{
		Use:   "show <mission-id>",
		Short: "Show one mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				m, err := app.MissionCLI.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printMission(cmd, m)
				return nil
			})
		},
	}

	var editTitle, editCategory, editPriority string
	editCmd := &cobra.Command{
		Use:   "edit <mission-id>",
		Short: "Edit a planned mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := missiondto.EditInput{MissionID: args[0]}
			if cmd.Flags().Changed("title") {
				input.Title = &editTitle
			}
			if cmd.Flags().Changed("category") {
				input.Category = &editCategory
			}
			if cmd.Flags().Changed("priority") {
				input.Priority = &editPriority
			}
			return withApp(*dataDir, func(app *bootstrap.App) error {
				m, err := app.MissionCLI.Edit(cmd.Context(), input)
				if err != nil {
					return err
				}
				printMission(cmd, m)
				return nil
			})
		},
	}
	editCmd.Flags().StringVar(&editTitle, "title", "", "new title")
	editCmd.Flags().StringVar(&editCategory, "category", "", "new category")
	editCmd.Flags().StringVar(&editPriority, "priority", "", "new priority")

	doneCmd := &cobra.Command{
		Use:   "done <mission-id>",
		Short: "Complete a planned mission without a focus session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSessionApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				out, err := app.MissionCLI.Done(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "completed %s\n", out.Mission.Title)
				printAward(cmd, out.Ledger.Applied, out.Ledger.Experience, out.Ledger.Rank)
				return nil
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <mission-id>",
		Short: "Delete a mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				if err := app.MissionCLI.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(addCmd, listCmd, showCmd, editCmd, doneCmd, deleteCmd)
	return cmd
}

func printMission(cmd *cobra.Command, m missiondto.MissionOutput) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "id: %s\n", m.ID)
	_, _ = fmt.Fprintf(out, "title: %s\n", m.Title)
	_, _ = fmt.Fprintf(out, "category: %s\n", m.Category)
	_, _ = fmt.Fprintf(out, "priority: %s (impact %d)\n", m.Priority, m.Impact)
	_, _ = fmt.Fprintf(out, "status: %s\n", m.Status)
	_, _ = fmt.Fprintf(out, "planned: %s\n", m.PlannedDate.Format(time.DateOnly))
	if m.CompletedAt != nil {
		_, _ = fmt.Fprintf(out, "completed: %s\n", m.CompletedAt.Local().Format(time.DateTime))
	}
	if m.Difficulty != "" {
		_, _ = fmt.Fprintf(out, "feedback: %s, energy %d/10\n", m.Difficulty, m.EnergyAfter)
	}
}

func printAward(cmd *cobra.Command, applied bool, experience int, rank string) {
	if !applied {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "already awarded")
		return
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "xp %d (%s)\n", experience, rank)
}

func newRoutineCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{Use: "routine", Short: "Manage workout routines"}

	var file string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create or replace a routine from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				r, err := app.RoutineCLI.Import(cmd.Context(), file)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d exercises\n", r.ID, r.Name, len(r.Exercises))
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&file, "file", "", "routine YAML file")
	_ = addCmd.MarkFlagRequired("file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List routines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				items, err := app.RoutineCLI.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, r := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d exercises\n", r.ID, r.Name, len(r.Exercises))
				}
				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <routine-id>",
		Short: "Show one routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				r, err := app.RoutineCLI.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "%s (%s)\n", r.Name, r.ID)
				for _, e := range r.Exercises {
					_, _ = fmt.Fprintf(out, "  %s\t%s\t%d x %d-%d\t%s\n", e.ID, e.Name, e.TargetSets, e.RepMin, e.RepMax, e.MuscleGroup)
				}
				return nil
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <routine-id>",
		Short: "Delete a routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				if err := app.RoutineCLI.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(addCmd, listCmd, showCmd, deleteCmd)
	return cmd
}

func newLedgerCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "Show experience and rank",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				l, err := app.ProgressionCLI.Ledger(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "rank: %s\n", l.Rank)
				_, _ = fmt.Fprintf(out, "xp: %d\n", l.Experience)
				if l.NextRank != "" {
					_, _ = fmt.Fprintf(out, "next: %s at %d xp\n", l.NextRank, l.NextRankAt)
				}
				_, _ = fmt.Fprintf(out, "missions: %d\n", l.MissionsCompleted)
				_, _ = fmt.Fprintf(out, "workouts: %d\n", l.WorkoutsCompleted)
				return nil
			})
		},
	}
}

func newStatsCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show streaks, volume and completion stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				s, err := app.ProgressionCLI.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "rank: %s (%d xp)\n", s.Ledger.Rank, s.Ledger.Experience)
				_, _ = fmt.Fprintf(out, "streak: %d days (longest %d)\n", s.CurrentStreak, s.LongestStreak)
				_, _ = fmt.Fprintf(out, "missions: %d/%d (%.0f%%)\n", s.MissionsDone, s.MissionsTotal, s.CompletionRatio*100)
				_, _ = fmt.Fprintf(out, "volume: %.1f\n", s.TotalVolume)
				for _, c := range sortedKeys(s.CompletedByCategory) {
					_, _ = fmt.Fprintf(out, "  %s: %d\n", c, s.CompletedByCategory[c])
				}
				return nil
			})
		},
	}
}
