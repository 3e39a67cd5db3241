package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"ascend/internal/bootstrap"
)

func newSuggestCmd(dataDir *string) *cobra.Command {
	var (
		categories []string
		count      int
		accept     int
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Ask the configured generator for mission ideas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				res, err := app.SuggestCLI.Suggest(cmd.Context(), categories, count)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(res.Candidates) == 0 {
					_, _ = fmt.Fprintln(out, "no suggestions")
					return nil
				}
				for i, c := range res.Candidates {
					_, _ = fmt.Fprintf(out, "%d. [%s/%s] %s\n", i+1, c.Category, c.Priority, c.Title)
					if c.Rationale != "" {
						_, _ = fmt.Fprintf(out, "   %s\n", c.Rationale)
					}
				}
				_, _ = fmt.Fprintf(out, "source: %s\n", res.Source)
				if accept == 0 {
					return nil
				}
				if accept < 0 || accept > len(res.Candidates) {
					return fmt.Errorf("--accept must be between 1 and %d", len(res.Candidates))
				}
				m, err := app.SuggestCLI.Accept(cmd.Context(), res.Candidates[accept-1])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "planned %s\t%s\n", m.ID, m.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&categories, "category", nil, "restrict to categories (repeatable)")
	cmd.Flags().IntVar(&count, "count", 0, "number of suggestions (default 3)")
	cmd.Flags().IntVar(&accept, "accept", 0, "plan the n-th suggestion as a mission")
	return cmd
}

func newQuizCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "quiz <concept>",
		Short: "Generate a practice question on a concept",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataDir, func(app *bootstrap.App) error {
				q, err := app.SuggestCLI.Quiz(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(out, q.Prompt)
				for i, opt := range q.Options {
					marker := " "
					if i == q.CorrectIndex {
						marker = "*"
					}
					_, _ = fmt.Fprintf(out, "%s %d) %s\n", marker, i+1, opt)
				}
				if q.Explanation != "" {
					_, _ = fmt.Fprintf(out, "\n%s\n", q.Explanation)
				}
				return nil
			})
		},
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
