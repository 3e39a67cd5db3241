package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ascend/internal/modules/session/domain"
	sessionout "ascend/internal/modules/session/port/out"
	"ascend/internal/platform/markdown"
	"ascend/internal/platform/slug"
)

var setsBlock = markdown.NewBlock("sets")

// VaultLogJournal writes one markdown note per finalized workout under
// <dir>/workouts/YYYY/MM/DD. Rewriting a note only replaces its frontmatter
// and the generated sets block.
type VaultLogJournal struct {
	dir string
}

func NewVaultLogJournal(dir string) sessionout.LogJournal {
	return &VaultLogJournal{dir: dir}
}

func (j *VaultLogJournal) Write(_ context.Context, log domain.WorkoutLog) (string, error) {
	date := log.LoggedAt.UTC()
	dir := filepath.Join(j.dir, "workouts", date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s-%s.md", date.Format("150405"), slug.Make(log.RoutineName), shortID(log.ID))
	path := filepath.Join(dir, name)

	body := fmt.Sprintf("# %s\n\n- Duration: %d minutes\n- Volume: %s\n\n## Notes\n\n", log.RoutineName, log.DurationMinutes, formatNumber(log.TotalVolume))
	if existing, err := os.ReadFile(path); err == nil {
		note, err := markdown.Parse(string(existing))
		if err != nil {
			return "", fmt.Errorf("parse existing workout note: %w", err)
		}
		body = note.Body
	}
	note := markdown.Note{
		Meta: map[string]any{
			"schema_version":   domain.SchemaVersion,
			"id":               log.ID,
			"routine_id":       log.RoutineID,
			"routine":          log.RoutineName,
			"started_at":       log.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			"logged_at":        date.Format("2006-01-02T15:04:05Z07:00"),
			"duration_minutes": log.DurationMinutes,
			"total_volume":     log.TotalVolume,
		},
		Body: setsBlock.Replace(body, renderSets(log)),
	}
	rendered, err := note.Render()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write workout note: %w", err)
	}
	return path, nil
}

func renderSets(log domain.WorkoutLog) string {
	var b strings.Builder
	for i, ex := range log.Exercises {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### %s\n\n| Set | Weight | Reps |\n| --- | --- | --- |\n", ex.Name)
		for n, set := range log.Sets[ex.ID] {
			fmt.Fprintf(&b, "| %d | %s | %d |\n", n+1, formatNumber(set.Weight), set.Reps)
		}
	}
	return b.String()
}

func formatNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
