package usecase

import (
	"strings"
	"time"

	missiondomain "ascend/internal/modules/mission/domain"
	"ascend/internal/modules/session/domain"
	sessiondto "ascend/internal/modules/session/dto"
)

// timeUnit re-anchors snapshots read from another process; only elapsed
// totals are read from them.
const timeUnit = time.Second

func missionDifficulty(raw string) missiondomain.Difficulty {
	return missiondomain.Difficulty(strings.ToLower(strings.TrimSpace(raw)))
}

func toSessionOutput(v domain.View) sessiondto.SessionOutput {
	out := sessiondto.SessionOutput{
		SessionID:    v.SessionID,
		Kind:         string(v.Kind),
		TargetID:     v.TargetID,
		TargetTitle:  v.TargetTitle,
		StartedAt:    v.StartedAt,
		Elapsed:      v.Elapsed,
		Volume:       v.Volume,
		Finalizing:   v.Finalizing,
		FeedbackOpen: v.Feedback != nil,
	}
	if v.Focus != nil {
		out.FocusState = string(v.Focus.State)
		out.FocusRemaining = v.Focus.Remaining
	}
	if v.Rest != nil {
		out.Resting = true
		out.RestRemaining = v.Rest.Remaining
	}
	if v.Plan != nil {
		for _, ex := range v.Plan.Exercises {
			progress := sessiondto.ExerciseProgress{ID: ex.ID, Name: ex.Name, TargetSets: ex.TargetSets}
			for _, s := range v.Sets[ex.ID] {
				progress.Sets = append(progress.Sets, sessiondto.SetOutput{Weight: s.Weight, Reps: s.Reps})
			}
			out.Exercises = append(out.Exercises, progress)
		}
	}
	return out
}

func toLogOutput(l domain.WorkoutLog) sessiondto.WorkoutLogOutput {
	return sessiondto.WorkoutLogOutput{
		ID:              l.ID,
		RoutineID:       l.RoutineID,
		RoutineName:     l.RoutineName,
		TotalVolume:     l.TotalVolume,
		DurationMinutes: l.DurationMinutes,
		LoggedAt:        l.LoggedAt,
	}
}
