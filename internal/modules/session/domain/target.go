package domain

import (
	"fmt"
	"strings"

	progressiondomain "ascend/internal/modules/progression/domain"
	timerdomain "ascend/internal/modules/timer/domain"
	apperrors "ascend/internal/platform/errors"
)

type Kind string

const (
	KindMission Kind = "mission"
	KindWorkout Kind = "workout"
)

type kindProfile struct {
	timerMode timerdomain.Mode
	award     progressiondomain.Kind
}

var profiles = map[Kind]kindProfile{
	KindMission: {timerMode: timerdomain.ModeCountdown, award: progressiondomain.KindMission},
	KindWorkout: {timerMode: timerdomain.ModeStopwatch, award: progressiondomain.KindWorkout},
}

func (k Kind) Validate() error {
	if _, ok := profiles[k]; !ok {
		return apperrors.Invalid("kind", "unsupported session kind %q", string(k))
	}
	return nil
}

// TimerMode is the primary timer a session of this kind runs.
func (k Kind) TimerMode() timerdomain.Mode { return profiles[k].timerMode }

// AwardKind is the ledger award earned when a session of this kind completes.
func (k Kind) AwardKind() progressiondomain.Kind { return profiles[k].award }

type PlannedExercise struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TargetSets int    `json:"target_sets"`
}

type RoutinePlan struct {
	RoutineID string            `json:"routine_id"`
	Name      string            `json:"name"`
	Exercises []PlannedExercise `json:"exercises"`
}

// Target is what a session works on. Exactly one payload is set, matching
// Kind.
type Target struct {
	Kind    Kind
	Mission *MissionRef
	Routine *RoutinePlan
}

type MissionRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func MissionTarget(id, title string) Target {
	return Target{Kind: KindMission, Mission: &MissionRef{ID: id, Title: title}}
}

func WorkoutTarget(plan RoutinePlan) Target {
	return Target{Kind: KindWorkout, Routine: &plan}
}

func (t Target) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	switch t.Kind {
	case KindMission:
		if t.Mission == nil || t.Routine != nil {
			return fmt.Errorf("mission target must carry only a mission: %w", apperrors.ErrInvalidInput)
		}
		if strings.TrimSpace(t.Mission.ID) == "" {
			return apperrors.Invalid("mission_id", "is required")
		}
	case KindWorkout:
		if t.Routine == nil || t.Mission != nil {
			return fmt.Errorf("workout target must carry only a routine: %w", apperrors.ErrInvalidInput)
		}
		if strings.TrimSpace(t.Routine.RoutineID) == "" {
			return apperrors.Invalid("routine_id", "is required")
		}
		if len(t.Routine.Exercises) == 0 {
			return apperrors.Invalid("exercises", "routine has no exercises")
		}
		for _, ex := range t.Routine.Exercises {
			if ex.TargetSets < 1 {
				return apperrors.Invalid("target_sets", "must be at least 1 for %s", ex.ID)
			}
		}
	}
	return nil
}

func (t Target) ID() string {
	if t.Kind == KindMission && t.Mission != nil {
		return t.Mission.ID
	}
	if t.Routine != nil {
		return t.Routine.RoutineID
	}
	return ""
}

func (t Target) Title() string {
	if t.Kind == KindMission && t.Mission != nil {
		return t.Mission.Title
	}
	if t.Routine != nil {
		return t.Routine.Name
	}
	return ""
}
