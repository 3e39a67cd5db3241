package in

import (
	"context"

	"ascend/internal/modules/session/dto"
)

type Usecase interface {
	EngageMission(ctx context.Context, missionID string) (dto.SessionOutput, error)
	EngageWorkout(ctx context.Context, routineID string) (dto.SessionOutput, error)
	LogSet(ctx context.Context, input dto.LogSetInput) (dto.SessionOutput, error)
	// LogSetPair records weight and reps of one set, or neither.
	LogSetPair(ctx context.Context, input dto.LogSetPairInput) (dto.SessionOutput, error)
	FinalizeWorkout(ctx context.Context) (dto.WorkoutLogOutput, error)
	Abandon(ctx context.Context) error
	Active(ctx context.Context) (dto.SessionOutput, error)
	// Tick advances the active session's timers; false means none is engaged.
	Tick(ctx context.Context) (dto.SessionOutput, bool)

	StartFocus(ctx context.Context) (dto.SessionOutput, error)
	PauseFocus(ctx context.Context) (dto.SessionOutput, error)
	ResetFocus(ctx context.Context) (dto.SessionOutput, error)
	CompleteFocus(ctx context.Context) (dto.SessionOutput, error)

	SubmitFeedback(ctx context.Context, input dto.FeedbackInput) (dto.FeedbackOutput, error)
	DismissFeedback(ctx context.Context) error

	// Reconcile resolves a pointer left by an earlier process.
	Reconcile(ctx context.Context) (dto.ReconcileOutput, error)
	History(ctx context.Context, limit int) ([]dto.WorkoutLogOutput, error)
}
