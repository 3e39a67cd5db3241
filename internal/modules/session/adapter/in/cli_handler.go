package in

import (
	"context"

	sessiondto "ascend/internal/modules/session/dto"
	sessionin "ascend/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Reconcile(ctx context.Context) (sessiondto.ReconcileOutput, error) {
	return h.usecase.Reconcile(ctx)
}

func (h CLIHandler) Focus(ctx context.Context, missionID string) (sessiondto.SessionOutput, error) {
	return h.usecase.EngageMission(ctx, missionID)
}

func (h CLIHandler) StartWorkout(ctx context.Context, routineID string) (sessiondto.SessionOutput, error) {
	return h.usecase.EngageWorkout(ctx, routineID)
}

func (h CLIHandler) LogSet(ctx context.Context, exerciseID string, setIndex int, field string, value float64) (sessiondto.SessionOutput, error) {
	return h.usecase.LogSet(ctx, sessiondto.LogSetInput{ExerciseID: exerciseID, SetIndex: setIndex, Field: field, Value: value})
}

// LogSetPair records weight and reps of one set together; an invalid value
// rejects both.
func (h CLIHandler) LogSetPair(ctx context.Context, exerciseID string, setIndex int, weight float64, reps int) (sessiondto.SessionOutput, error) {
	return h.usecase.LogSetPair(ctx, sessiondto.LogSetPairInput{ExerciseID: exerciseID, SetIndex: setIndex, Weight: weight, Reps: reps})
}

func (h CLIHandler) FinishWorkout(ctx context.Context) (sessiondto.WorkoutLogOutput, error) {
	return h.usecase.FinalizeWorkout(ctx)
}

func (h CLIHandler) Abandon(ctx context.Context) error {
	return h.usecase.Abandon(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Active(ctx)
}

func (h CLIHandler) Tick(ctx context.Context) (sessiondto.SessionOutput, bool) {
	return h.usecase.Tick(ctx)
}

func (h CLIHandler) PauseFocus(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.PauseFocus(ctx)
}

func (h CLIHandler) ResumeFocus(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.StartFocus(ctx)
}

func (h CLIHandler) ResetFocus(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.ResetFocus(ctx)
}

func (h CLIHandler) CompleteFocus(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.CompleteFocus(ctx)
}

func (h CLIHandler) SubmitFeedback(ctx context.Context, difficulty string, energy int) (sessiondto.FeedbackOutput, error) {
	return h.usecase.SubmitFeedback(ctx, sessiondto.FeedbackInput{Difficulty: difficulty, EnergyAfter: energy})
}

func (h CLIHandler) DismissFeedback(ctx context.Context) error {
	return h.usecase.DismissFeedback(ctx)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]sessiondto.WorkoutLogOutput, error) {
	return h.usecase.History(ctx, limit)
}
