package in

import (
	"context"
	"time"

	"ascend/internal/modules/mission/dto"
	missionin "ascend/internal/modules/mission/port/in"
)

type CLIHandler struct {
	usecase missionin.Usecase
}

func NewCLIHandler(usecase missionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Create(ctx context.Context, title, category, priority string, plannedDate time.Time) (dto.MissionOutput, error) {
	return h.usecase.Create(ctx, dto.CreateInput{Title: title, Category: category, Priority: priority, PlannedDate: plannedDate})
}

func (h CLIHandler) List(ctx context.Context, status, category string) ([]dto.MissionOutput, error) {
	return h.usecase.List(ctx, dto.ListInput{Status: status, Category: category})
}

func (h CLIHandler) Get(ctx context.Context, missionID string) (dto.MissionOutput, error) {
	return h.usecase.Get(ctx, missionID)
}

func (h CLIHandler) Edit(ctx context.Context, input dto.EditInput) (dto.MissionOutput, error) {
	return h.usecase.Edit(ctx, input)
}

// Done is the direct completion path; it awards experience without feedback.
func (h CLIHandler) Done(ctx context.Context, missionID string) (dto.CompleteOutput, error) {
	return h.usecase.Complete(ctx, dto.CompleteInput{MissionID: missionID})
}

func (h CLIHandler) Delete(ctx context.Context, missionID string) error {
	return h.usecase.Delete(ctx, missionID)
}
