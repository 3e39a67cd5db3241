package in

import (
	"context"

	"ascend/internal/modules/mission/dto"
)

type Usecase interface {
	Create(ctx context.Context, input dto.CreateInput) (dto.MissionOutput, error)
	Get(ctx context.Context, missionID string) (dto.MissionOutput, error)
	List(ctx context.Context, input dto.ListInput) ([]dto.MissionOutput, error)
	Edit(ctx context.Context, input dto.EditInput) (dto.MissionOutput, error)
	Delete(ctx context.Context, missionID string) error
	// Complete performs the terminal transition and the ledger award in one
	// transaction.
	Complete(ctx context.Context, input dto.CompleteInput) (dto.CompleteOutput, error)
	// Begin and Release bracket a session working on the mission.
	Begin(ctx context.Context, missionID string) (dto.MissionOutput, error)
	Release(ctx context.Context, missionID string) error
}
