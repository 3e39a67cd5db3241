package in

import (
	"context"

	"ascend/internal/modules/routine/dto"
)

type Usecase interface {
	// Save creates a routine or replaces an existing one as a whole.
	Save(ctx context.Context, input dto.SaveInput) (dto.RoutineOutput, error)
	Get(ctx context.Context, routineID string) (dto.RoutineOutput, error)
	List(ctx context.Context) ([]dto.RoutineOutput, error)
	Delete(ctx context.Context, routineID string) error
}
