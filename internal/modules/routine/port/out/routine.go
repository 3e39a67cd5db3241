package out

import (
	"context"

	"ascend/internal/modules/routine/domain"
)

type RoutineStore interface {
	Save(ctx context.Context, routine domain.Routine) error
	FindByID(ctx context.Context, userID, id string) (domain.Routine, error)
	List(ctx context.Context, userID string) ([]domain.Routine, error)
	Delete(ctx context.Context, userID, id string) error
}
