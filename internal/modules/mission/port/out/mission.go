package out

import (
	"context"

	"ascend/internal/modules/mission/domain"
)

type ListFilter struct {
	Status   domain.Status
	Category domain.Category
}

type MissionStore interface {
	Save(ctx context.Context, mission domain.Mission) error
	FindByID(ctx context.Context, userID, id string) (domain.Mission, error)
	List(ctx context.Context, userID string, filter ListFilter) ([]domain.Mission, error)
	Delete(ctx context.Context, userID, id string) error
}
