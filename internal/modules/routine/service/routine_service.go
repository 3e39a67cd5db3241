package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"ascend/internal/modules/routine/domain"
	routineout "ascend/internal/modules/routine/port/out"
	"ascend/internal/platform/clock"
	"ascend/internal/platform/id"
	"ascend/internal/platform/slug"
)

type RoutineService struct {
	clock  clock.Clock
	idGen  id.Generator
	store  routineout.RoutineStore
	logger zerolog.Logger
}

func NewRoutineService(clock clock.Clock, idGen id.Generator, store routineout.RoutineStore, logger zerolog.Logger) *RoutineService {
	return &RoutineService{clock: clock, idGen: idGen, store: store, logger: logger.With().Str("component", "routine").Logger()}
}

// Save replaces the routine identified by routineID, or creates one when it is
// empty. Exercises without an id get one derived from their name.
func (s *RoutineService) Save(ctx context.Context, userID, routineID, name string, exercises []domain.Exercise) (domain.Routine, error) {
	if routineID == "" {
		routineID = s.idGen.New()
	} else if _, err := s.store.FindByID(ctx, userID, routineID); err != nil {
		return domain.Routine{}, err
	}

	taken := map[string]struct{}{}
	for _, ex := range exercises {
		if ex.ID != "" {
			taken[ex.ID] = struct{}{}
		}
	}
	normalized := make([]domain.Exercise, len(exercises))
	for i, ex := range exercises {
		ex.ID = strings.TrimSpace(ex.ID)
		ex.Name = strings.TrimSpace(ex.Name)
		ex.MuscleGroup = strings.ToLower(strings.TrimSpace(ex.MuscleGroup))
		if ex.ID == "" {
			ex.ID = slug.Unique(ex.Name, taken)
		}
		normalized[i] = ex
	}

	routine, err := domain.New(routineID, userID, name, normalized, s.clock.Now())
	if err != nil {
		return domain.Routine{}, err
	}
	if err := s.store.Save(ctx, routine); err != nil {
		return domain.Routine{}, err
	}
	s.logger.Debug().Str("routine_id", routine.ID).Int("exercises", len(routine.Exercises)).Msg("routine saved")
	return routine, nil
}

func (s *RoutineService) Get(ctx context.Context, userID, routineID string) (domain.Routine, error) {
	return s.store.FindByID(ctx, userID, routineID)
}

func (s *RoutineService) List(ctx context.Context, userID string) ([]domain.Routine, error) {
	return s.store.List(ctx, userID)
}

func (s *RoutineService) Delete(ctx context.Context, userID, routineID string) error {
	return s.store.Delete(ctx, userID, routineID)
}
