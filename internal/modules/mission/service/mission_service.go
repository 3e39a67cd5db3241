package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ascend/internal/modules/mission/domain"
	missionout "ascend/internal/modules/mission/port/out"
	"ascend/internal/platform/clock"
	"ascend/internal/platform/id"
)

type MissionService struct {
	clock  clock.Clock
	idGen  id.Generator
	store  missionout.MissionStore
	logger zerolog.Logger
}

func NewMissionService(clock clock.Clock, idGen id.Generator, store missionout.MissionStore, logger zerolog.Logger) *MissionService {
	return &MissionService{clock: clock, idGen: idGen, store: store, logger: logger.With().Str("component", "mission").Logger()}
}

func (s *MissionService) Create(ctx context.Context, userID, title string, category domain.Category, priority domain.Priority, plannedDate time.Time) (domain.Mission, error) {
	mission, err := domain.New(s.idGen.New(), userID, title, category, priority, plannedDate, s.clock.Now())
	if err != nil {
		return domain.Mission{}, err
	}
	if err := s.store.Save(ctx, mission); err != nil {
		return domain.Mission{}, err
	}
	s.logger.Debug().Str("mission_id", mission.ID).Int("impact", mission.Impact).Msg("mission created")
	return mission, nil
}

func (s *MissionService) Get(ctx context.Context, userID, missionID string) (domain.Mission, error) {
	return s.store.FindByID(ctx, userID, missionID)
}

func (s *MissionService) List(ctx context.Context, userID string, filter missionout.ListFilter) ([]domain.Mission, error) {
	return s.store.List(ctx, userID, filter)
}

func (s *MissionService) Edit(ctx context.Context, userID, missionID string, title *string, category *domain.Category, priority *domain.Priority) (domain.Mission, error) {
	return s.mutate(ctx, userID, missionID, func(m *domain.Mission) error {
		return m.Edit(title, category, priority)
	})
}

func (s *MissionService) Begin(ctx context.Context, userID, missionID string) (domain.Mission, error) {
	return s.mutate(ctx, userID, missionID, func(m *domain.Mission) error { return m.Begin() })
}

func (s *MissionService) Release(ctx context.Context, userID, missionID string) (domain.Mission, error) {
	return s.mutate(ctx, userID, missionID, func(m *domain.Mission) error { return m.Release() })
}

func (s *MissionService) Complete(ctx context.Context, userID, missionID string, feedback *domain.Feedback) (domain.Mission, error) {
	return s.mutate(ctx, userID, missionID, func(m *domain.Mission) error {
		return m.Complete(s.clock.Now(), feedback)
	})
}

func (s *MissionService) Delete(ctx context.Context, userID, missionID string) error {
	if _, err := s.store.FindByID(ctx, userID, missionID); err != nil {
		return err
	}
	return s.store.Delete(ctx, userID, missionID)
}

func (s *MissionService) mutate(ctx context.Context, userID, missionID string, fn func(*domain.Mission) error) (domain.Mission, error) {
	mission, err := s.store.FindByID(ctx, userID, missionID)
	if err != nil {
		return domain.Mission{}, err
	}
	if err := fn(&mission); err != nil {
		return domain.Mission{}, err
	}
	if err := s.store.Save(ctx, mission); err != nil {
		return domain.Mission{}, err
	}
	return mission, nil
}
