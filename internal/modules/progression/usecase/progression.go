package usecase

import (
	"context"

	"ascend/internal/modules/progression/domain"
	"ascend/internal/modules/progression/dto"
	progressionin "ascend/internal/modules/progression/port/in"
	"ascend/internal/modules/progression/service"
)

type Interactor struct {
	svc    *service.LedgerService
	userID string
}

func NewInteractor(svc *service.LedgerService, userID string) progressionin.Usecase {
	return &Interactor{svc: svc, userID: userID}
}

func (i *Interactor) Award(ctx context.Context, input dto.AwardInput) (dto.LedgerOutput, error) {
	standing, applied, err := i.svc.Award(ctx, i.userID, domain.Kind(input.Kind), input.SourceID)
	if err != nil {
		return dto.LedgerOutput{}, err
	}
	out := toLedgerOutput(standing)
	out.Applied = applied
	return out, nil
}

func (i *Interactor) Ledger(ctx context.Context) (dto.LedgerOutput, error) {
	standing, err := i.svc.Standing(ctx, i.userID)
	if err != nil {
		return dto.LedgerOutput{}, err
	}
	return toLedgerOutput(standing), nil
}

func (i *Interactor) Refresh(ctx context.Context) (dto.LedgerOutput, error) {
	standing, err := i.svc.Refresh(ctx, i.userID)
	if err != nil {
		return dto.LedgerOutput{}, err
	}
	return toLedgerOutput(standing), nil
}

func (i *Interactor) Stats(ctx context.Context) (dto.StatsOutput, error) {
	stats, err := i.svc.Stats(ctx, i.userID)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	byCategory := map[string]int{}
	for k, v := range stats.Missions.ByCategory {
		byCategory[k] = v
	}
	return dto.StatsOutput{
		Ledger:              toLedgerOutput(stats.Standing),
		CurrentStreak:       stats.Streak.Current,
		LongestStreak:       stats.Streak.Longest,
		TotalVolume:         stats.TotalVolume,
		MissionsDone:        stats.Missions.Done,
		MissionsTotal:       stats.Missions.Total,
		CompletionRatio:     stats.CompletionRatio,
		CompletedByCategory: byCategory,
	}, nil
}

func toLedgerOutput(s domain.Standing) dto.LedgerOutput {
	out := dto.LedgerOutput{
		Experience:        s.Ledger.Experience,
		MissionsCompleted: s.Ledger.MissionsCompleted,
		WorkoutsCompleted: s.Ledger.WorkoutsCompleted,
		Rank:              s.Rank.Title,
	}
	if s.NextRank != nil {
		out.NextRank = s.NextRank.Title
		out.NextRankAt = s.NextRank.MinExperience
	}
	return out
}
