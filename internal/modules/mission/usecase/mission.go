package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ascend/internal/modules/mission/domain"
	"ascend/internal/modules/mission/dto"
	missionin "ascend/internal/modules/mission/port/in"
	missionout "ascend/internal/modules/mission/port/out"
	"ascend/internal/modules/mission/service"
	progressiondomain "ascend/internal/modules/progression/domain"
	progressiondto "ascend/internal/modules/progression/dto"
	progressionin "ascend/internal/modules/progression/port/in"
	apperrors "ascend/internal/platform/errors"
	"ascend/internal/platform/metrics"
	"ascend/internal/platform/retry"
	"ascend/internal/platform/tx"
)

type Interactor struct {
	svc         *service.MissionService
	progression progressionin.Usecase
	tx          tx.Manager
	retry       retry.Config
	userID      string
	logger      zerolog.Logger
}

func NewInteractor(svc *service.MissionService, progression progressionin.Usecase, txm tx.Manager, userID string, m *metrics.Metrics, logger zerolog.Logger) missionin.Usecase {
	cfg := retry.DefaultConfig()
	cfg.OnRetry = func(attempt int, err error) {
		m.RecordCommitRetry()
		logger.Warn().Err(err).Int("attempt", attempt).Msg("retrying mission commit")
	}
	return &Interactor{svc: svc, progression: progression, tx: txm, retry: cfg, userID: userID, logger: logger}
}

func (i *Interactor) Create(ctx context.Context, input dto.CreateInput) (dto.MissionOutput, error) {
	mission, err := i.svc.Create(ctx, i.userID, input.Title, domain.Category(normalize(input.Category)), domain.Priority(normalize(input.Priority)), input.PlannedDate)
	if err != nil {
		return dto.MissionOutput{}, err
	}
	return toOutput(mission), nil
}

func (i *Interactor) Get(ctx context.Context, missionID string) (dto.MissionOutput, error) {
	mission, err := i.svc.Get(ctx, i.userID, missionID)
	if err != nil {
		return dto.MissionOutput{}, err
	}
	return toOutput(mission), nil
}

func (i *Interactor) List(ctx context.Context, input dto.ListInput) ([]dto.MissionOutput, error) {
	filter := missionout.ListFilter{
		Status:   domain.Status(normalize(input.Status)),
		Category: domain.Category(normalize(input.Category)),
	}
	if filter.Category != "" {
		if err := filter.Category.Validate(); err != nil {
			return nil, err
		}
	}
	missions, err := i.svc.List(ctx, i.userID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MissionOutput, 0, len(missions))
	for _, m := range missions {
		out = append(out, toOutput(m))
	}
	return out, nil
}

func (i *Interactor) Edit(ctx context.Context, input dto.EditInput) (dto.MissionOutput, error) {
	var category *domain.Category
	if input.Category != nil {
		c := domain.Category(normalize(*input.Category))
		category = &c
	}
	var priority *domain.Priority
	if input.Priority != nil {
		p := domain.Priority(normalize(*input.Priority))
		priority = &p
	}
	mission, err := i.svc.Edit(ctx, i.userID, input.MissionID, input.Title, category, priority)
	if err != nil {
		return dto.MissionOutput{}, err
	}
	return toOutput(mission), nil
}

// Delete removes the record. Experience already awarded for it stays.
func (i *Interactor) Delete(ctx context.Context, missionID string) error {
	mission, err := i.svc.Get(ctx, i.userID, missionID)
	if err != nil {
		return err
	}
	if mission.Status == domain.StatusInProgress {
		return fmt.Errorf("delete mission %s: %w", missionID, apperrors.ErrActiveSessionExists)
	}
	return i.svc.Delete(ctx, i.userID, missionID)
}

func (i *Interactor) Complete(ctx context.Context, input dto.CompleteInput) (dto.CompleteOutput, error) {
	var feedback *domain.Feedback
	if input.Feedback == nil {
		// An engaged mission completes through feedback or is abandoned first.
		current, err := i.svc.Get(ctx, i.userID, input.MissionID)
		if err != nil {
			return dto.CompleteOutput{}, err
		}
		if current.Status == domain.StatusInProgress {
			return dto.CompleteOutput{}, fmt.Errorf("complete mission %s: %w", input.MissionID, apperrors.ErrActiveSessionExists)
		}
	} else {
		feedback = &domain.Feedback{
			Difficulty:  domain.Difficulty(normalize(input.Feedback.Difficulty)),
			EnergyAfter: input.Feedback.EnergyAfter,
		}
		if err := feedback.Validate(); err != nil {
			return dto.CompleteOutput{}, err
		}
	}

	var out dto.CompleteOutput
	err := retry.Do(ctx, i.retry, func(ctx context.Context) error {
		return i.tx.Within(ctx, func(ctx context.Context) error {
			mission, err := i.svc.Complete(ctx, i.userID, input.MissionID, feedback)
			if err != nil {
				return err
			}
			ledger, err := i.progression.Award(ctx, progressiondto.AwardInput{Kind: string(progressiondomain.KindMission), SourceID: mission.ID})
			if err != nil {
				return err
			}
			out = dto.CompleteOutput{Mission: toOutput(mission), Ledger: ledger}
			return nil
		})
	})
	if err != nil {
		return dto.CompleteOutput{}, err
	}
	i.logger.Info().
		Str("mission_id", out.Mission.ID).
		Bool("with_feedback", feedback != nil).
		Int("experience", out.Ledger.Experience).
		Msg("mission completed")
	return out, nil
}

func (i *Interactor) Begin(ctx context.Context, missionID string) (dto.MissionOutput, error) {
	mission, err := i.svc.Begin(ctx, i.userID, missionID)
	if err != nil {
		return dto.MissionOutput{}, err
	}
	return toOutput(mission), nil
}

func (i *Interactor) Release(ctx context.Context, missionID string) error {
	_, err := i.svc.Release(ctx, i.userID, missionID)
	return err
}

func toOutput(m domain.Mission) dto.MissionOutput {
	out := dto.MissionOutput{
		ID:          m.ID,
		Title:       m.Title,
		Category:    string(m.Category),
		Priority:    string(m.Priority),
		Impact:      m.Impact,
		Status:      string(m.Status),
		CreatedAt:   m.CreatedAt,
		PlannedDate: m.PlannedDate,
		CompletedAt: m.CompletedAt,
	}
	if m.Feedback != nil {
		out.Difficulty = string(m.Feedback.Difficulty)
		out.EnergyAfter = m.Feedback.EnergyAfter
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
