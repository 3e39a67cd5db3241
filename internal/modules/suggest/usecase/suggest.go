package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	missiondomain "ascend/internal/modules/mission/domain"
	missiondto "ascend/internal/modules/mission/dto"
	missionin "ascend/internal/modules/mission/port/in"
	"ascend/internal/modules/suggest/domain"
	"ascend/internal/modules/suggest/dto"
	suggestin "ascend/internal/modules/suggest/port/in"
	"ascend/internal/modules/suggest/service"
	apperrors "ascend/internal/platform/errors"
	"ascend/internal/platform/metrics"
)

type Interactor struct {
	svc      *service.SuggestService
	missions missionin.Usecase
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewInteractor(svc *service.SuggestService, missions missionin.Usecase, m *metrics.Metrics, logger zerolog.Logger) suggestin.Usecase {
	return &Interactor{svc: svc, missions: missions, metrics: m, logger: logger.With().Str("component", "suggest_usecase").Logger()}
}

func (i *Interactor) SuggestMissions(ctx context.Context, input dto.SuggestInput) (dto.SuggestOutput, error) {
	planned, err := i.missions.List(ctx, missiondto.ListInput{Status: string(missiondomain.StatusPlanned)})
	if err != nil {
		return dto.SuggestOutput{}, fmt.Errorf("list planned missions: %w", err)
	}
	existing := make([]string, 0, len(planned))
	for _, m := range planned {
		existing = append(existing, m.Title)
	}
	req, err := domain.NewRequest(input.Categories, existing, input.Count)
	if err != nil {
		return dto.SuggestOutput{}, err
	}
	candidates, source, err := i.svc.Suggest(ctx, req)
	if err != nil {
		if !errors.Is(err, service.ErrNoGenerator) {
			i.metrics.RecordGeneratorFailure("suggest")
		}
		i.logger.Warn().Err(err).Msg("suggestions unavailable")
		return dto.SuggestOutput{Candidates: []dto.CandidateOutput{}}, nil
	}
	out := dto.SuggestOutput{Candidates: make([]dto.CandidateOutput, 0, len(candidates)), Source: source}
	for _, c := range candidates {
		out.Candidates = append(out.Candidates, dto.CandidateOutput{
			Title:     c.Title,
			Category:  string(c.Category),
			Priority:  string(c.Priority),
			Rationale: c.Rationale,
		})
	}
	return out, nil
}

func (i *Interactor) Quiz(ctx context.Context, concept string) (dto.QuizOutput, error) {
	if strings.TrimSpace(concept) == "" {
		return dto.QuizOutput{}, apperrors.Invalid("concept", "must not be empty")
	}
	item, source, err := i.svc.Quiz(ctx, concept)
	if err != nil {
		i.metrics.RecordGeneratorFailure("quiz")
		return dto.QuizOutput{}, apperrors.Unavailable("generator", err)
	}
	return dto.QuizOutput{
		Concept:      item.Concept,
		Prompt:       item.Prompt,
		Options:      item.Options,
		CorrectIndex: item.CorrectIndex,
		Explanation:  item.Explanation,
		Source:       source,
	}, nil
}

func (i *Interactor) AcceptSuggestion(ctx context.Context, input dto.AcceptInput) (missiondto.MissionOutput, error) {
	return i.missions.Create(ctx, missiondto.CreateInput{
		Title:    input.Title,
		Category: input.Category,
		Priority: input.Priority,
	})
}
