package in

import (
	"context"

	missiondto "ascend/internal/modules/mission/dto"
	"ascend/internal/modules/suggest/dto"
	suggestin "ascend/internal/modules/suggest/port/in"
)

type CLIHandler struct {
	usecase suggestin.Usecase
}

func NewCLIHandler(usecase suggestin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Suggest(ctx context.Context, categories []string, count int) (dto.SuggestOutput, error) {
	return h.usecase.SuggestMissions(ctx, dto.SuggestInput{Categories: categories, Count: count})
}

func (h CLIHandler) Quiz(ctx context.Context, concept string) (dto.QuizOutput, error) {
	return h.usecase.Quiz(ctx, concept)
}

func (h CLIHandler) Accept(ctx context.Context, candidate dto.CandidateOutput) (missiondto.MissionOutput, error) {
	return h.usecase.AcceptSuggestion(ctx, dto.AcceptInput{
		Title:    candidate.Title,
		Category: candidate.Category,
		Priority: candidate.Priority,
	})
}
