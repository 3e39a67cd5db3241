package in

import (
	"context"

	missiondto "ascend/internal/modules/mission/dto"
	"ascend/internal/modules/suggest/dto"
)

type Usecase interface {
	// SuggestMissions never fails on generator trouble; it degrades to an
	// empty result.
	SuggestMissions(ctx context.Context, input dto.SuggestInput) (dto.SuggestOutput, error)
	Quiz(ctx context.Context, concept string) (dto.QuizOutput, error)
	AcceptSuggestion(ctx context.Context, input dto.AcceptInput) (missiondto.MissionOutput, error)
}
