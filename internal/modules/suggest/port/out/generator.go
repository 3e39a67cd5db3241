package out

import (
	"context"

	"ascend/internal/modules/suggest/domain"
)

// Generator is an external service that proposes missions and quizzes.
type Generator interface {
	Name() string
	Suggest(ctx context.Context, req domain.Request) ([]domain.Candidate, error)
	Quiz(ctx context.Context, concept string) (domain.QuizItem, error)
}
