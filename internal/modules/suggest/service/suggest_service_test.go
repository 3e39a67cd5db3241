package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	missiondomain "ascend/internal/modules/mission/domain"
	"ascend/internal/modules/suggest/domain"
	suggestout "ascend/internal/modules/suggest/port/out"
	"ascend/internal/modules/suggest/service"
)

type stubGenerator struct {
	name       string
	candidates []domain.Candidate
	quiz       domain.QuizItem
	err        error
	block      bool
	calls      int
}

func (g *stubGenerator) Name() string { return g.name }

func (g *stubGenerator) Suggest(ctx context.Context, _ domain.Request) ([]domain.Candidate, error) {
	g.calls++
	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return g.candidates, g.err
}

func (g *stubGenerator) Quiz(ctx context.Context, _ string) (domain.QuizItem, error) {
	g.calls++
	if g.block {
		<-ctx.Done()
		return domain.QuizItem{}, ctx.Err()
	}
	return g.quiz, g.err
}

func sportRequest() domain.Request {
	return domain.Request{Categories: []missiondomain.Category{missiondomain.CategorySport}, Count: 3}
}

func TestSuggestFallsBackToNextGenerator(t *testing.T) {
	slow := &stubGenerator{name: "plugin", block: true}
	llm := &stubGenerator{name: "openai", candidates: []domain.Candidate{
		{Title: "Run 5k", Category: missiondomain.CategorySport, Priority: missiondomain.PriorityHigh},
		{Title: "File taxes", Category: missiondomain.CategoryAdmin, Priority: missiondomain.PriorityHigh},
	}}
	svc := service.NewSuggestService([]suggestout.Generator{slow, nil, llm}, 20*time.Millisecond, zerolog.Nop())

	got, source, err := svc.Suggest(context.Background(), sportRequest())
	require.NoError(t, err)
	require.Equal(t, "openai", source)
	require.Len(t, got, 1)
	require.Equal(t, "Run 5k", got[0].Title)
	require.Equal(t, 1, slow.calls)
}

func TestSuggestReportsEveryFailure(t *testing.T) {
	svc := service.NewSuggestService([]suggestout.Generator{
		&stubGenerator{name: "plugin", err: errors.New("exec format error")},
		&stubGenerator{name: "openai", err: errors.New("401")},
	}, time.Second, zerolog.Nop())
	_, _, err := svc.Suggest(context.Background(), sportRequest())
	require.ErrorContains(t, err, "plugin: exec format error")
	require.ErrorContains(t, err, "openai: 401")

	_, _, err = service.NewSuggestService(nil, time.Second, zerolog.Nop()).Suggest(context.Background(), sportRequest())
	require.ErrorIs(t, err, service.ErrNoGenerator)
}

func TestQuizRejectsMalformedItems(t *testing.T) {
	broken := &stubGenerator{name: "plugin", quiz: domain.QuizItem{Prompt: "?", Options: []string{"only"}}}
	good := &stubGenerator{name: "openai", quiz: domain.QuizItem{Prompt: "Past tense of go?", Options: []string{"goed", "went"}, CorrectIndex: 1}}
	svc := service.NewSuggestService([]suggestout.Generator{broken, good}, time.Second, zerolog.Nop())

	item, source, err := svc.Quiz(context.Background(), " irregular verbs ")
	require.NoError(t, err)
	require.Equal(t, "openai", source)
	require.Equal(t, "irregular verbs", item.Concept)
	require.Equal(t, 1, item.CorrectIndex)
}
