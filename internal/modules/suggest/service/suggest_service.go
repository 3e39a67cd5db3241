package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ascend/internal/modules/suggest/domain"
	suggestout "ascend/internal/modules/suggest/port/out"
)

var ErrNoGenerator = errors.New("no generator configured")

// SuggestService asks each configured generator in order and keeps the
// first usable answer.
type SuggestService struct {
	generators []suggestout.Generator
	timeout    time.Duration
	logger     zerolog.Logger
}

func NewSuggestService(generators []suggestout.Generator, timeout time.Duration, logger zerolog.Logger) *SuggestService {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	active := make([]suggestout.Generator, 0, len(generators))
	for _, g := range generators {
		if g != nil {
			active = append(active, g)
		}
	}
	return &SuggestService{generators: active, timeout: timeout, logger: logger.With().Str("component", "suggest_service").Logger()}
}

func (s *SuggestService) Configured() bool {
	return len(s.generators) > 0
}

func (s *SuggestService) Suggest(ctx context.Context, req domain.Request) ([]domain.Candidate, string, error) {
	if len(s.generators) == 0 {
		return nil, "", ErrNoGenerator
	}
	var errs []error
	for _, g := range s.generators {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		raw, err := g.Suggest(callCtx, req)
		cancel()
		if err != nil {
			s.logger.Warn().Err(err).Str("generator", g.Name()).Msg("suggest failed")
			errs = append(errs, fmt.Errorf("%s: %w", g.Name(), err))
			continue
		}
		candidates := domain.Filter(req, raw)
		if len(candidates) < len(raw) {
			s.logger.Debug().Str("generator", g.Name()).Int("dropped", len(raw)-len(candidates)).Msg("filtered suggestions")
		}
		return candidates, g.Name(), nil
	}
	return nil, "", errors.Join(errs...)
}

func (s *SuggestService) Quiz(ctx context.Context, concept string) (domain.QuizItem, string, error) {
	concept = strings.TrimSpace(concept)
	if len(s.generators) == 0 {
		return domain.QuizItem{}, "", ErrNoGenerator
	}
	var errs []error
	for _, g := range s.generators {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		item, err := g.Quiz(callCtx, concept)
		cancel()
		if err == nil {
			err = item.Validate()
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("generator", g.Name()).Msg("quiz failed")
			errs = append(errs, fmt.Errorf("%s: %w", g.Name(), err))
			continue
		}
		if item.Concept == "" {
			item.Concept = concept
		}
		return item, g.Name(), nil
	}
	return domain.QuizItem{}, "", errors.Join(errs...)
}
