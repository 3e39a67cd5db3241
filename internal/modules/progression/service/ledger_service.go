package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"ascend/internal/modules/progression/domain"
	progressionout "ascend/internal/modules/progression/port/out"
	"ascend/internal/platform/clock"
	apperrors "ascend/internal/platform/errors"
	"ascend/internal/platform/metrics"
)

// LedgerService is the only writer of the progression ledger. Every
// completion path goes through Award, which hands the store a delta rather
// than a recomputed total.
type LedgerService struct {
	clock   clock.Clock
	store   progressionout.LedgerStore
	stats   progressionout.StatsSource
	ranks   domain.RankTable
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu     sync.RWMutex
	cached map[string]domain.Ledger
}

func NewLedgerService(clock clock.Clock, store progressionout.LedgerStore, stats progressionout.StatsSource, ranks domain.RankTable, m *metrics.Metrics, logger zerolog.Logger) *LedgerService {
	return &LedgerService{
		clock:   clock,
		store:   store,
		stats:   stats,
		ranks:   ranks,
		metrics: m,
		logger:  logger.With().Str("component", "ledger").Logger(),
		cached:  map[string]domain.Ledger{},
	}
}

func (s *LedgerService) Award(ctx context.Context, userID string, kind domain.Kind, sourceID string) (domain.Standing, bool, error) {
	if strings.TrimSpace(sourceID) == "" {
		return domain.Standing{}, false, apperrors.Invalid("source_id", "is required")
	}
	delta, err := domain.AwardFor(kind)
	if err != nil {
		return domain.Standing{}, false, apperrors.Invalid("kind", "%v", err)
	}
	award := domain.Award{
		UserID:    userID,
		Kind:      kind,
		SourceID:  sourceID,
		Delta:     delta,
		AwardedAt: s.clock.Now(),
	}
	applied, err := s.store.ApplyAward(ctx, award)
	if err != nil {
		return domain.Standing{}, false, fmt.Errorf("apply award: %w", err)
	}
	ledger, err := s.store.Get(ctx, userID)
	if err != nil {
		return domain.Standing{}, false, fmt.Errorf("reload ledger: %w", err)
	}
	// The award may still be inside an uncommitted transaction.
	s.forget(userID)
	if applied {
		s.metrics.RecordCompletion(string(kind), delta.Experience)
		s.logger.Info().
			Str("kind", string(kind)).
			Str("source_id", sourceID).
			Int("experience", ledger.Experience).
			Msg("experience awarded")
	} else {
		s.logger.Debug().Str("source_id", sourceID).Msg("award already applied")
	}
	return s.ranks.Standing(ledger), applied, nil
}

// Standing serves the cached ledger when one is known.
func (s *LedgerService) Standing(ctx context.Context, userID string) (domain.Standing, error) {
	s.mu.RLock()
	ledger, ok := s.cached[userID]
	s.mu.RUnlock()
	if ok {
		return s.ranks.Standing(ledger), nil
	}
	return s.Refresh(ctx, userID)
}

// Refresh drops the cached ledger and reads the current one from the store.
func (s *LedgerService) Refresh(ctx context.Context, userID string) (domain.Standing, error) {
	ledger, err := s.store.Get(ctx, userID)
	if err != nil {
		return domain.Standing{}, err
	}
	s.remember(ledger)
	return s.ranks.Standing(ledger), nil
}

func (s *LedgerService) Stats(ctx context.Context, userID string) (domain.Stats, error) {
	standing, err := s.Refresh(ctx, userID)
	if err != nil {
		return domain.Stats{}, err
	}
	times, err := s.stats.CompletionTimes(ctx, userID)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("load completion times: %w", err)
	}
	volume, err := s.stats.TotalVolume(ctx, userID)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("load total volume: %w", err)
	}
	tally, err := s.stats.MissionTally(ctx, userID)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("load mission tally: %w", err)
	}
	return domain.Stats{
		Standing:        standing,
		Streak:          domain.ComputeStreak(times, s.clock.Now()),
		TotalVolume:     volume,
		Missions:        tally,
		CompletionRatio: tally.CompletionRatio(),
	}, nil
}

func (s *LedgerService) forget(userID string) {
	s.mu.Lock()
	delete(s.cached, userID)
	s.mu.Unlock()
}

func (s *LedgerService) remember(ledger domain.Ledger) {
	s.mu.Lock()
	s.cached[ledger.UserID] = ledger
	s.mu.Unlock()
}
