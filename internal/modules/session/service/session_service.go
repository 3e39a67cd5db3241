package service

import (
	"context"

	"github.com/rs/zerolog"

	"ascend/internal/modules/session/domain"
	sessionout "ascend/internal/modules/session/port/out"
	"ascend/internal/platform/id"
)

// SessionService persists what finished sessions leave behind.
type SessionService struct {
	idGen   id.Generator
	logs    sessionout.WorkoutLogStore
	journal sessionout.LogJournal
	logger  zerolog.Logger
}

func NewSessionService(idGen id.Generator, logs sessionout.WorkoutLogStore, journal sessionout.LogJournal, logger zerolog.Logger) *SessionService {
	return &SessionService{idGen: idGen, logs: logs, journal: journal, logger: logger.With().Str("component", "session").Logger()}
}

func (s *SessionService) NewSessionID() string {
	return s.idGen.New()
}

func (s *SessionService) Record(ctx context.Context, log domain.WorkoutLog) error {
	return s.logs.Save(ctx, log)
}

// Journal writes the workout note. A missing journal is not an error.
func (s *SessionService) Journal(ctx context.Context, log domain.WorkoutLog) (string, error) {
	if s.journal == nil {
		return "", nil
	}
	return s.journal.Write(ctx, log)
}

func (s *SessionService) History(ctx context.Context, userID string, limit int) ([]domain.WorkoutLog, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.logs.List(ctx, userID, limit)
}
