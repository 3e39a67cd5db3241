package out

import (
	"context"

	"ascend/internal/modules/session/domain"
)

type WorkoutLogStore interface {
	// Save is an upsert keyed by log id, so a retried commit is harmless.
	Save(ctx context.Context, log domain.WorkoutLog) error
	List(ctx context.Context, userID string, limit int) ([]domain.WorkoutLog, error)
}

// LogJournal renders finalized workouts as human-readable notes.
type LogJournal interface {
	Write(ctx context.Context, log domain.WorkoutLog) (string, error)
}

type ActiveSessionStore interface {
	// ClaimActive creates the pointer, failing with ErrActiveSessionExists
	// when one is already present.
	ClaimActive(ctx context.Context, session domain.ActiveSession) error
	SaveActive(ctx context.Context, session domain.ActiveSession) error
	LoadActive(ctx context.Context) (domain.ActiveSession, error)
	ClearActive(ctx context.Context) error
}

// OwnerProbe tells whether the process that wrote a pointer still runs.
type OwnerProbe interface {
	Alive(pid int) bool
}
