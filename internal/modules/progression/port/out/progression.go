package out

import (
	"context"
	"time"

	"ascend/internal/modules/progression/domain"
)

type LedgerStore interface {
	Get(ctx context.Context, userID string) (domain.Ledger, error)
	// ApplyAward adds the award delta to the stored ledger as a single
	// increment. It reports false when the source was already awarded.
	ApplyAward(ctx context.Context, award domain.Award) (bool, error)
}

type StatsSource interface {
	CompletionTimes(ctx context.Context, userID string) ([]time.Time, error)
	TotalVolume(ctx context.Context, userID string) (float64, error)
	MissionTally(ctx context.Context, userID string) (domain.MissionTally, error)
}
