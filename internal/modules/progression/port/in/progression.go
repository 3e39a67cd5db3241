package in

import (
	"context"

	"ascend/internal/modules/progression/dto"
)

type Usecase interface {
	Award(ctx context.Context, input dto.AwardInput) (dto.LedgerOutput, error)
	Ledger(ctx context.Context) (dto.LedgerOutput, error)
	Stats(ctx context.Context) (dto.StatsOutput, error)
	// Refresh re-reads the ledger after a remote change.
	Refresh(ctx context.Context) (dto.LedgerOutput, error)
}
