package in

import (
	"context"

	"ascend/internal/modules/progression/dto"
	progressionin "ascend/internal/modules/progression/port/in"
)

type CLIHandler struct {
	usecase progressionin.Usecase
}

func NewCLIHandler(usecase progressionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Ledger(ctx context.Context) (dto.LedgerOutput, error) {
	return h.usecase.Ledger(ctx)
}

func (h CLIHandler) Refresh(ctx context.Context) (dto.LedgerOutput, error) {
	return h.usecase.Refresh(ctx)
}

func (h CLIHandler) Stats(ctx context.Context) (dto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}
