package dto

import (
	"time"

	progressiondto "ascend/internal/modules/progression/dto"
)

type CreateInput struct {
	Title       string
	Category    string
	Priority    string
	PlannedDate time.Time
}

type EditInput struct {
	MissionID string
	Title     *string
	Category  *string
	Priority  *string
}

type ListInput struct {
	Status   string
	Category string
}

type FeedbackInput struct {
	Difficulty  string
	EnergyAfter int
}

// CompleteInput without Feedback is the direct "mark complete" path.
type CompleteInput struct {
	MissionID string
	Feedback  *FeedbackInput
}

type MissionOutput struct {
	ID          string
	Title       string
	Category    string
	Priority    string
	Impact      int
	Status      string
	CreatedAt   time.Time
	PlannedDate time.Time
	CompletedAt *time.Time
	Difficulty  string
	EnergyAfter int
}

type CompleteOutput struct {
	Mission MissionOutput
	Ledger  progressiondto.LedgerOutput
}
