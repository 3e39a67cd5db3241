package dto

import (
	"time"

	missiondto "ascend/internal/modules/mission/dto"
	progressiondto "ascend/internal/modules/progression/dto"
)

type SetOutput struct {
	Weight float64
	Reps   int
}

type ExerciseProgress struct {
	ID         string
	Name       string
	TargetSets int
	Sets       []SetOutput
}

type SessionOutput struct {
	SessionID   string
	Kind        string
	TargetID    string
	TargetTitle string
	StartedAt   time.Time
	Elapsed     time.Duration

	FocusState     string
	FocusRemaining time.Duration

	Resting       bool
	RestRemaining time.Duration

	Exercises []ExerciseProgress
	Volume    float64

	Finalizing   bool
	FeedbackOpen bool
	// Detached is set when the session is held by another live process.
	Detached bool
}

type LogSetInput struct {
	ExerciseID string
	SetIndex   int
	Field      string
	Value      float64
}

type LogSetPairInput struct {
	ExerciseID string
	SetIndex   int
	Weight     float64
	Reps       int
}

type WorkoutLogOutput struct {
	ID              string
	RoutineID       string
	RoutineName     string
	TotalVolume     float64
	DurationMinutes int
	LoggedAt        time.Time
	JournalPath     string
	Ledger          progressiondto.LedgerOutput
}

type FeedbackInput struct {
	Difficulty  string
	EnergyAfter int
}

type FeedbackOutput struct {
	Mission missiondto.MissionOutput
	Ledger  progressiondto.LedgerOutput
}

const (
	ReconcileNone      = "none"
	ReconcileAttached  = "attached"
	ReconcileResumed   = "resumed"
	ReconcileDiscarded = "discarded"
	ReconcileForeign   = "foreign"
)

type ReconcileOutput struct {
	Outcome   string
	SessionID string
	Kind      string
	TargetID  string
}
