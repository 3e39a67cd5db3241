package domain

import "time"

// Record types written to the change log by the store adapters.
const (
	RecordMission    = "mission"
	RecordRoutine    = "routine"
	RecordWorkoutLog = "workout_log"
	RecordLedger     = "ledger"
)

type Change struct {
	Seq        int64
	RecordType string
	RecordID   string
	Op         string
	ChangedAt  time.Time
}

type Handler func(Change)

// Subscription delivers changes of the listed record types; an empty list
// means every type.
type Subscription struct {
	RecordTypes []string
	Handler     Handler
}

func (s Subscription) Matches(c Change) bool {
	if len(s.RecordTypes) == 0 {
		return true
	}
	for _, t := range s.RecordTypes {
		if t == c.RecordType {
			return true
		}
	}
	return false
}
