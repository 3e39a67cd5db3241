package domain

import (
	"errors"
	"time"

	timerdomain "ascend/internal/modules/timer/domain"
)

const SchemaVersion = 2

// ErrUnreadablePointer marks a pointer file that cannot be decoded or names
// no session. Such a file still holds the lock until it is cleared.
var ErrUnreadablePointer = errors.New("active session pointer is unreadable")

// ActiveSession is the persisted pointer to the engaged session. Its presence
// is the "one active session" lock shared by every process on the data dir.
type ActiveSession struct {
	SchemaVersion int                   `json:"schema_version"`
	SessionID     string                `json:"session_id"`
	Kind          Kind                  `json:"kind"`
	TargetID      string                `json:"target_id"`
	TargetTitle   string                `json:"target_title"`
	StartedAt     time.Time             `json:"started_at"`
	OwnerPID      int                   `json:"owner_pid,omitempty"`
	Plan          *RoutinePlan          `json:"plan,omitempty"`
	Sets          SetLogs               `json:"sets,omitempty"`
	Primary       *timerdomain.Snapshot `json:"primary,omitempty"`
	Rest          *timerdomain.Snapshot `json:"rest,omitempty"`
}

// Target rebuilds the tagged target recorded in the pointer.
func (a ActiveSession) Target() Target {
	if a.Kind == KindWorkout && a.Plan != nil {
		return WorkoutTarget(*a.Plan)
	}
	return MissionTarget(a.TargetID, a.TargetTitle)
}

type WorkoutLog struct {
	ID              string
	UserID          string
	RoutineID       string
	RoutineName     string
	TotalVolume     float64
	DurationMinutes int
	StartedAt       time.Time
	LoggedAt        time.Time
	Exercises       []PlannedExercise
	Sets            SetLogs
}

// DurationMinutes floors elapsed time to whole minutes.
func DurationMinutes(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / time.Minute)
}

type TimerView struct {
	State     timerdomain.State
	Elapsed   time.Duration
	Remaining time.Duration
}

// View is a read-only picture of the active session at one instant.
type View struct {
	SessionID   string
	Kind        Kind
	TargetID    string
	TargetTitle string
	StartedAt   time.Time
	Elapsed     time.Duration
	Focus       *TimerView
	Rest        *TimerView
	Plan        *RoutinePlan
	Sets        SetLogs
	Volume      float64
	Finalizing  bool
	Feedback    *FeedbackPrompt
}
