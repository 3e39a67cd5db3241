package domain

import "time"

type EventKind string

const (
	EventEngaged        EventKind = "engaged"
	EventSetLogged      EventKind = "set_logged"
	EventRestStarted    EventKind = "rest_started"
	EventRestExpired    EventKind = "rest_expired"
	EventFocusExpired   EventKind = "focus_expired"
	EventFeedbackOpened EventKind = "feedback_opened"
	EventEnded          EventKind = "ended"
)

type Event struct {
	Kind        EventKind
	SessionID   string
	SessionKind Kind
	At          time.Time
	ExerciseID  string
	SetIndex    int
	Reps        int
}

type Listener func(Event)
