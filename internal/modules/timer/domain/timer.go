// Package domain holds the countdown and stopwatch primitive shared by
// focus, rest and workout sessions.
//
// A Timer owns no goroutine. Callers drive it with Advance from whatever
// tick source they run, and every query is computed from the anchor taken
// at the last Start, so elapsed time equals the sum of running intervals no
// matter how often the timer is paused and resumed.
package domain

import (
	"errors"
	"fmt"
	"time"
)

type Mode string

const (
	ModeCountdown Mode = "countdown"
	ModeStopwatch Mode = "stopwatch"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateExpired State = "expired"
	StateStopped State = "stopped"
)

var (
	ErrTimerFinished = errors.New("timer is finished; reset it first")
	ErrNotRunning    = errors.New("timer is not running")
)

type EventKind string

const (
	EventTick    EventKind = "tick"
	EventExpired EventKind = "expired"
)

// Event is produced by Advance. Tick events carry the ordinal of the elapsed
// unit; the single Expired event of a countdown follows its last tick.
type Event struct {
	Kind      EventKind
	Seq       int64
	Elapsed   time.Duration
	Remaining time.Duration
}

type Timer struct {
	mode     Mode
	unit     time.Duration
	initial  time.Duration
	duration time.Duration

	state       State
	accumulated time.Duration
	resumedAt   time.Time
	delivered   int64
}

func NewCountdown(duration, unit time.Duration) (*Timer, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("countdown duration must be positive")
	}
	if unit <= 0 {
		return nil, fmt.Errorf("tick unit must be positive")
	}
	return &Timer{mode: ModeCountdown, unit: unit, initial: duration, duration: duration, state: StateIdle}, nil
}

func NewStopwatch(unit time.Duration) (*Timer, error) {
	if unit <= 0 {
		return nil, fmt.Errorf("tick unit must be positive")
	}
	return &Timer{mode: ModeStopwatch, unit: unit, state: StateIdle}, nil
}

func (t *Timer) Mode() Mode              { return t.mode }
func (t *Timer) State() State            { return t.state }
func (t *Timer) Duration() time.Duration { return t.duration }
func (t *Timer) Running() bool           { return t.state == StateRunning }

// Start begins a run from Idle or resumes from Paused. Starting a running
// timer is a no-op.
func (t *Timer) Start(now time.Time) error {
	switch t.state {
	case StateRunning:
		return nil
	case StateExpired, StateStopped:
		return ErrTimerFinished
	}
	t.state = StateRunning
	t.resumedAt = now
	return nil
}

// Pause closes the open running interval and suspends tick delivery.
func (t *Timer) Pause(now time.Time) error {
	if t.state != StateRunning {
		return ErrNotRunning
	}
	t.accumulated = t.clamp(t.accumulated + nonNegative(now.Sub(t.resumedAt)))
	t.state = StatePaused
	return nil
}

// Stop ends the timer for good, keeping the elapsed total readable.
func (t *Timer) Stop(now time.Time) {
	if t.state == StateRunning {
		t.accumulated = t.clamp(t.accumulated + nonNegative(now.Sub(t.resumedAt)))
	}
	if t.state != StateExpired {
		t.state = StateStopped
	}
}

// Reset cancels any pending expiry and returns to Idle. A non-positive
// duration restores the duration the timer was created with.
func (t *Timer) Reset(duration time.Duration) {
	if duration <= 0 {
		duration = t.initial
	}
	if t.mode == ModeStopwatch {
		duration = 0
	}
	t.duration = duration
	t.state = StateIdle
	t.accumulated = 0
	t.resumedAt = time.Time{}
	t.delivered = 0
}

func (t *Timer) Elapsed(now time.Time) time.Duration {
	elapsed := t.accumulated
	if t.state == StateRunning {
		elapsed += nonNegative(now.Sub(t.resumedAt))
	}
	return t.clamp(elapsed)
}

// Remaining is meaningful for countdowns only; stopwatches report zero.
func (t *Timer) Remaining(now time.Time) time.Duration {
	if t.mode != ModeCountdown {
		return 0
	}
	return t.duration - t.Elapsed(now)
}

// Advance delivers one Tick per whole unit elapsed since the previous call
// and, for a countdown reaching zero, exactly one Expired event.
func (t *Timer) Advance(now time.Time) []Event {
	if t.state != StateRunning {
		return nil
	}
	elapsed := t.Elapsed(now)
	units := int64(elapsed / t.unit)
	var events []Event
	for t.delivered < units {
		t.delivered++
		at := time.Duration(t.delivered) * t.unit
		ev := Event{Kind: EventTick, Seq: t.delivered, Elapsed: at}
		if t.mode == ModeCountdown {
			ev.Remaining = t.duration - at
		}
		events = append(events, ev)
	}
	if t.mode == ModeCountdown && elapsed >= t.duration {
		t.accumulated = t.duration
		t.state = StateExpired
		events = append(events, Event{Kind: EventExpired, Seq: t.delivered, Elapsed: t.duration})
	}
	return events
}

// Expire forces a running or paused countdown to its end without waiting,
// which is how a user finishes a focus period early. The Expired event is
// returned so callers handle both paths identically.
func (t *Timer) Expire(now time.Time) (Event, error) {
	if t.mode != ModeCountdown {
		return Event{}, fmt.Errorf("only countdowns expire")
	}
	if t.state == StateExpired || t.state == StateStopped {
		return Event{}, ErrTimerFinished
	}
	elapsed := t.Elapsed(now)
	t.accumulated = t.duration
	t.state = StateExpired
	return Event{Kind: EventExpired, Seq: t.delivered, Elapsed: elapsed}, nil
}

func (t *Timer) clamp(d time.Duration) time.Duration {
	if t.mode == ModeCountdown && d > t.duration {
		return t.duration
	}
	return d
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
