package domain

import "time"

// Snapshot is the persistable form of a timer. Restoring a running snapshot
// re-anchors it at ResumedAt, so time that passed while the process was
// gone is counted.
type Snapshot struct {
	Mode        Mode          `json:"mode"`
	State       State         `json:"state"`
	Duration    time.Duration `json:"duration"`
	Accumulated time.Duration `json:"accumulated"`
	ResumedAt   time.Time     `json:"resumed_at"`
}

func (t *Timer) Snapshot() Snapshot {
	return Snapshot{
		Mode:        t.mode,
		State:       t.state,
		Duration:    t.duration,
		Accumulated: t.accumulated,
		ResumedAt:   t.resumedAt,
	}
}

// Restore rebuilds a timer. Ticks already elapsed are treated as delivered.
func Restore(s Snapshot, unit time.Duration, now time.Time) (*Timer, error) {
	var (
		t   *Timer
		err error
	)
	if s.Mode == ModeCountdown {
		t, err = NewCountdown(s.Duration, unit)
	} else {
		t, err = NewStopwatch(unit)
	}
	if err != nil {
		return nil, err
	}
	t.state = s.State
	t.accumulated = s.Accumulated
	t.resumedAt = s.ResumedAt
	t.delivered = int64(t.Elapsed(now) / unit)
	return t, nil
}
