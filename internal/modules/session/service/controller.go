package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ascend/internal/modules/session/domain"
	timerdomain "ascend/internal/modules/timer/domain"
	"ascend/internal/platform/clock"
	apperrors "ascend/internal/platform/errors"
)

type ControllerConfig struct {
	FocusDuration time.Duration
	TickUnit      time.Duration
}

// Controller owns the single in-memory active session and every timer it
// runs. All state changes happen under mu; listeners are called after mu is
// released, in the caller's goroutine, so a listener may call back into the
// controller.
type Controller struct {
	mu        sync.Mutex
	clock     clock.Clock
	cfg       ControllerConfig
	active    *activeSession
	listeners []domain.Listener
	logger    zerolog.Logger
}

type activeSession struct {
	id          string
	target      domain.Target
	startedAt   time.Time
	primary     *timerdomain.Timer
	rest        *timerdomain.Timer
	sets        domain.SetLogs
	feedback    *domain.FeedbackPrompt
	finalizedAt *time.Time
}

func NewController(clock clock.Clock, cfg ControllerConfig, logger zerolog.Logger) (*Controller, error) {
	if cfg.FocusDuration <= 0 {
		return nil, apperrors.Invalid("focus_duration", "must be positive")
	}
	if cfg.TickUnit <= 0 {
		return nil, apperrors.Invalid("tick_unit", "must be positive")
	}
	return &Controller{clock: clock, cfg: cfg, logger: logger.With().Str("component", "session_controller").Logger()}, nil
}

func (c *Controller) Subscribe(listener domain.Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// Engage starts a session on target. Mission sessions run a focus
// countdown; workout sessions run a stopwatch and pre-size their set logs.
func (c *Controller) Engage(sessionID string, target domain.Target) (domain.View, error) {
	if sessionID == "" {
		return domain.View{}, apperrors.Invalid("session_id", "is required")
	}
	if err := target.Validate(); err != nil {
		return domain.View{}, err
	}
	now := c.clock.Now()

	c.mu.Lock()
	if c.active != nil {
		c.mu.Unlock()
		return domain.View{}, fmt.Errorf("engage %s %s: %w", target.Kind, target.ID(), apperrors.ErrActiveSessionExists)
	}
	primary, err := c.newPrimary(target.Kind)
	if err != nil {
		c.mu.Unlock()
		return domain.View{}, err
	}
	if err := primary.Start(now); err != nil {
		c.mu.Unlock()
		return domain.View{}, fmt.Errorf("start %s timer: %w", target.Kind, err)
	}
	s := &activeSession{id: sessionID, target: target, startedAt: now, primary: primary}
	if target.Kind == domain.KindWorkout {
		s.sets = domain.NewSetLogs(*target.Routine)
	}
	c.active = s
	view := s.view(now)
	c.mu.Unlock()

	c.logger.Debug().Str("session_id", sessionID).Str("kind", string(target.Kind)).Str("target_id", target.ID()).Msg("session engaged")
	c.dispatch(domain.Event{Kind: domain.EventEngaged, SessionID: sessionID, SessionKind: target.Kind, At: now})
	return view, nil
}

// Resume rebuilds an engaged session from its persisted pointer, keeping the
// original start time and timer anchors.
func (c *Controller) Resume(pointer domain.ActiveSession) (domain.View, error) {
	target := pointer.Target()
	if err := target.Validate(); err != nil {
		return domain.View{}, err
	}
	if pointer.Primary == nil {
		return domain.View{}, apperrors.Invalid("primary", "pointer has no timer snapshot")
	}
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		if c.active.id == pointer.SessionID {
			return c.active.view(now), nil
		}
		return domain.View{}, fmt.Errorf("resume %s: %w", pointer.SessionID, apperrors.ErrActiveSessionExists)
	}
	primary, err := timerdomain.Restore(*pointer.Primary, c.cfg.TickUnit, now)
	if err != nil {
		return domain.View{}, fmt.Errorf("restore session timer: %w", err)
	}
	s := &activeSession{id: pointer.SessionID, target: target, startedAt: pointer.StartedAt, primary: primary}
	if target.Kind == domain.KindWorkout {
		s.sets = domain.NewSetLogs(*target.Routine)
		for id, sets := range pointer.Sets {
			if slots, ok := s.sets[id]; ok {
				copy(slots, sets)
			}
		}
	}
	if pointer.Rest != nil {
		rest, err := timerdomain.Restore(*pointer.Rest, c.cfg.TickUnit, now)
		if err == nil && rest.Running() && rest.Remaining(now) > 0 {
			s.rest = rest
		}
	}
	c.active = s
	return s.view(now), nil
}

func (c *Controller) Active() (domain.View, error) {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return domain.View{}, apperrors.ErrNoActiveSession
	}
	return c.active.view(now), nil
}

// Snapshot returns the persistable pointer of the active session.
func (c *Controller) Snapshot() (domain.ActiveSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.active
	if s == nil {
		return domain.ActiveSession{}, apperrors.ErrNoActiveSession
	}
	primary := s.primary.Snapshot()
	pointer := domain.ActiveSession{
		SchemaVersion: domain.SchemaVersion,
		SessionID:     s.id,
		Kind:          s.target.Kind,
		TargetID:      s.target.ID(),
		TargetTitle:   s.target.Title(),
		StartedAt:     s.startedAt,
		Primary:       &primary,
	}
	if s.target.Routine != nil {
		plan := *s.target.Routine
		pointer.Plan = &plan
		pointer.Sets = s.sets.Clone()
	}
	if s.rest != nil {
		rest := s.rest.Snapshot()
		pointer.Rest = &rest
	}
	return pointer, nil
}

// LogSet updates one set slot of the active workout. A slot whose reps go
// from zero to positive emits EventSetLogged.
func (c *Controller) LogSet(exerciseID string, index int, field domain.Field, value float64) (domain.View, error) {
	return c.logSet(exerciseID, index, func(sets domain.SetLogs) (bool, error) {
		return sets.Apply(exerciseID, index, field, value)
	})
}

// LogSetPair writes weight and reps of one slot at once; a rejected value
// leaves the slot unchanged.
func (c *Controller) LogSetPair(exerciseID string, index int, weight float64, reps int) (domain.View, error) {
	return c.logSet(exerciseID, index, func(sets domain.SetLogs) (bool, error) {
		return sets.ApplyPair(exerciseID, index, weight, reps)
	})
}

func (c *Controller) logSet(exerciseID string, index int, apply func(domain.SetLogs) (bool, error)) (domain.View, error) {
	now := c.clock.Now()
	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return domain.View{}, apperrors.ErrNoActiveSession
	}
	if s.target.Kind != domain.KindWorkout {
		c.mu.Unlock()
		return domain.View{}, apperrors.Invalid("kind", "sets are logged in workout sessions only")
	}
	if s.finalizedAt != nil {
		c.mu.Unlock()
		return domain.View{}, fmt.Errorf("log set: session is being finalized: %w", apperrors.ErrTerminalState)
	}
	completed, err := apply(s.sets)
	if err != nil {
		c.mu.Unlock()
		return domain.View{}, err
	}
	view := s.view(now)
	var ev *domain.Event
	if completed {
		ev = &domain.Event{
			Kind:        domain.EventSetLogged,
			SessionID:   s.id,
			SessionKind: s.target.Kind,
			At:          now,
			ExerciseID:  exerciseID,
			SetIndex:    index,
			Reps:        s.sets[exerciseID][index].Reps,
		}
	}
	c.mu.Unlock()

	if ev != nil {
		c.dispatch(*ev)
	}
	return view, nil
}

// StartRest (re)starts the rest countdown of session sessionID. A running
// rest period is replaced.
func (c *Controller) StartRest(sessionID string, duration time.Duration) error {
	now := c.clock.Now()
	c.mu.Lock()
	s := c.active
	if s == nil || s.id != sessionID {
		c.mu.Unlock()
		return apperrors.ErrNoActiveSession
	}
	rest, err := timerdomain.NewCountdown(duration, c.cfg.TickUnit)
	if err != nil {
		c.mu.Unlock()
		return apperrors.Invalid("rest_duration", "%v", err)
	}
	if s.rest != nil {
		s.rest.Stop(now)
	}
	if err := rest.Start(now); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("start rest: %w", err)
	}
	s.rest = rest
	kind := s.target.Kind
	c.mu.Unlock()

	c.dispatch(domain.Event{Kind: domain.EventRestStarted, SessionID: sessionID, SessionKind: kind, At: now})
	return nil
}

// Tick advances every timer of the active session to now. It reports false
// when no session is engaged.
func (c *Controller) Tick(now time.Time) (domain.View, bool) {
	view, _, ok := c.Advance(now)
	return view, ok
}

// Advance is Tick that also returns the session events the tick produced,
// such as a focus expiry or the end of a rest period.
func (c *Controller) Advance(now time.Time) (domain.View, []domain.Event, bool) {
	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return domain.View{}, nil, false
	}
	var events []domain.Event
	for _, ev := range s.primary.Advance(now) {
		if ev.Kind == timerdomain.EventExpired {
			events = append(events, s.openFeedback(now)...)
		}
	}
	if s.rest != nil {
		for _, ev := range s.rest.Advance(now) {
			if ev.Kind == timerdomain.EventExpired {
				s.rest = nil
				events = append(events, domain.Event{Kind: domain.EventRestExpired, SessionID: s.id, SessionKind: s.target.Kind, At: now})
			}
		}
	}
	view := s.view(now)
	c.mu.Unlock()

	c.dispatch(events...)
	return view, events, true
}

func (c *Controller) PauseFocus() (domain.View, error) {
	return c.withFocus(func(s *activeSession, now time.Time) ([]domain.Event, error) {
		if err := s.primary.Pause(now); err != nil {
			return nil, apperrors.Invalid("focus", "%v", err)
		}
		return nil, nil
	})
}

// StartFocus runs the focus countdown from idle (after a reset) or resumes
// it from paused.
func (c *Controller) StartFocus() (domain.View, error) {
	return c.withFocus(func(s *activeSession, now time.Time) ([]domain.Event, error) {
		if err := s.primary.Start(now); err != nil {
			return nil, fmt.Errorf("start focus: %w", apperrors.ErrTerminalState)
		}
		return nil, nil
	})
}

// ResetFocus returns the countdown to idle at the configured duration and
// closes any open feedback. Elapsed focus time earns nothing.
func (c *Controller) ResetFocus() (domain.View, error) {
	return c.withFocus(func(s *activeSession, _ time.Time) ([]domain.Event, error) {
		s.primary.Reset(c.cfg.FocusDuration)
		s.feedback = nil
		return nil, nil
	})
}

// CompleteFocus ends the countdown early and opens feedback.
func (c *Controller) CompleteFocus() (domain.View, error) {
	return c.withFocus(func(s *activeSession, now time.Time) ([]domain.Event, error) {
		if _, err := s.primary.Expire(now); err != nil {
			if errors.Is(err, timerdomain.ErrTimerFinished) && s.feedback != nil {
				return nil, nil
			}
			return nil, fmt.Errorf("complete focus: %w", apperrors.ErrTerminalState)
		}
		return s.openFeedback(now), nil
	})
}

func (c *Controller) Feedback() (domain.FeedbackPrompt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || c.active.feedback == nil {
		return domain.FeedbackPrompt{}, apperrors.ErrFeedbackNotOpen
	}
	return *c.active.feedback, nil
}

// Finalize stops the workout stopwatch and computes the log. The session
// stays engaged until Release, so a failed commit can be retried with the
// same log.
func (c *Controller) Finalize() (domain.WorkoutLog, error) {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.active
	if s == nil {
		return domain.WorkoutLog{}, apperrors.ErrNoActiveSession
	}
	if s.target.Kind != domain.KindWorkout {
		return domain.WorkoutLog{}, apperrors.Invalid("kind", "mission sessions complete through feedback")
	}
	if s.finalizedAt == nil {
		s.primary.Stop(now)
		if s.rest != nil {
			s.rest.Stop(now)
			s.rest = nil
		}
		at := now
		s.finalizedAt = &at
	}
	plan := s.target.Routine
	return domain.WorkoutLog{
		ID:              s.id,
		RoutineID:       plan.RoutineID,
		RoutineName:     plan.Name,
		TotalVolume:     s.sets.Volume(),
		DurationMinutes: domain.DurationMinutes(s.primary.Elapsed(*s.finalizedAt)),
		StartedAt:       s.startedAt,
		LoggedAt:        *s.finalizedAt,
		Exercises:       append([]domain.PlannedExercise(nil), plan.Exercises...),
		Sets:            s.sets.Clone(),
	}, nil
}

// Release ends session sessionID after its outcome has been committed.
func (c *Controller) Release(sessionID string) error {
	now := c.clock.Now()
	c.mu.Lock()
	s := c.active
	if s == nil || s.id != sessionID {
		c.mu.Unlock()
		return apperrors.ErrNoActiveSession
	}
	s.stop(now)
	c.active = nil
	c.mu.Unlock()

	c.dispatch(domain.Event{Kind: domain.EventEnded, SessionID: s.id, SessionKind: s.target.Kind, At: now})
	return nil
}

// Abandon stops every timer and discards the session. The returned view is
// the state that was dropped.
func (c *Controller) Abandon() (domain.View, error) {
	now := c.clock.Now()
	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return domain.View{}, apperrors.ErrNoActiveSession
	}
	view := s.view(now)
	s.stop(now)
	c.active = nil
	c.mu.Unlock()

	c.logger.Debug().Str("session_id", s.id).Msg("session abandoned")
	c.dispatch(domain.Event{Kind: domain.EventEnded, SessionID: s.id, SessionKind: s.target.Kind, At: now})
	return view, nil
}

func (c *Controller) withFocus(fn func(s *activeSession, now time.Time) ([]domain.Event, error)) (domain.View, error) {
	now := c.clock.Now()
	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return domain.View{}, apperrors.ErrNoActiveSession
	}
	if s.target.Kind != domain.KindMission {
		c.mu.Unlock()
		return domain.View{}, apperrors.Invalid("kind", "focus controls apply to mission sessions only")
	}
	events, err := fn(s, now)
	if err != nil {
		c.mu.Unlock()
		return domain.View{}, err
	}
	view := s.view(now)
	c.mu.Unlock()

	c.dispatch(events...)
	return view, nil
}

func (c *Controller) newPrimary(kind domain.Kind) (*timerdomain.Timer, error) {
	if kind.TimerMode() == timerdomain.ModeCountdown {
		return timerdomain.NewCountdown(c.cfg.FocusDuration, c.cfg.TickUnit)
	}
	return timerdomain.NewStopwatch(c.cfg.TickUnit)
}

func (c *Controller) dispatch(events ...domain.Event) {
	if len(events) == 0 {
		return
	}
	c.mu.Lock()
	listeners := append([]domain.Listener(nil), c.listeners...)
	c.mu.Unlock()
	for _, ev := range events {
		for _, l := range listeners {
			l(ev)
		}
	}
}

// openFeedback opens the prompt at most once per focus run.
func (s *activeSession) openFeedback(now time.Time) []domain.Event {
	if s.feedback != nil || s.target.Mission == nil {
		return nil
	}
	prompt := domain.NewFeedbackPrompt(s.id, *s.target.Mission, now)
	s.feedback = &prompt
	return []domain.Event{
		{Kind: domain.EventFocusExpired, SessionID: s.id, SessionKind: s.target.Kind, At: now},
		{Kind: domain.EventFeedbackOpened, SessionID: s.id, SessionKind: s.target.Kind, At: now},
	}
}

func (s *activeSession) stop(now time.Time) {
	s.primary.Stop(now)
	if s.rest != nil {
		s.rest.Stop(now)
		s.rest = nil
	}
	s.feedback = nil
}

func (s *activeSession) view(now time.Time) domain.View {
	v := domain.View{
		SessionID:   s.id,
		Kind:        s.target.Kind,
		TargetID:    s.target.ID(),
		TargetTitle: s.target.Title(),
		StartedAt:   s.startedAt,
		Elapsed:     s.primary.Elapsed(now),
		Finalizing:  s.finalizedAt != nil,
	}
	if s.target.Kind == domain.KindMission {
		v.Focus = &domain.TimerView{State: s.primary.State(), Elapsed: s.primary.Elapsed(now), Remaining: s.primary.Remaining(now)}
	}
	if s.rest != nil {
		v.Rest = &domain.TimerView{State: s.rest.State(), Elapsed: s.rest.Elapsed(now), Remaining: s.rest.Remaining(now)}
	}
	if s.target.Routine != nil {
		plan := *s.target.Routine
		v.Plan = &plan
		v.Sets = s.sets.Clone()
		v.Volume = s.sets.Volume()
	}
	if s.feedback != nil {
		prompt := *s.feedback
		v.Feedback = &prompt
	}
	return v
}
