package service_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ascend/internal/modules/session/domain"
	"ascend/internal/modules/session/service"
	timerdomain "ascend/internal/modules/timer/domain"
	apperrors "ascend/internal/platform/errors"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) handle(ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count(kind domain.EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

const restDuration = 90 * time.Second

func newController(t *testing.T) (*service.Controller, *manualClock, *recorder) {
	t.Helper()
	clk := newManualClock()
	c, err := service.NewController(clk, service.ControllerConfig{FocusDuration: 1500 * time.Second, TickUnit: time.Second}, zerolog.Nop())
	require.NoError(t, err)
	service.NewRestCoach(c, restDuration, zerolog.Nop()).Attach()
	rec := &recorder{}
	c.Subscribe(rec.handle)
	return c, clk, rec
}

func pushDay() domain.Target {
	return domain.WorkoutTarget(domain.RoutinePlan{
		RoutineID: "push",
		Name:      "Push day",
		Exercises: []domain.PlannedExercise{{ID: "bench", Name: "Bench", TargetSets: 3}},
	})
}

func TestEngageWhileActiveConflictsAndKeepsState(t *testing.T) {
	c, clk, _ := newController(t)
	_, err := c.Engage("s1", pushDay())
	require.NoError(t, err)
	_, err = c.LogSet("bench", 0, domain.FieldWeight, 40)
	require.NoError(t, err)
	clk.Advance(time.Minute)
	before, err := c.Active()
	require.NoError(t, err)

	_, err = c.Engage("s2", domain.MissionTarget("m1", "Essay"))
	assert.True(t, errors.Is(err, apperrors.ErrActiveSessionExists))

	after, err := c.Active()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, "s1", after.SessionID)
}

func TestEngagePreSizesSetLogs(t *testing.T) {
	c, _, rec := newController(t)
	view, err := c.Engage("s1", pushDay())
	require.NoError(t, err)
	assert.Equal(t, domain.KindWorkout, view.Kind)
	assert.Equal(t, []domain.SetLog{{}, {}, {}}, view.Sets["bench"])
	assert.Nil(t, view.Focus)
	assert.Equal(t, 1, rec.count(domain.EventEngaged))
}

func TestRestStartsOnlyWhenRepsBecomePositive(t *testing.T) {
	c, clk, rec := newController(t)
	_, err := c.Engage("s1", pushDay())
	require.NoError(t, err)

	view, err := c.LogSet("bench", 0, domain.FieldReps, 0)
	require.NoError(t, err)
	assert.Nil(t, view.Rest)
	view, _ = c.Active()
	assert.Nil(t, view.Rest, "zero reps must not start a rest period")

	_, err = c.LogSet("bench", 0, domain.FieldReps, 10)
	require.NoError(t, err)
	view, _ = c.Active()
	require.NotNil(t, view.Rest)
	assert.Equal(t, restDuration, view.Rest.Remaining)
	assert.Equal(t, 1, rec.count(domain.EventRestStarted))

	clk.Advance(30 * time.Second)
	c.Tick(clk.Now())
	_, err = c.LogSet("bench", 1, domain.FieldReps, 8)
	require.NoError(t, err)
	view, _ = c.Active()
	require.NotNil(t, view.Rest)
	assert.Equal(t, restDuration, view.Rest.Remaining, "a new set restarts rest at the full duration")

	_, err = c.LogSet("bench", 1, domain.FieldReps, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.count(domain.EventRestStarted), "editing a completed set does not restart rest")
}

func TestRestExpiryClearsRestOnly(t *testing.T) {
	c, clk, rec := newController(t)
	_, err := c.Engage("s1", pushDay())
	require.NoError(t, err)
	_, err = c.LogSet("bench", 0, domain.FieldReps, 5)
	require.NoError(t, err)

	view, ok := c.Tick(clk.Advance(restDuration))
	require.True(t, ok)
	assert.Nil(t, view.Rest)
	assert.Equal(t, 1, rec.count(domain.EventRestExpired))
	assert.Equal(t, restDuration, view.Elapsed, "session stopwatch keeps running")

	c.Tick(clk.Advance(time.Hour))
	assert.Equal(t, 1, rec.count(domain.EventRestExpired))
}

func TestFinalizeComputesVolumeAndFlooredDuration(t *testing.T) {
	c, clk, _ := newController(t)
	_, err := c.Engage("s1", pushDay())
	require.NoError(t, err)
	for i, set := range []domain.SetLog{{Weight: 40, Reps: 10}, {Weight: 40, Reps: 8}, {}} {
		_, err := c.LogSet("bench", i, domain.FieldWeight, set.Weight)
		require.NoError(t, err)
		_, err = c.LogSet("bench", i, domain.FieldReps, float64(set.Reps))
		require.NoError(t, err)
	}
	clk.Advance(12*time.Minute + 59*time.Second)

	log, err := c.Finalize()
	require.NoError(t, err)
	assert.Equal(t, 720.0, log.TotalVolume)
	assert.Equal(t, 12, log.DurationMinutes)
	assert.Equal(t, "s1", log.ID)
	assert.Equal(t, "push", log.RoutineID)

	clk.Advance(10 * time.Minute)
	again, err := c.Finalize()
	require.NoError(t, err)
	assert.Equal(t, log, again, "a retried finalize reproduces the same log")

	_, err = c.LogSet("bench", 2, domain.FieldReps, 5)
	assert.True(t, errors.Is(err, apperrors.ErrTerminalState))

	require.NoError(t, c.Release("s1"))
	_, err = c.Active()
	assert.True(t, errors.Is(err, apperrors.ErrNoActiveSession))
}

func TestOperationsWithoutSessionFail(t *testing.T) {
	c, clk, _ := newController(t)
	_, err := c.Finalize()
	assert.True(t, errors.Is(err, apperrors.ErrNoActiveSession))
	_, err = c.LogSet("bench", 0, domain.FieldReps, 1)
	assert.True(t, errors.Is(err, apperrors.ErrNoActiveSession))
	_, err = c.Abandon()
	assert.True(t, errors.Is(err, apperrors.ErrNoActiveSession))
	_, ok := c.Tick(clk.Now())
	assert.False(t, ok)
}

func TestFocusExpiryOpensFeedbackExactlyOnce(t *testing.T) {
	c, clk, rec := newController(t)
	view, err := c.Engage("s1", domain.MissionTarget("m1", "Essay"))
	require.NoError(t, err)
	require.NotNil(t, view.Focus)
	assert.Equal(t, timerdomain.StateRunning, view.Focus.State)
	assert.Equal(t, 1500*time.Second, view.Focus.Remaining)

	_, err = c.Feedback()
	assert.True(t, errors.Is(err, apperrors.ErrFeedbackNotOpen))

	for i := 0; i < 1499; i++ {
		c.Tick(clk.Advance(time.Second))
	}
	assert.Equal(t, 0, rec.count(domain.EventFocusExpired))
	view, _ = c.Tick(clk.Advance(time.Second))
	assert.Equal(t, timerdomain.StateExpired, view.Focus.State)
	c.Tick(clk.Advance(time.Minute))

	assert.Equal(t, 1, rec.count(domain.EventFocusExpired))
	assert.Equal(t, 1, rec.count(domain.EventFeedbackOpened))
	prompt, err := c.Feedback()
	require.NoError(t, err)
	assert.Equal(t, "m1", prompt.MissionID)

	_, err = c.CompleteFocus()
	require.NoError(t, err, "completing an already expired focus is a no-op")
	assert.Equal(t, 1, rec.count(domain.EventFeedbackOpened))
}

func TestResetFromExpiredReturnsToIdleAtFullDuration(t *testing.T) {
	c, clk, _ := newController(t)
	_, err := c.Engage("s1", domain.MissionTarget("m1", "Essay"))
	require.NoError(t, err)
	c.Tick(clk.Advance(1500 * time.Second))

	view, err := c.ResetFocus()
	require.NoError(t, err)
	assert.Equal(t, timerdomain.StateIdle, view.Focus.State)
	assert.Equal(t, 1500*time.Second, view.Focus.Remaining)
	assert.Nil(t, view.Feedback)

	c.Tick(clk.Advance(time.Hour))
	view, _ = c.Active()
	assert.Equal(t, timerdomain.StateIdle, view.Focus.State, "idle focus does not run")

	view, err = c.StartFocus()
	require.NoError(t, err)
	assert.Equal(t, timerdomain.StateRunning, view.Focus.State)
}

func TestPauseFocusSuspendsCountdown(t *testing.T) {
	c, clk, _ := newController(t)
	_, err := c.Engage("s1", domain.MissionTarget("m1", "Essay"))
	require.NoError(t, err)
	clk.Advance(100 * time.Second)
	_, err = c.PauseFocus()
	require.NoError(t, err)
	clk.Advance(time.Hour)
	_, err = c.StartFocus()
	require.NoError(t, err)
	view, _ := c.Tick(clk.Advance(50 * time.Second))
	assert.Equal(t, 1350*time.Second, view.Focus.Remaining)
}

func TestCompleteFocusEarlyOpensFeedback(t *testing.T) {
	c, clk, rec := newController(t)
	_, err := c.Engage("s1", domain.MissionTarget("m1", "Essay"))
	require.NoError(t, err)
	clk.Advance(10 * time.Minute)
	view, err := c.CompleteFocus()
	require.NoError(t, err)
	assert.Equal(t, timerdomain.StateExpired, view.Focus.State)
	require.NotNil(t, view.Feedback)
	assert.Equal(t, 1, rec.count(domain.EventFeedbackOpened))

	c.Tick(clk.Advance(time.Hour))
	assert.Equal(t, 1, rec.count(domain.EventFeedbackOpened))
}

func TestFocusControlsRejectWorkouts(t *testing.T) {
	c, _, _ := newController(t)
	_, err := c.Engage("s1", pushDay())
	require.NoError(t, err)
	_, err = c.PauseFocus()
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestAbandonStopsAllTimers(t *testing.T) {
	c, clk, rec := newController(t)
	_, err := c.Engage("s1", pushDay())
	require.NoError(t, err)
	_, err = c.LogSet("bench", 0, domain.FieldReps, 10)
	require.NoError(t, err)

	dropped, err := c.Abandon()
	require.NoError(t, err)
	assert.Equal(t, "s1", dropped.SessionID)
	assert.Equal(t, 1, rec.count(domain.EventEnded))

	c.Tick(clk.Advance(restDuration * 2))
	assert.Equal(t, 0, rec.count(domain.EventRestExpired), "no orphaned rest countdown")
	assert.Error(t, c.StartRest("s1", restDuration))

	_, err = c.Engage("s2", domain.MissionTarget("m1", "Essay"))
	assert.NoError(t, err, "abandon releases the single-session lock")
}

func TestSnapshotResumeKeepsSetsAndAnchors(t *testing.T) {
	c, clk, _ := newController(t)
	_, err := c.Engage("s1", pushDay())
	require.NoError(t, err)
	_, err = c.LogSet("bench", 0, domain.FieldWeight, 50)
	require.NoError(t, err)
	_, err = c.LogSet("bench", 0, domain.FieldReps, 5)
	require.NoError(t, err)
	clk.Advance(30 * time.Second)
	pointer, err := c.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, pointer.Rest)

	other, err := service.NewController(clk, service.ControllerConfig{FocusDuration: time.Minute, TickUnit: time.Second}, zerolog.Nop())
	require.NoError(t, err)
	clk.Advance(30 * time.Second)
	view, err := other.Resume(pointer)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, view.Elapsed)
	assert.Equal(t, domain.SetLog{Weight: 50, Reps: 5}, view.Sets["bench"][0])
	require.NotNil(t, view.Rest)
	assert.Equal(t, 30*time.Second, view.Rest.Remaining)

	_, err = other.Resume(domain.ActiveSession{SessionID: "s9", Kind: domain.KindMission, TargetID: "m", Primary: pointer.Primary})
	assert.True(t, errors.Is(err, apperrors.ErrActiveSessionExists))
}

func TestLogSetPairIsAllOrNothing(t *testing.T) {
	c, _, rec := newController(t)
	_, err := c.Engage("s1", pushDay())
	require.NoError(t, err)

	_, err = c.LogSetPair("bench", 0, 40, -5)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	view, err := c.Active()
	require.NoError(t, err)
	assert.Zero(t, view.Sets["bench"][0])
	assert.Zero(t, rec.count(domain.EventSetLogged))

	view, err = c.LogSetPair("bench", 0, 40, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.SetLog{Weight: 40, Reps: 10}, view.Sets["bench"][0])
	assert.Equal(t, 400.0, view.Volume)
	assert.Equal(t, 1, rec.count(domain.EventSetLogged))
	resting, err := c.Active()
	require.NoError(t, err)
	assert.NotNil(t, resting.Rest)
}

func TestAdvanceReportsFocusExpiry(t *testing.T) {
	c, clk, _ := newController(t)
	_, err := c.Engage("s1", domain.MissionTarget("m1", "Essay"))
	require.NoError(t, err)

	_, events, ok := c.Advance(clk.Advance(time.Minute))
	require.True(t, ok)
	assert.Empty(t, events)

	view, events, ok := c.Advance(clk.Advance(1500 * time.Second))
	require.True(t, ok)
	assert.NotNil(t, view.Feedback)
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventFocusExpired, events[0].Kind)
}
