package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	missiondomain "ascend/internal/modules/mission/domain"
	missiondto "ascend/internal/modules/mission/dto"
	missionin "ascend/internal/modules/mission/port/in"
	progressiondto "ascend/internal/modules/progression/dto"
	progressionin "ascend/internal/modules/progression/port/in"
	routinein "ascend/internal/modules/routine/port/in"
	"ascend/internal/modules/session/domain"
	sessiondto "ascend/internal/modules/session/dto"
	sessionin "ascend/internal/modules/session/port/in"
	sessionout "ascend/internal/modules/session/port/out"
	"ascend/internal/modules/session/service"
	timerdomain "ascend/internal/modules/timer/domain"
	"ascend/internal/platform/clock"
	apperrors "ascend/internal/platform/errors"
	"ascend/internal/platform/metrics"
	"ascend/internal/platform/retry"
	"ascend/internal/platform/tx"
)

type Deps struct {
	Controller  *service.Controller
	Service     *service.SessionService
	ActiveStore sessionout.ActiveSessionStore
	Probe       sessionout.OwnerProbe
	Missions    missionin.Usecase
	Routines    routinein.Usecase
	Progression progressionin.Usecase
	Tx          tx.Manager
	Clock       clock.Clock
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
	UserID      string
	// PID is recorded as the pointer owner.
	PID int
}

type Interactor struct {
	controller  *service.Controller
	svc         *service.SessionService
	activeStore sessionout.ActiveSessionStore
	probe       sessionout.OwnerProbe
	missions    missionin.Usecase
	routines    routinein.Usecase
	progression progressionin.Usecase
	tx          tx.Manager
	clock       clock.Clock
	metrics     *metrics.Metrics
	retry       retry.Config
	logger      zerolog.Logger
	userID      string
	pid         int
}

func NewInteractor(deps Deps) sessionin.Usecase {
	txm := deps.Tx
	if txm == nil {
		txm = tx.NoopManager{}
	}
	logger := deps.Logger.With().Str("component", "session_usecase").Logger()
	cfg := retry.DefaultConfig()
	cfg.OnRetry = func(attempt int, err error) {
		deps.Metrics.RecordCommitRetry()
		logger.Warn().Err(err).Int("attempt", attempt).Msg("retrying session commit")
	}
	return &Interactor{
		controller:  deps.Controller,
		svc:         deps.Service,
		activeStore: deps.ActiveStore,
		probe:       deps.Probe,
		missions:    deps.Missions,
		routines:    deps.Routines,
		progression: deps.Progression,
		tx:          txm,
		clock:       deps.Clock,
		metrics:     deps.Metrics,
		retry:       cfg,
		logger:      logger,
		userID:      deps.UserID,
		pid:         deps.PID,
	}
}

func (i *Interactor) EngageMission(ctx context.Context, missionID string) (sessiondto.SessionOutput, error) {
	mission, err := i.missions.Get(ctx, missionID)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if mission.Status == string(missiondomain.StatusDone) {
		return sessiondto.SessionOutput{}, fmt.Errorf("engage mission %s: %w", missionID, apperrors.ErrTerminalState)
	}
	target := domain.MissionTarget(mission.ID, mission.Title)
	return i.engage(ctx, target, func(ctx context.Context) error {
		_, err := i.missions.Begin(ctx, mission.ID)
		return err
	})
}

func (i *Interactor) EngageWorkout(ctx context.Context, routineID string) (sessiondto.SessionOutput, error) {
	routine, err := i.routines.Get(ctx, routineID)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	plan := domain.RoutinePlan{RoutineID: routine.ID, Name: routine.Name}
	for _, ex := range routine.Exercises {
		plan.Exercises = append(plan.Exercises, domain.PlannedExercise{ID: ex.ID, Name: ex.Name, TargetSets: ex.TargetSets})
	}
	return i.engage(ctx, domain.WorkoutTarget(plan), nil)
}

// engage claims the pointer, starts the in-memory session and then runs
// begin. Any failure unwinds the earlier steps.
func (i *Interactor) engage(ctx context.Context, target domain.Target, begin func(context.Context) error) (sessiondto.SessionOutput, error) {
	if view, err := i.controller.Active(); err == nil {
		return sessiondto.SessionOutput{}, fmt.Errorf("engage %s: session %s is active: %w", target.ID(), view.SessionID, apperrors.ErrActiveSessionExists)
	}
	sessionID := i.svc.NewSessionID()
	claim := domain.ActiveSession{
		SchemaVersion: domain.SchemaVersion,
		SessionID:     sessionID,
		Kind:          target.Kind,
		TargetID:      target.ID(),
		TargetTitle:   target.Title(),
		StartedAt:     i.clock.Now(),
		OwnerPID:      i.pid,
	}
	if err := i.activeStore.ClaimActive(ctx, claim); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	view, err := i.controller.Engage(sessionID, target)
	if err != nil {
		i.clearPointer(ctx)
		return sessiondto.SessionOutput{}, err
	}
	if begin != nil {
		if err := begin(ctx); err != nil {
			i.unwindEngage(ctx, target, false)
			return sessiondto.SessionOutput{}, err
		}
	}
	if err := i.persist(ctx); err != nil {
		i.unwindEngage(ctx, target, begin != nil)
		return sessiondto.SessionOutput{}, fmt.Errorf("engage %s: %w", target.ID(), err)
	}
	i.metrics.RecordSession(string(target.Kind), "engaged")
	i.logger.Info().Str("session_id", sessionID).Str("kind", string(target.Kind)).Str("target_id", target.ID()).Msg("session engaged")
	return toSessionOutput(view), nil
}

// unwindEngage undoes a partly engaged session: the in-memory session, the
// mission's in_progress mark when begun, and the pointer.
func (i *Interactor) unwindEngage(ctx context.Context, target domain.Target, begun bool) {
	if _, err := i.controller.Abandon(); err != nil {
		i.logger.Warn().Err(err).Str("target_id", target.ID()).Msg("unwind engaged session")
	}
	if begun && target.Kind == domain.KindMission {
		i.releaseMission(ctx, target.ID())
	}
	i.clearPointer(ctx)
}

func (i *Interactor) LogSet(ctx context.Context, input sessiondto.LogSetInput) (sessiondto.SessionOutput, error) {
	field := domain.Field(strings.ToLower(strings.TrimSpace(input.Field)))
	if _, err := i.controller.LogSet(input.ExerciseID, input.SetIndex, field, input.Value); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.afterLog(ctx)
}

func (i *Interactor) LogSetPair(ctx context.Context, input sessiondto.LogSetPairInput) (sessiondto.SessionOutput, error) {
	if _, err := i.controller.LogSetPair(input.ExerciseID, input.SetIndex, input.Weight, input.Reps); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.afterLog(ctx)
}

func (i *Interactor) afterLog(ctx context.Context) (sessiondto.SessionOutput, error) {
	// Listeners such as the rest coach have run by now; persist their effect too.
	if err := i.persist(ctx); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.Active(ctx)
}

// FinalizeWorkout stores the log and awards the workout in one transaction.
// On failure the session stays engaged with its sets so the call can be
// repeated.
func (i *Interactor) FinalizeWorkout(ctx context.Context) (sessiondto.WorkoutLogOutput, error) {
	log, err := i.controller.Finalize()
	if err != nil {
		return sessiondto.WorkoutLogOutput{}, err
	}
	log.UserID = i.userID

	var ledger progressiondto.LedgerOutput
	err = retry.Do(ctx, i.retry, func(ctx context.Context) error {
		return i.tx.Within(ctx, func(ctx context.Context) error {
			if err := i.svc.Record(ctx, log); err != nil {
				return err
			}
			out, err := i.progression.Award(ctx, progressiondto.AwardInput{Kind: string(domain.KindWorkout.AwardKind()), SourceID: log.ID})
			if err != nil {
				return err
			}
			ledger = out
			return nil
		})
	})
	if err != nil {
		i.metrics.RecordSession(string(domain.KindWorkout), "commit_failed")
		return sessiondto.WorkoutLogOutput{}, fmt.Errorf("finalize workout %s: %w", log.ID, err)
	}

	path, err := i.svc.Journal(ctx, log)
	if err != nil {
		i.logger.Warn().Err(err).Str("session_id", log.ID).Msg("workout journal not written")
	}
	i.end(ctx, log.ID, domain.KindWorkout, "completed")
	i.logger.Info().
		Str("session_id", log.ID).
		Float64("volume", log.TotalVolume).
		Int("duration_minutes", log.DurationMinutes).
		Msg("workout finalized")
	out := toLogOutput(log)
	out.JournalPath = path
	out.Ledger = ledger
	return out, nil
}

func (i *Interactor) Abandon(ctx context.Context) error {
	view, err := i.controller.Abandon()
	if err != nil {
		return err
	}
	if view.Kind == domain.KindMission {
		i.releaseMission(ctx, view.TargetID)
	}
	i.clearPointer(ctx)
	i.metrics.RecordSession(string(view.Kind), "abandoned")
	i.logger.Info().Str("session_id", view.SessionID).Msg("session abandoned")
	return nil
}

// Active reports the in-memory session, or a detached view of a session
// another process holds.
func (i *Interactor) Active(ctx context.Context) (sessiondto.SessionOutput, error) {
	view, err := i.controller.Active()
	if err == nil {
		return toSessionOutput(view), nil
	}
	pointer, perr := i.activeStore.LoadActive(ctx)
	if perr != nil {
		return sessiondto.SessionOutput{}, err
	}
	out := sessiondto.SessionOutput{
		SessionID:   pointer.SessionID,
		Kind:        string(pointer.Kind),
		TargetID:    pointer.TargetID,
		TargetTitle: pointer.TargetTitle,
		StartedAt:   pointer.StartedAt,
		Detached:    true,
	}
	if pointer.Primary != nil {
		now := i.clock.Now()
		if t, err := timerdomain.Restore(*pointer.Primary, timeUnit, now); err == nil {
			out.Elapsed = t.Elapsed(now)
			if pointer.Kind == domain.KindMission {
				out.FocusState = string(t.State())
				out.FocusRemaining = t.Remaining(now)
			}
		}
	}
	return out, nil
}

// Tick persists the session when the tick changed its state, so a detached
// reader sees an expired focus or a finished rest.
func (i *Interactor) Tick(ctx context.Context) (sessiondto.SessionOutput, bool) {
	view, events, ok := i.controller.Advance(i.clock.Now())
	if !ok {
		return sessiondto.SessionOutput{}, false
	}
	if len(events) > 0 {
		if err := i.persist(ctx); err != nil {
			i.logger.Warn().Err(err).Str("session_id", view.SessionID).Msg("persist session after tick")
		}
	}
	return toSessionOutput(view), true
}

func (i *Interactor) StartFocus(ctx context.Context) (sessiondto.SessionOutput, error) {
	return i.focusOp(ctx, i.controller.StartFocus)
}

func (i *Interactor) PauseFocus(ctx context.Context) (sessiondto.SessionOutput, error) {
	return i.focusOp(ctx, i.controller.PauseFocus)
}

func (i *Interactor) ResetFocus(ctx context.Context) (sessiondto.SessionOutput, error) {
	return i.focusOp(ctx, i.controller.ResetFocus)
}

func (i *Interactor) CompleteFocus(ctx context.Context) (sessiondto.SessionOutput, error) {
	return i.focusOp(ctx, i.controller.CompleteFocus)
}

func (i *Interactor) focusOp(ctx context.Context, op func() (domain.View, error)) (sessiondto.SessionOutput, error) {
	view, err := op()
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if err := i.persist(ctx); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return toSessionOutput(view), nil
}

// SubmitFeedback completes the mission with the captured feedback and its
// award in one commit. The prompt stays open if the commit fails.
func (i *Interactor) SubmitFeedback(ctx context.Context, input sessiondto.FeedbackInput) (sessiondto.FeedbackOutput, error) {
	prompt, err := i.controller.Feedback()
	if err != nil {
		return sessiondto.FeedbackOutput{}, err
	}
	fb, err := prompt.Answer(missionDifficulty(input.Difficulty), input.EnergyAfter)
	if err != nil {
		return sessiondto.FeedbackOutput{}, err
	}
	done, err := i.missions.Complete(ctx, missiondto.CompleteInput{
		MissionID: prompt.MissionID,
		Feedback:  &missiondto.FeedbackInput{Difficulty: string(fb.Difficulty), EnergyAfter: fb.EnergyAfter},
	})
	if err != nil {
		i.metrics.RecordSession(string(domain.KindMission), "commit_failed")
		return sessiondto.FeedbackOutput{}, fmt.Errorf("submit feedback for %s: %w", prompt.MissionID, err)
	}
	i.end(ctx, prompt.SessionID, domain.KindMission, "completed")
	return sessiondto.FeedbackOutput{Mission: done.Mission, Ledger: done.Ledger}, nil
}

// DismissFeedback ends the session without completing the mission, which
// returns to planned.
func (i *Interactor) DismissFeedback(ctx context.Context) error {
	prompt, err := i.controller.Feedback()
	if err != nil {
		return err
	}
	if _, err := i.controller.Abandon(); err != nil {
		return err
	}
	i.releaseMission(ctx, prompt.MissionID)
	i.clearPointer(ctx)
	i.metrics.RecordSession(string(domain.KindMission), "dismissed")
	return nil
}

// Reconcile is run once per process before session commands. Focus
// sessions of a process that is gone are discarded and their mission goes
// back to planned; workouts are resumed with their logged sets.
func (i *Interactor) Reconcile(ctx context.Context) (sessiondto.ReconcileOutput, error) {
	pointer, err := i.activeStore.LoadActive(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return sessiondto.ReconcileOutput{Outcome: sessiondto.ReconcileNone}, nil
	}
	if errors.Is(err, domain.ErrUnreadablePointer) {
		return i.reconcileUnreadable(ctx, err)
	}
	if err != nil {
		return sessiondto.ReconcileOutput{}, err
	}
	out := sessiondto.ReconcileOutput{SessionID: pointer.SessionID, Kind: string(pointer.Kind), TargetID: pointer.TargetID}

	if view, err := i.controller.Active(); err == nil && view.SessionID == pointer.SessionID {
		out.Outcome = sessiondto.ReconcileAttached
		return out, nil
	}
	if pointer.OwnerPID != 0 && pointer.OwnerPID != i.pid && i.probe != nil && i.probe.Alive(pointer.OwnerPID) {
		out.Outcome = sessiondto.ReconcileForeign
		return out, nil
	}

	switch pointer.Kind {
	case domain.KindWorkout:
		if _, err := i.controller.Resume(pointer); err != nil {
			return sessiondto.ReconcileOutput{}, err
		}
		if err := i.persist(ctx); err != nil {
			return sessiondto.ReconcileOutput{}, err
		}
		out.Outcome = sessiondto.ReconcileResumed
	default:
		i.releaseMission(ctx, pointer.TargetID)
		if err := i.activeStore.ClearActive(ctx); err != nil {
			return sessiondto.ReconcileOutput{}, err
		}
		i.metrics.RecordSession(string(pointer.Kind), "interrupted")
		out.Outcome = sessiondto.ReconcileDiscarded
	}
	i.logger.Info().Str("session_id", pointer.SessionID).Str("outcome", out.Outcome).Msg("active session reconciled")
	return out, nil
}

// reconcileUnreadable replaces a pointer that cannot be decoded. An
// in-memory session rewrites it; otherwise it is cleared and missions left
// in_progress by the lost session go back to planned.
func (i *Interactor) reconcileUnreadable(ctx context.Context, cause error) (sessiondto.ReconcileOutput, error) {
	if view, err := i.controller.Active(); err == nil {
		if err := i.persist(ctx); err != nil {
			return sessiondto.ReconcileOutput{}, err
		}
		i.logger.Warn().Err(cause).Str("session_id", view.SessionID).Msg("rewrote unreadable active session pointer")
		return sessiondto.ReconcileOutput{Outcome: sessiondto.ReconcileAttached, SessionID: view.SessionID, Kind: string(view.Kind), TargetID: view.TargetID}, nil
	}
	i.logger.Warn().Err(cause).Msg("discarding unreadable active session pointer")
	if err := i.activeStore.ClearActive(ctx); err != nil {
		return sessiondto.ReconcileOutput{}, err
	}
	stuck, err := i.missions.List(ctx, missiondto.ListInput{Status: string(missiondomain.StatusInProgress)})
	if err != nil {
		i.logger.Warn().Err(err).Msg("list in_progress missions")
	}
	for _, m := range stuck {
		i.releaseMission(ctx, m.ID)
	}
	i.metrics.RecordSession("unknown", "interrupted")
	return sessiondto.ReconcileOutput{Outcome: sessiondto.ReconcileDiscarded}, nil
}

func (i *Interactor) History(ctx context.Context, limit int) ([]sessiondto.WorkoutLogOutput, error) {
	logs, err := i.svc.History(ctx, i.userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]sessiondto.WorkoutLogOutput, 0, len(logs))
	for _, l := range logs {
		out = append(out, toLogOutput(l))
	}
	return out, nil
}

func (i *Interactor) persist(ctx context.Context) error {
	pointer, err := i.controller.Snapshot()
	if err != nil {
		return err
	}
	pointer.OwnerPID = i.pid
	return i.activeStore.SaveActive(ctx, pointer)
}

func (i *Interactor) end(ctx context.Context, sessionID string, kind domain.Kind, outcome string) {
	if err := i.controller.Release(sessionID); err != nil {
		i.logger.Warn().Err(err).Str("session_id", sessionID).Msg("release session")
	}
	i.clearPointer(ctx)
	i.metrics.RecordSession(string(kind), outcome)
}

func (i *Interactor) clearPointer(ctx context.Context) {
	if err := i.activeStore.ClearActive(ctx); err != nil {
		i.logger.Warn().Err(err).Msg("clear active session pointer")
	}
}

func (i *Interactor) releaseMission(ctx context.Context, missionID string) {
	err := i.missions.Release(ctx, missionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrTerminalState) {
		i.logger.Warn().Err(err).Str("mission_id", missionID).Msg("release mission")
	}
}
