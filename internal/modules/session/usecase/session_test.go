package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	missionout "ascend/internal/modules/mission/adapter/out"
	missiondto "ascend/internal/modules/mission/dto"
	missionin "ascend/internal/modules/mission/port/in"
	missionservice "ascend/internal/modules/mission/service"
	missionusecase "ascend/internal/modules/mission/usecase"
	progressionout "ascend/internal/modules/progression/adapter/out"
	progressiondomain "ascend/internal/modules/progression/domain"
	progressiondto "ascend/internal/modules/progression/dto"
	progressionin "ascend/internal/modules/progression/port/in"
	progressionservice "ascend/internal/modules/progression/service"
	progressionusecase "ascend/internal/modules/progression/usecase"
	routineout "ascend/internal/modules/routine/adapter/out"
	routinedto "ascend/internal/modules/routine/dto"
	routinein "ascend/internal/modules/routine/port/in"
	routineservice "ascend/internal/modules/routine/service"
	routineusecase "ascend/internal/modules/routine/usecase"
	sessionin "ascend/internal/modules/session/adapter/in"
	sessionout "ascend/internal/modules/session/adapter/out"
	sessiondomain "ascend/internal/modules/session/domain"
	sessiondto "ascend/internal/modules/session/dto"
	sessionport "ascend/internal/modules/session/port/in"
	sessionoutport "ascend/internal/modules/session/port/out"
	"ascend/internal/modules/session/service"
	"ascend/internal/modules/session/usecase"
	apperrors "ascend/internal/platform/errors"
	"ascend/internal/platform/id"
	"ascend/internal/platform/sqlitedb"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// flakyProgression fails the next failures awards with a transient error.
type flakyProgression struct {
	progressionin.Usecase
	mu       sync.Mutex
	failures int
}

func (f *flakyProgression) Award(ctx context.Context, input progressiondto.AwardInput) (progressiondto.LedgerOutput, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return progressiondto.LedgerOutput{}, apperrors.Unavailable("store", errors.New("database is locked"))
	}
	f.mu.Unlock()
	return f.Usecase.Award(ctx, input)
}

// failingSaveStore rejects pointer rewrites while fail is set.
type failingSaveStore struct {
	sessionoutport.ActiveSessionStore
	fail bool
}

func (s *failingSaveStore) SaveActive(ctx context.Context, session sessiondomain.ActiveSession) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.ActiveSessionStore.SaveActive(ctx, session)
}

type probe map[int]bool

func (p probe) Alive(pid int) bool { return p[pid] }

type env struct {
	dir         string
	db          *sqlitedb.DB
	clock       *manualClock
	missions    missionin.Usecase
	routines    routinein.Usecase
	progression *flakyProgression
	probe       probe
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlitedb.Open(filepath.Join(dir, ".ascend", "ascend.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	clk := &manualClock{now: time.Date(2026, 10, 19, 6, 30, 0, 0, time.UTC)}
	ranks, err := progressiondomain.NewRankTable([]progressiondomain.Rank{{Title: "Recruit"}, {Title: "Adept", MinExperience: 500}})
	if err != nil {
		t.Fatalf("ranks: %v", err)
	}
	progression := &flakyProgression{Usecase: progressionusecase.NewInteractor(
		progressionservice.NewLedgerService(clk, progressionout.NewSQLiteLedgerStore(db), progressionout.NewSQLiteStatsSource(db), ranks, nil, zerolog.Nop()),
		"me",
	)}
	missions := missionusecase.NewInteractor(
		missionservice.NewMissionService(clk, id.UUID{}, missionout.NewSQLiteMissionStore(db, clk), zerolog.Nop()),
		progression, db, "me", nil, zerolog.Nop(),
	)
	routines := routineusecase.NewInteractor(
		routineservice.NewRoutineService(clk, id.UUID{}, routineout.NewSQLiteRoutineStore(db, clk), zerolog.Nop()),
		"me",
	)
	return &env{dir: dir, db: db, clock: clk, missions: missions, routines: routines, progression: progression, probe: probe{}}
}

// process builds the session stack one process would own; processes of the
// same env share the database and the pointer file.
func (e *env) process(t *testing.T, pid int) sessionport.Usecase {
	t.Helper()
	return e.processWithStore(t, pid, sessionout.NewFileActiveSessionStore(e.pointerPath()))
}

func (e *env) pointerPath() string {
	return filepath.Join(e.dir, ".ascend", "active-session.json")
}

func (e *env) processWithStore(t *testing.T, pid int, store sessionoutport.ActiveSessionStore) sessionport.Usecase {
	t.Helper()
	controller, err := service.NewController(e.clock, service.ControllerConfig{FocusDuration: 1500 * time.Second, TickUnit: time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	service.NewRestCoach(controller, 90*time.Second, zerolog.Nop()).Attach()
	return usecase.NewInteractor(usecase.Deps{
		Controller:  controller,
		Service:     service.NewSessionService(id.UUID{}, sessionout.NewSQLiteWorkoutLogStore(e.db), sessionout.NewVaultLogJournal(filepath.Join(e.dir, "journal")), zerolog.Nop()),
		ActiveStore: store,
		Probe:       e.probe,
		Missions:    e.missions,
		Routines:    e.routines,
		Progression: e.progression,
		Tx:          e.db,
		Clock:       e.clock,
		Logger:      zerolog.Nop(),
		UserID:      "me",
		PID:         pid,
	})
}

func (e *env) pushDay(t *testing.T) routinedto.RoutineOutput {
	t.Helper()
	routine, err := e.routines.Save(context.Background(), routinedto.SaveInput{
		Name:      "Push day",
		Exercises: []routinedto.ExerciseInput{{ID: "bench", Name: "Bench press", MuscleGroup: "chest", TargetSets: 3, RepMin: 6, RepMax: 10}},
	})
	if err != nil {
		t.Fatalf("save routine: %v", err)
	}
	return routine
}

func TestFocusSessionEndToEnd(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := e.process(t, 100)

	mission, err := e.missions.Create(ctx, missiondto.CreateInput{Title: "Write report", Category: "admin", Priority: "critical"})
	if err != nil {
		t.Fatalf("create mission: %v", err)
	}
	if mission.Impact != 100 {
		t.Fatalf("critical mission impact = %d, want 100", mission.Impact)
	}

	started, err := uc.EngageMission(ctx, mission.ID)
	if err != nil {
		t.Fatalf("engage: %v", err)
	}
	if started.FocusState != "running" || started.FocusRemaining != 1500*time.Second {
		t.Fatalf("unexpected focus state: %+v", started)
	}
	engaged, _ := e.missions.Get(ctx, mission.ID)
	if engaged.Status != "in_progress" {
		t.Fatalf("engaged mission should be in_progress, got %s", engaged.Status)
	}

	e.clock.Advance(1500 * time.Second)
	view, ok := uc.Tick(ctx)
	if !ok || view.FocusState != "expired" || !view.FeedbackOpen {
		t.Fatalf("countdown should expire into feedback: %+v", view)
	}

	out, err := uc.SubmitFeedback(ctx, sessiondto.FeedbackInput{Difficulty: "normal", EnergyAfter: 7})
	if err != nil {
		t.Fatalf("submit feedback: %v", err)
	}
	if out.Mission.Status != "done" || out.Mission.CompletedAt == nil || out.Mission.Difficulty != "normal" || out.Mission.EnergyAfter != 7 {
		t.Fatalf("unexpected mission after feedback: %+v", out.Mission)
	}
	if out.Ledger.Experience != 50 || out.Ledger.MissionsCompleted != 1 {
		t.Fatalf("expected +50 xp, got %+v", out.Ledger)
	}
	if _, err := uc.Active(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("session should be over, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(e.dir, ".ascend", "active-session.json")); !os.IsNotExist(err) {
		t.Fatalf("pointer should be cleared, stat err %v", err)
	}
}

func TestWorkoutSessionEndToEnd(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := e.process(t, 100)
	handler := sessionin.NewCLIHandler(uc)
	routine := e.pushDay(t)

	if _, err := handler.StartWorkout(ctx, routine.ID); err != nil {
		t.Fatalf("start workout: %v", err)
	}
	for i, set := range []struct {
		weight float64
		reps   int
	}{{40, 10}, {40, 8}, {0, 0}} {
		if _, err := handler.LogSetPair(ctx, "bench", i, set.weight, set.reps); err != nil {
			t.Fatalf("log set %d: %v", i, err)
		}
	}
	e.clock.Advance(25*time.Minute + 30*time.Second)

	log, err := handler.FinishWorkout(ctx)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if log.TotalVolume != 720 {
		t.Fatalf("volume = %v, want 720", log.TotalVolume)
	}
	if log.DurationMinutes != 25 {
		t.Fatalf("duration = %d, want 25", log.DurationMinutes)
	}
	if log.Ledger.Experience != 150 || log.Ledger.WorkoutsCompleted != 1 {
		t.Fatalf("expected +150 xp for a workout, got %+v", log.Ledger)
	}
	note, err := os.ReadFile(log.JournalPath)
	if err != nil {
		t.Fatalf("journal note: %v", err)
	}
	if !strings.Contains(string(note), "total_volume: 720") || !strings.Contains(string(note), "| 2 | 40 | 8 |") {
		t.Fatalf("unexpected journal note:\n%s", note)
	}

	history, err := handler.History(ctx, 10)
	if err != nil || len(history) != 1 || history[0].TotalVolume != 720 {
		t.Fatalf("unexpected history: %v %+v", err, history)
	}
}

func TestRestStartsFromLoggedSetAndIsPersisted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := e.process(t, 100)
	routine := e.pushDay(t)
	if _, err := uc.EngageWorkout(ctx, routine.ID); err != nil {
		t.Fatalf("engage: %v", err)
	}

	view, err := uc.LogSet(ctx, sessiondto.LogSetInput{ExerciseID: "bench", SetIndex: 0, Field: "reps", Value: 0})
	if err != nil || view.Resting {
		t.Fatalf("zero reps must not start rest: %v %+v", err, view)
	}
	view, err = uc.LogSet(ctx, sessiondto.LogSetInput{ExerciseID: "bench", SetIndex: 0, Field: "Reps", Value: 6})
	if err != nil || !view.Resting || view.RestRemaining != 90*time.Second {
		t.Fatalf("rest should start at 90s: %v %+v", err, view)
	}
	if _, err := uc.LogSet(ctx, sessiondto.LogSetInput{ExerciseID: "bench", SetIndex: 5, Field: "reps", Value: 1}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("out of range set should be invalid, got %v", err)
	}

	// A later process resumes the workout with the rest period still running.
	e.clock.Advance(30 * time.Second)
	next := e.process(t, 200)
	rec, err := next.Reconcile(ctx)
	if err != nil || rec.Outcome != sessiondto.ReconcileResumed {
		t.Fatalf("expected resume: %v %+v", err, rec)
	}
	resumed, err := next.Active(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if resumed.Detached || !resumed.Resting || resumed.RestRemaining != 60*time.Second || resumed.Exercises[0].Sets[0].Reps != 6 {
		t.Fatalf("unexpected resumed session: %+v", resumed)
	}
}

func TestEngageWhileActiveConflicts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := e.process(t, 100)
	first, _ := e.missions.Create(ctx, missiondto.CreateInput{Title: "One", Category: "study", Priority: "low"})
	second, _ := e.missions.Create(ctx, missiondto.CreateInput{Title: "Two", Category: "study", Priority: "low"})

	if _, err := uc.EngageMission(ctx, first.ID); err != nil {
		t.Fatalf("engage: %v", err)
	}
	if _, err := uc.EngageMission(ctx, second.ID); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("second engage should conflict, got %v", err)
	}
	e.probe[100] = true
	other := e.process(t, 200)
	if rec, _ := other.Reconcile(ctx); rec.Outcome != sessiondto.ReconcileForeign {
		t.Fatalf("live owner should be left alone, got %+v", rec)
	}
	if _, err := other.EngageMission(ctx, second.ID); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("engage from another process should conflict, got %v", err)
	}
	detached, err := other.Active(ctx)
	if err != nil || !detached.Detached || detached.TargetID != first.ID {
		t.Fatalf("other process should see a detached session: %v %+v", err, detached)
	}

	untouched, _ := e.missions.Get(ctx, second.ID)
	if untouched.Status != "planned" {
		t.Fatalf("rejected engage must not touch the mission: %s", untouched.Status)
	}
	active, _ := uc.Active(ctx)
	if active.TargetID != first.ID {
		t.Fatalf("active session changed: %+v", active)
	}
}

func TestFinalizeCommitFailurePreservesSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := e.process(t, 100)
	routine := e.pushDay(t)
	if _, err := uc.EngageWorkout(ctx, routine.ID); err != nil {
		t.Fatalf("engage: %v", err)
	}
	if _, err := uc.LogSet(ctx, sessiondto.LogSetInput{ExerciseID: "bench", SetIndex: 0, Field: "weight", Value: 60}); err != nil {
		t.Fatalf("log weight: %v", err)
	}
	if _, err := uc.LogSet(ctx, sessiondto.LogSetInput{ExerciseID: "bench", SetIndex: 0, Field: "reps", Value: 5}); err != nil {
		t.Fatalf("log reps: %v", err)
	}

	e.progression.failures = 10
	if _, err := uc.FinalizeWorkout(ctx); !errors.Is(err, apperrors.ErrCollaboratorUnavailable) {
		t.Fatalf("expected collaborator failure, got %v", err)
	}
	kept, err := uc.Active(ctx)
	if err != nil || kept.Exercises[0].Sets[0].Reps != 5 {
		t.Fatalf("logged sets must survive a failed commit: %v %+v", err, kept)
	}
	history, _ := uc.History(ctx, 10)
	if len(history) != 0 {
		t.Fatalf("failed commit must not leave a log: %+v", history)
	}

	e.progression.failures = 1
	log, err := uc.FinalizeWorkout(ctx)
	if err != nil {
		t.Fatalf("retry finalize: %v", err)
	}
	if log.TotalVolume != 300 || log.Ledger.Experience != 150 {
		t.Fatalf("unexpected log after retry: %+v", log)
	}
}

func TestDismissFeedbackKeepsMissionPlanned(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := e.process(t, 100)
	mission, _ := e.missions.Create(ctx, missiondto.CreateInput{Title: "Read", Category: "spiritual", Priority: "medium"})
	if _, err := uc.EngageMission(ctx, mission.ID); err != nil {
		t.Fatalf("engage: %v", err)
	}
	if err := uc.DismissFeedback(ctx); !errors.Is(err, apperrors.ErrFeedbackNotOpen) {
		t.Fatalf("dismiss without prompt should fail, got %v", err)
	}
	if _, err := uc.SubmitFeedback(ctx, sessiondto.FeedbackInput{}); !errors.Is(err, apperrors.ErrFeedbackNotOpen) {
		t.Fatalf("submit without prompt should fail, got %v", err)
	}
	if _, err := uc.CompleteFocus(ctx); err != nil {
		t.Fatalf("complete focus: %v", err)
	}
	if _, err := uc.SubmitFeedback(ctx, sessiondto.FeedbackInput{Difficulty: "brutal"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("bad difficulty should be invalid, got %v", err)
	}
	if err := uc.DismissFeedback(ctx); err != nil {
		t.Fatalf("dismiss: %v", err)
	}

	after, _ := e.missions.Get(ctx, mission.ID)
	if after.Status != "planned" || after.CompletedAt != nil {
		t.Fatalf("dismissed mission must stay non-terminal: %+v", after)
	}
	ledger, _ := e.progression.Ledger(ctx)
	if ledger.Experience != 0 {
		t.Fatalf("dismiss must not award: %+v", ledger)
	}
}

func TestSubmitFeedbackUsesDefaults(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := e.process(t, 100)
	mission, _ := e.missions.Create(ctx, missiondto.CreateInput{Title: "Vocab", Category: "language", Priority: "high"})
	if _, err := uc.EngageMission(ctx, mission.ID); err != nil {
		t.Fatalf("engage: %v", err)
	}
	if _, err := uc.CompleteFocus(ctx); err != nil {
		t.Fatalf("complete focus: %v", err)
	}
	out, err := uc.SubmitFeedback(ctx, sessiondto.FeedbackInput{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Mission.Difficulty != "normal" || out.Mission.EnergyAfter != 5 {
		t.Fatalf("expected default feedback, got %+v", out.Mission)
	}
}

func TestAbandonReleasesMission(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := e.process(t, 100)
	mission, _ := e.missions.Create(ctx, missiondto.CreateInput{Title: "Run", Category: "sport", Priority: "low"})
	if _, err := uc.EngageMission(ctx, mission.ID); err != nil {
		t.Fatalf("engage: %v", err)
	}
	if err := uc.Abandon(ctx); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	after, _ := e.missions.Get(ctx, mission.ID)
	if after.Status != "planned" {
		t.Fatalf("abandoned mission should be planned, got %s", after.Status)
	}
	if err := uc.Abandon(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("second abandon should fail, got %v", err)
	}
	if _, err := uc.EngageMission(ctx, mission.ID); err != nil {
		t.Fatalf("engage after abandon: %v", err)
	}
}

func TestReconcileDiscardsInterruptedFocus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mission, _ := e.missions.Create(ctx, missiondto.CreateInput{Title: "Plan week", Category: "personal", Priority: "high"})
	if _, err := e.process(t, 100).EngageMission(ctx, mission.ID); err != nil {
		t.Fatalf("engage: %v", err)
	}

	next := e.process(t, 200)
	rec, err := next.Reconcile(ctx)
	if err != nil || rec.Outcome != sessiondto.ReconcileDiscarded || rec.TargetID != mission.ID {
		t.Fatalf("expected discard: %v %+v", err, rec)
	}
	after, _ := e.missions.Get(ctx, mission.ID)
	if after.Status != "planned" {
		t.Fatalf("interrupted mission should return to planned, got %s", after.Status)
	}
	if rec, _ := next.Reconcile(ctx); rec.Outcome != sessiondto.ReconcileNone {
		t.Fatalf("nothing left to reconcile, got %+v", rec)
	}
}

func TestEngageDoneMissionFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := e.process(t, 100)
	mission, _ := e.missions.Create(ctx, missiondto.CreateInput{Title: "Done already", Category: "admin", Priority: "low"})
	if _, err := e.missions.Complete(ctx, missiondto.CompleteInput{MissionID: mission.ID}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := uc.EngageMission(ctx, mission.ID); !errors.Is(err, apperrors.ErrTerminalState) {
		t.Fatalf("engaging a done mission should fail, got %v", err)
	}
	if _, err := uc.Active(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("no session should be left behind, got %v", err)
	}
}

func TestLogSetPairRejectsWholePair(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	handler := sessionin.NewCLIHandler(e.process(t, 100))
	routine := e.pushDay(t)
	if _, err := handler.StartWorkout(ctx, routine.ID); err != nil {
		t.Fatalf("start workout: %v", err)
	}

	if _, err := handler.LogSetPair(ctx, "bench", 0, 40, -5); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("negative reps should be rejected, got %v", err)
	}
	if _, err := handler.LogSet(ctx, "bench", 0, "reps", 1e19); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("overflowing reps should be rejected, got %v", err)
	}
	view, err := handler.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got := view.Exercises[0].Sets[0]; got.Weight != 0 || got.Reps != 0 {
		t.Fatalf("rejected logs must leave the set empty: %+v", got)
	}
	if view.Volume != 0 || view.Resting {
		t.Fatalf("rejected logs must not change volume or rest: %+v", view)
	}
}

func TestEngageUnwindsWhenPointerSaveFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	store := &failingSaveStore{ActiveSessionStore: sessionout.NewFileActiveSessionStore(e.pointerPath()), fail: true}
	uc := e.processWithStore(t, 100, store)
	mission, _ := e.missions.Create(ctx, missiondto.CreateInput{Title: "Review notes", Category: "study", Priority: "medium"})

	if _, err := uc.EngageMission(ctx, mission.ID); err == nil {
		t.Fatalf("engage should fail when the pointer cannot be saved")
	}
	if _, err := uc.Active(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("failed engage must leave no session, got %v", err)
	}
	after, _ := e.missions.Get(ctx, mission.ID)
	if after.Status != "planned" {
		t.Fatalf("failed engage must release the mission, got %s", after.Status)
	}
	if _, err := os.Stat(e.pointerPath()); !os.IsNotExist(err) {
		t.Fatalf("failed engage must clear the pointer, stat err %v", err)
	}

	store.fail = false
	if _, err := uc.EngageMission(ctx, mission.ID); err != nil {
		t.Fatalf("engage after the store recovers: %v", err)
	}
}

func TestReconcileClearsUnreadablePointer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mission, _ := e.missions.Create(ctx, missiondto.CreateInput{Title: "Draft essay", Category: "study", Priority: "high"})
	if _, err := e.process(t, 100).EngageMission(ctx, mission.ID); err != nil {
		t.Fatalf("engage: %v", err)
	}
	if err := os.WriteFile(e.pointerPath(), nil, 0o644); err != nil {
		t.Fatalf("truncate pointer: %v", err)
	}

	next := e.process(t, 200)
	rec, err := next.Reconcile(ctx)
	if err != nil || rec.Outcome != sessiondto.ReconcileDiscarded {
		t.Fatalf("unreadable pointer should be discarded: %v %+v", err, rec)
	}
	after, _ := e.missions.Get(ctx, mission.ID)
	if after.Status != "planned" {
		t.Fatalf("mission of the lost session should return to planned, got %s", after.Status)
	}
	if _, err := next.EngageMission(ctx, mission.ID); err != nil {
		t.Fatalf("engage after reconcile: %v", err)
	}
	if err := next.Abandon(ctx); err != nil {
		t.Fatalf("abandon after reconcile: %v", err)
	}
}

func TestReconcileRewritesUnreadablePointerOfOwnSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := e.process(t, 100)
	routine := e.pushDay(t)
	started, err := uc.EngageWorkout(ctx, routine.ID)
	if err != nil {
		t.Fatalf("engage: %v", err)
	}
	if err := os.WriteFile(e.pointerPath(), []byte("{}"), 0o644); err != nil {
		t.Fatalf("blank pointer: %v", err)
	}

	rec, err := uc.Reconcile(ctx)
	if err != nil || rec.Outcome != sessiondto.ReconcileAttached || rec.SessionID != started.SessionID {
		t.Fatalf("own session should be reattached: %v %+v", err, rec)
	}
	if rec, _ := uc.Reconcile(ctx); rec.Outcome != sessiondto.ReconcileAttached {
		t.Fatalf("rewritten pointer should be readable, got %+v", rec)
	}
}

func TestTickPersistsFocusExpiry(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uc := e.process(t, 100)
	mission, _ := e.missions.Create(ctx, missiondto.CreateInput{Title: "Deep work", Category: "admin", Priority: "high"})
	if _, err := uc.EngageMission(ctx, mission.ID); err != nil {
		t.Fatalf("engage: %v", err)
	}
	e.clock.Advance(1500 * time.Second)
	if view, ok := uc.Tick(ctx); !ok || !view.FeedbackOpen {
		t.Fatalf("focus should expire: %+v", view)
	}

	e.probe[100] = true
	detached, err := e.process(t, 200).Active(ctx)
	if err != nil || !detached.Detached {
		t.Fatalf("expected a detached view: %v %+v", err, detached)
	}
	if detached.FocusState != "expired" {
		t.Fatalf("detached reader should see the expiry, got %q", detached.FocusState)
	}
}
