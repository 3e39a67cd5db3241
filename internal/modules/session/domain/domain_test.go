package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	missiondomain "ascend/internal/modules/mission/domain"
	progressiondomain "ascend/internal/modules/progression/domain"
	timerdomain "ascend/internal/modules/timer/domain"
	apperrors "ascend/internal/platform/errors"
)

func benchPlan() RoutinePlan {
	return RoutinePlan{RoutineID: "r1", Name: "Push", Exercises: []PlannedExercise{{ID: "bench", Name: "Bench", TargetSets: 3}}}
}

func TestKindProfiles(t *testing.T) {
	if KindMission.TimerMode() != timerdomain.ModeCountdown || KindWorkout.TimerMode() != timerdomain.ModeStopwatch {
		t.Fatalf("unexpected timer modes")
	}
	if KindMission.AwardKind() != progressiondomain.KindMission || KindWorkout.AwardKind() != progressiondomain.KindWorkout {
		t.Fatalf("unexpected award kinds")
	}
	if err := Kind("reading").Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("unknown kind should be invalid, got %v", err)
	}
}

func TestTargetValidateRequiresMatchingPayload(t *testing.T) {
	plan := benchPlan()
	cases := []struct {
		name    string
		target  Target
		wantErr bool
	}{
		{name: "mission", target: MissionTarget("m1", "Essay")},
		{name: "workout", target: WorkoutTarget(plan)},
		{name: "mission without id", target: MissionTarget("", "Essay"), wantErr: true},
		{name: "both payloads", target: Target{Kind: KindMission, Mission: &MissionRef{ID: "m1"}, Routine: &plan}, wantErr: true},
		{name: "workout without exercises", target: WorkoutTarget(RoutinePlan{RoutineID: "r"}), wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.target.Validate()
			if tc.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSetLogsApply(t *testing.T) {
	logs := NewSetLogs(benchPlan())
	if len(logs["bench"]) != 3 {
		t.Fatalf("expected 3 placeholder sets, got %d", len(logs["bench"]))
	}

	completed, err := logs.Apply("bench", 0, FieldWeight, 40)
	if err != nil || completed {
		t.Fatalf("weight must not complete a set: %v %v", completed, err)
	}
	completed, err = logs.Apply("bench", 0, FieldReps, 10)
	if err != nil || !completed {
		t.Fatalf("first reps should complete the set: %v %v", completed, err)
	}
	completed, _ = logs.Apply("bench", 0, FieldReps, 12)
	if completed {
		t.Fatalf("changing non-zero reps is not a new completion")
	}
	completed, _ = logs.Apply("bench", 1, FieldReps, 0)
	if completed {
		t.Fatalf("zero reps never completes a set")
	}

	for _, tc := range []struct {
		ex    string
		index int
		field Field
		value float64
	}{
		{"bench", 3, FieldReps, 1},
		{"bench", -1, FieldReps, 1},
		{"bench", 0, FieldWeight, -5},
		{"bench", 0, FieldReps, 2.5},
		{"squat", 0, FieldReps, 1},
		{"bench", 0, Field("tempo"), 1},
		{"bench", 0, FieldReps, 1e19},
		{"bench", 0, FieldReps, MaxReps + 1},
		{"bench", 0, FieldWeight, math.Inf(1)},
	} {
		if _, err := logs.Apply(tc.ex, tc.index, tc.field, tc.value); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("%+v: expected validation error, got %v", tc, err)
		}
	}
	if logs["bench"][0] != (SetLog{Weight: 40, Reps: 12}) {
		t.Fatalf("rejected updates must not apply: %+v", logs["bench"][0])
	}
}

func TestSetLogsApplyPair(t *testing.T) {
	logs := NewSetLogs(benchPlan())

	completed, err := logs.ApplyPair("bench", 0, 40, 10)
	if err != nil || !completed {
		t.Fatalf("pair with reps should complete the set: %v %v", completed, err)
	}
	completed, err = logs.ApplyPair("bench", 0, 42.5, 9)
	if err != nil || completed {
		t.Fatalf("rewriting a completed set is not a new completion: %v %v", completed, err)
	}

	for _, tc := range []struct {
		name   string
		index  int
		weight float64
		reps   int
	}{
		{"negative reps", 0, 50, -5},
		{"negative weight", 0, -1, 8},
		{"reps overflow", 0, 50, MaxReps + 1},
		{"index out of range", 3, 50, 8},
	} {
		if _, err := logs.ApplyPair("bench", tc.index, tc.weight, tc.reps); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
	if logs["bench"][0] != (SetLog{Weight: 42.5, Reps: 9}) {
		t.Fatalf("rejected pairs must leave the slot alone: %+v", logs["bench"][0])
	}
	if logs.Volume() != 42.5*9 {
		t.Fatalf("volume = %v", logs.Volume())
	}
}

func TestVolumeIncludesEmptySets(t *testing.T) {
	logs := NewSetLogs(benchPlan())
	logs["bench"][0] = SetLog{Weight: 40, Reps: 10}
	logs["bench"][1] = SetLog{Weight: 40, Reps: 8}
	if got := logs.Volume(); got != 720 {
		t.Fatalf("expected 720, got %v", got)
	}
	clone := logs.Clone()
	clone["bench"][0].Reps = 0
	if logs["bench"][0].Reps != 10 {
		t.Fatalf("clone must not alias")
	}
}

func TestDurationMinutesFloors(t *testing.T) {
	if DurationMinutes(59*time.Second) != 0 || DurationMinutes(61*time.Minute+59*time.Second) != 61 || DurationMinutes(-time.Second) != 0 {
		t.Fatalf("unexpected flooring")
	}
}

func TestFeedbackPromptDefaults(t *testing.T) {
	prompt := NewFeedbackPrompt("s1", MissionRef{ID: "m1", Title: "Essay"}, time.Now())
	fb, err := prompt.Answer("", 0)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if fb.Difficulty != missiondomain.DifficultyNormal || fb.EnergyAfter != 5 {
		t.Fatalf("unexpected defaults: %+v", fb)
	}
	if _, err := prompt.Answer(missiondomain.DifficultyHard, 11); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("energy out of range should be invalid, got %v", err)
	}
}

func TestActiveSessionTargetRoundTrip(t *testing.T) {
	plan := benchPlan()
	pointer := ActiveSession{SessionID: "s", Kind: KindWorkout, TargetID: "r1", Plan: &plan}
	if tgt := pointer.Target(); tgt.Kind != KindWorkout || tgt.ID() != "r1" || tgt.Title() != "Push" {
		t.Fatalf("unexpected workout target: %+v", tgt)
	}
	pointer = ActiveSession{SessionID: "s", Kind: KindMission, TargetID: "m1", TargetTitle: "Essay"}
	if tgt := pointer.Target(); tgt.Kind != KindMission || tgt.ID() != "m1" || tgt.Title() != "Essay" {
		t.Fatalf("unexpected mission target: %+v", tgt)
	}
}
