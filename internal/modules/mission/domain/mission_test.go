package domain_test

import (
	"errors"
	"testing"
	"time"

	"ascend/internal/modules/mission/domain"
	apperrors "ascend/internal/platform/errors"
)

var now = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func TestImpactScores(t *testing.T) {
	t.Parallel()
	cases := map[domain.Priority]int{
		domain.PriorityLow:      20,
		domain.PriorityMedium:   20,
		domain.PriorityHigh:     50,
		domain.PriorityCritical: 100,
	}
	for priority, want := range cases {
		m, err := domain.New("m-1", "me", "Task", domain.CategoryAdmin, priority, time.Time{}, now)
		if err != nil {
			t.Fatalf("new mission %s: %v", priority, err)
		}
		if m.Impact != want {
			t.Fatalf("impact for %s: got %d want %d", priority, m.Impact, want)
		}
		if m.Status != domain.StatusPlanned || !m.PlannedDate.Equal(now) {
			t.Fatalf("new mission should be planned for today: %+v", m)
		}
	}
}

func TestNewValidates(t *testing.T) {
	t.Parallel()
	if _, err := domain.New("m-1", "me", "  ", domain.CategoryAdmin, domain.PriorityLow, now, now); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("blank title should be invalid, got %v", err)
	}
	if _, err := domain.New("m-1", "me", "Task", "chores", domain.PriorityLow, now, now); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("unknown category should be invalid, got %v", err)
	}
	if _, err := domain.New("m-1", "me", "Task", domain.CategoryStudy, "urgent", now, now); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("unknown priority should be invalid, got %v", err)
	}
}

func TestLifecycle(t *testing.T) {
	t.Parallel()
	m, err := domain.New("m-1", "me", "Deep work", domain.CategoryStudy, domain.PriorityCritical, now, now)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := m.Begin(); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("second begin should conflict, got %v", err)
	}
	if err := m.Release(); err != nil || m.Status != domain.StatusPlanned {
		t.Fatalf("release should return to planned: %v %s", err, m.Status)
	}

	feedback := &domain.Feedback{Difficulty: domain.DifficultyNormal, EnergyAfter: 7}
	if err := m.Complete(now.Add(time.Hour), feedback); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if m.Status != domain.StatusDone || m.CompletedAt == nil || m.Feedback.EnergyAfter != 7 {
		t.Fatalf("unexpected completed mission: %+v", m)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("done mission should validate: %v", err)
	}
	if err := m.Complete(now, nil); !errors.Is(err, apperrors.ErrTerminalState) {
		t.Fatalf("completing twice should fail, got %v", err)
	}
	if err := m.Begin(); !errors.Is(err, apperrors.ErrTerminalState) {
		t.Fatalf("begin on done should fail, got %v", err)
	}
}

func TestCompleteRejectsInvalidFeedbackWithoutChanges(t *testing.T) {
	t.Parallel()
	m, _ := domain.New("m-1", "me", "Task", domain.CategoryAdmin, domain.PriorityLow, now, now)
	err := m.Complete(now, &domain.Feedback{Difficulty: domain.DifficultyHard, EnergyAfter: 11})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("energy 11 should be invalid, got %v", err)
	}
	if m.Status != domain.StatusPlanned || m.CompletedAt != nil {
		t.Fatalf("invalid feedback must not partially apply: %+v", m)
	}
}

func TestEditKeepsImpactAndRejectsDone(t *testing.T) {
	t.Parallel()
	m, _ := domain.New("m-1", "me", "Task", domain.CategoryAdmin, domain.PriorityLow, now, now)
	critical := domain.PriorityCritical
	title := "Renamed"
	if err := m.Edit(&title, nil, &critical); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if m.Priority != domain.PriorityCritical || m.Impact != 20 || m.Title != "Renamed" {
		t.Fatalf("impact must stay locked at creation value: %+v", m)
	}
	bad := domain.Category("chores")
	if err := m.Edit(nil, &bad, nil); !errors.Is(err, apperrors.ErrInvalidInput) || m.Category != domain.CategoryAdmin {
		t.Fatalf("invalid edit must not apply: %v %+v", err, m)
	}
	_ = m.Complete(now, nil)
	if err := m.Edit(&title, nil, nil); !errors.Is(err, apperrors.ErrTerminalState) {
		t.Fatalf("editing a done mission should fail, got %v", err)
	}
}
