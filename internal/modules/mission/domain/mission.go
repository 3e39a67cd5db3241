package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "ascend/internal/platform/errors"
)

type Category string

const (
	CategoryAdmin     Category = "admin"
	CategoryStudy     Category = "study"
	CategorySport     Category = "sport"
	CategoryPersonal  Category = "personal"
	CategorySpiritual Category = "spiritual"
	CategoryLanguage  Category = "language"
)

func Categories() []Category {
	return []Category{CategoryAdmin, CategoryStudy, CategorySport, CategoryPersonal, CategorySpiritual, CategoryLanguage}
}

func (c Category) Validate() error {
	for _, known := range Categories() {
		if c == known {
			return nil
		}
	}
	return apperrors.Invalid("category", "unsupported category %q", string(c))
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var impactScores = map[Priority]int{
	PriorityLow:      20,
	PriorityMedium:   20,
	PriorityHigh:     50,
	PriorityCritical: 100,
}

func (p Priority) Validate() error {
	if _, ok := impactScores[p]; !ok {
		return apperrors.Invalid("priority", "unsupported priority %q", string(p))
	}
	return nil
}

func (p Priority) ImpactScore() int {
	return impactScores[p]
}

type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

const (
	MinEnergy     = 1
	MaxEnergy     = 10
	DefaultEnergy = 5
)

type Feedback struct {
	Difficulty  Difficulty
	EnergyAfter int
}

func (f Feedback) Validate() error {
	switch f.Difficulty {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
	default:
		return apperrors.Invalid("difficulty", "unsupported difficulty %q", string(f.Difficulty))
	}
	if f.EnergyAfter < MinEnergy || f.EnergyAfter > MaxEnergy {
		return apperrors.Invalid("energy_after", "must be between %d and %d", MinEnergy, MaxEnergy)
	}
	return nil
}

type Mission struct {
	ID          string
	UserID      string
	Title       string
	Category    Category
	Priority    Priority
	Impact      int
	Status      Status
	CreatedAt   time.Time
	PlannedDate time.Time
	CompletedAt *time.Time
	Feedback    *Feedback
}

// New creates a planned mission with its impact score locked in.
func New(id, userID, title string, category Category, priority Priority, plannedDate, now time.Time) (Mission, error) {
	if plannedDate.IsZero() {
		plannedDate = now
	}
	m := Mission{
		ID:          id,
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Category:    category,
		Priority:    priority,
		Impact:      priority.ImpactScore(),
		Status:      StatusPlanned,
		CreatedAt:   now,
		PlannedDate: plannedDate,
	}
	if err := m.Validate(); err != nil {
		return Mission{}, err
	}
	return m, nil
}

func (m Mission) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return apperrors.Invalid("id", "is required")
	}
	if strings.TrimSpace(m.Title) == "" {
		return apperrors.Invalid("title", "is required")
	}
	if err := m.Category.Validate(); err != nil {
		return err
	}
	if err := m.Priority.Validate(); err != nil {
		return err
	}
	if (m.Status == StatusDone) != (m.CompletedAt != nil) {
		return fmt.Errorf("mission %s: completed_at must be set iff status is done", m.ID)
	}
	return nil
}

func (m Mission) IsDone() bool { return m.Status == StatusDone }

// Begin marks the mission as being worked on by a session.
func (m *Mission) Begin() error {
	switch m.Status {
	case StatusDone:
		return apperrors.ErrTerminalState
	case StatusInProgress:
		return apperrors.ErrActiveSessionExists
	}
	m.Status = StatusInProgress
	return nil
}

// Release returns an interrupted or abandoned mission to planned.
func (m *Mission) Release() error {
	switch m.Status {
	case StatusDone:
		return apperrors.ErrTerminalState
	case StatusInProgress:
		m.Status = StatusPlanned
	}
	return nil
}

// Complete is the single forward edge into done. Feedback is optional.
func (m *Mission) Complete(at time.Time, feedback *Feedback) error {
	if m.Status == StatusDone {
		return apperrors.ErrTerminalState
	}
	if feedback != nil {
		if err := feedback.Validate(); err != nil {
			return err
		}
		copied := *feedback
		m.Feedback = &copied
	}
	completed := at
	m.CompletedAt = &completed
	m.Status = StatusDone
	return nil
}

// Edit changes descriptive fields of a mission that is not done. The impact
// score keeps the value computed at creation even if priority changes.
func (m *Mission) Edit(title *string, category *Category, priority *Priority) error {
	if m.Status == StatusDone {
		return apperrors.ErrTerminalState
	}
	next := *m
	if title != nil {
		next.Title = strings.TrimSpace(*title)
	}
	if category != nil {
		next.Category = *category
	}
	if priority != nil {
		next.Priority = *priority
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*m = next
	return nil
}
