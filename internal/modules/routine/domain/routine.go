package domain

import (
	"strings"
	"time"

	apperrors "ascend/internal/platform/errors"
)

type Exercise struct {
	ID          string
	Name        string
	MuscleGroup string
	TargetSets  int
	RepMin      int
	RepMax      int
}

// Routine is an immutable template; changes replace it as a whole.
type Routine struct {
	ID        string
	UserID    string
	Name      string
	Exercises []Exercise
	UpdatedAt time.Time
}

func New(id, userID, name string, exercises []Exercise, now time.Time) (Routine, error) {
	r := Routine{
		ID:        id,
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Exercises: append([]Exercise(nil), exercises...),
		UpdatedAt: now,
	}
	if err := r.Validate(); err != nil {
		return Routine{}, err
	}
	return r, nil
}

func (r Routine) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return apperrors.Invalid("id", "is required")
	}
	if r.Name == "" {
		return apperrors.Invalid("name", "is required")
	}
	if len(r.Exercises) == 0 {
		return apperrors.Invalid("exercises", "at least one exercise is required")
	}
	seen := make(map[string]struct{}, len(r.Exercises))
	for i, ex := range r.Exercises {
		if err := ex.Validate(); err != nil {
			return err
		}
		if _, dup := seen[ex.ID]; dup {
			return apperrors.Invalid("exercises", "duplicate exercise id %q at position %d", ex.ID, i)
		}
		seen[ex.ID] = struct{}{}
	}
	return nil
}

func (e Exercise) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return apperrors.Invalid("exercise.id", "is required")
	}
	if strings.TrimSpace(e.Name) == "" {
		return apperrors.Invalid("exercise.name", "is required for %s", e.ID)
	}
	if e.TargetSets < 1 {
		return apperrors.Invalid("exercise.target_sets", "must be at least 1 for %s", e.ID)
	}
	if e.RepMin < 0 || e.RepMax < e.RepMin {
		return apperrors.Invalid("exercise.reps", "range %d..%d is invalid for %s", e.RepMin, e.RepMax, e.ID)
	}
	return nil
}

func (r Routine) Exercise(id string) (Exercise, bool) {
	for _, ex := range r.Exercises {
		if ex.ID == id {
			return ex, true
		}
	}
	return Exercise{}, false
}

// TotalTargetSets is the number of set slots a session pre-allocates.
func (r Routine) TotalTargetSets() int {
	total := 0
	for _, ex := range r.Exercises {
		total += ex.TargetSets
	}
	return total
}
