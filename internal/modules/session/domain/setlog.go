package domain

import (
	"math"

	apperrors "ascend/internal/platform/errors"
)

type Field string

const (
	FieldWeight Field = "weight"
	FieldReps   Field = "reps"
)

type SetLog struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

func (s SetLog) Volume() float64 { return s.Weight * float64(s.Reps) }

// SetLogs maps exercise id to its ordered sets.
type SetLogs map[string][]SetLog

// NewSetLogs pre-sizes every exercise to its target set count with zero
// placeholders.
func NewSetLogs(plan RoutinePlan) SetLogs {
	logs := make(SetLogs, len(plan.Exercises))
	for _, ex := range plan.Exercises {
		logs[ex.ID] = make([]SetLog, ex.TargetSets)
	}
	return logs
}

// MaxReps bounds a single set so reps always fit an int.
const MaxReps = math.MaxInt32

// Apply updates one slot. It reports whether the slot's reps went from zero
// to a positive count, which is the signal that a set was completed.
func (l SetLogs) Apply(exerciseID string, index int, field Field, value float64) (bool, error) {
	if err := l.checkSlot(exerciseID, index); err != nil {
		return false, err
	}
	slot := l[exerciseID][index]
	switch field {
	case FieldWeight:
		if err := checkWeight(value); err != nil {
			return false, err
		}
		slot.Weight = value
		l[exerciseID][index] = slot
		return false, nil
	case FieldReps:
		if err := checkReps(value); err != nil {
			return false, err
		}
		completed := slot.Reps == 0 && value > 0
		slot.Reps = int(value)
		l[exerciseID][index] = slot
		return completed, nil
	default:
		return false, apperrors.Invalid("field", "unsupported field %q", string(field))
	}
}

// ApplyPair writes weight and reps of one slot together. Both values are
// checked before the slot changes.
func (l SetLogs) ApplyPair(exerciseID string, index int, weight float64, reps int) (bool, error) {
	if err := l.checkSlot(exerciseID, index); err != nil {
		return false, err
	}
	if err := checkWeight(weight); err != nil {
		return false, err
	}
	if err := checkReps(float64(reps)); err != nil {
		return false, err
	}
	slot := l[exerciseID][index]
	completed := slot.Reps == 0 && reps > 0
	l[exerciseID][index] = SetLog{Weight: weight, Reps: reps}
	return completed, nil
}

func (l SetLogs) checkSlot(exerciseID string, index int) error {
	sets, ok := l[exerciseID]
	if !ok {
		return apperrors.Invalid("exercise_id", "unknown exercise %q", exerciseID)
	}
	if index < 0 || index >= len(sets) {
		return apperrors.Invalid("set_index", "%d is outside 0..%d", index, len(sets)-1)
	}
	return nil
}

func checkWeight(v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return apperrors.Invalid("weight", "must be a non-negative number")
	}
	return nil
}

func checkReps(v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return apperrors.Invalid("reps", "must be a non-negative number")
	}
	if v != math.Trunc(v) {
		return apperrors.Invalid("reps", "must be a whole number")
	}
	if v > MaxReps {
		return apperrors.Invalid("reps", "must be at most %d", MaxReps)
	}
	return nil
}

// Volume is the sum of weight x reps over every slot, empty ones included.
func (l SetLogs) Volume() float64 {
	total := 0.0
	for _, sets := range l {
		for _, s := range sets {
			total += s.Volume()
		}
	}
	return total
}

func (l SetLogs) Clone() SetLogs {
	out := make(SetLogs, len(l))
	for id, sets := range l {
		out[id] = append([]SetLog(nil), sets...)
	}
	return out
}
