package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ascend/internal/modules/routine/domain"
	routineout "ascend/internal/modules/routine/port/out"
	"ascend/internal/platform/clock"
	apperrors "ascend/internal/platform/errors"
	"ascend/internal/platform/sqlitedb"
)

type SQLiteRoutineStore struct {
	db    *sqlitedb.DB
	clock clock.Clock
}

func NewSQLiteRoutineStore(db *sqlitedb.DB, clock clock.Clock) routineout.RoutineStore {
	return &SQLiteRoutineStore{db: db, clock: clock}
}

type exerciseRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group,omitempty"`
	TargetSets  int    `json:"target_sets"`
	RepMin      int    `json:"rep_min"`
	RepMax      int    `json:"rep_max"`
}

func (s *SQLiteRoutineStore) Save(ctx context.Context, routine domain.Routine) error {
	records := make([]exerciseRecord, 0, len(routine.Exercises))
	for _, ex := range routine.Exercises {
		records = append(records, exerciseRecord(ex))
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal exercises: %w", err)
	}
	const stmt = `
INSERT INTO routines (id, user_id, name, exercises_json, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  exercises_json=excluded.exercises_json,
  updated_at=excluded.updated_at;
`
	return s.db.Within(ctx, func(ctx context.Context) error {
		exec := s.db.Executor(ctx)
		if _, err := exec.ExecContext(ctx, stmt, routine.ID, routine.UserID, routine.Name, string(raw), sqlitedb.FormatTime(routine.UpdatedAt)); err != nil {
			return sqlitedb.Classify("upsert routine", err)
		}
		return sqlitedb.RecordChange(ctx, exec, "routine", routine.ID, "upsert", s.clock.Now())
	})
}

func (s *SQLiteRoutineStore) FindByID(ctx context.Context, userID, id string) (domain.Routine, error) {
	row := s.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT id, user_id, name, exercises_json, updated_at FROM routines WHERE user_id = ? AND id = ?`, userID, id)
	routine, err := scanRoutine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Routine{}, fmt.Errorf("routine %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.Routine{}, sqlitedb.Classify("load routine", err)
	}
	return routine, nil
}

func (s *SQLiteRoutineStore) List(ctx context.Context, userID string) ([]domain.Routine, error) {
	rows, err := s.db.Executor(ctx).QueryContext(ctx,
		`SELECT id, user_id, name, exercises_json, updated_at FROM routines WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, sqlitedb.Classify("list routines", err)
	}
	defer rows.Close()
	var out []domain.Routine
	for rows.Next() {
		routine, err := scanRoutine(rows)
		if err != nil {
			return nil, sqlitedb.Classify("scan routine", err)
		}
		out = append(out, routine)
	}
	return out, rows.Err()
}

func (s *SQLiteRoutineStore) Delete(ctx context.Context, userID, id string) error {
	return s.db.Within(ctx, func(ctx context.Context) error {
		exec := s.db.Executor(ctx)
		res, err := exec.ExecContext(ctx, `DELETE FROM routines WHERE user_id = ? AND id = ?`, userID, id)
		if err != nil {
			return sqlitedb.Classify("delete routine", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("routine %s: %w", id, apperrors.ErrNotFound)
		}
		return sqlitedb.RecordChange(ctx, exec, "routine", id, "delete", s.clock.Now())
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoutine(row scanner) (domain.Routine, error) {
	var (
		r         domain.Routine
		raw       string
		updatedAt string
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Name, &raw, &updatedAt); err != nil {
		return domain.Routine{}, err
	}
	var records []exerciseRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return domain.Routine{}, fmt.Errorf("decode exercises of %s: %w", r.ID, err)
	}
	for _, rec := range records {
		r.Exercises = append(r.Exercises, domain.Exercise(rec))
	}
	var err error
	if r.UpdatedAt, err = sqlitedb.ParseTime(updatedAt); err != nil {
		return domain.Routine{}, err
	}
	return r, nil
}
