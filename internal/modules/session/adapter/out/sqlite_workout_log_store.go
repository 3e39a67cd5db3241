package out

import (
	"context"
	"encoding/json"
	"fmt"

	"ascend/internal/modules/session/domain"
	sessionout "ascend/internal/modules/session/port/out"
	"ascend/internal/platform/sqlitedb"
)

type SQLiteWorkoutLogStore struct {
	db *sqlitedb.DB
}

func NewSQLiteWorkoutLogStore(db *sqlitedb.DB) sessionout.WorkoutLogStore {
	return &SQLiteWorkoutLogStore{db: db}
}

type setsRecord struct {
	Exercises []domain.PlannedExercise `json:"exercises"`
	Sets      domain.SetLogs           `json:"sets"`
}

func (s *SQLiteWorkoutLogStore) Save(ctx context.Context, log domain.WorkoutLog) error {
	raw, err := json.Marshal(setsRecord{Exercises: log.Exercises, Sets: log.Sets})
	if err != nil {
		return fmt.Errorf("marshal workout sets: %w", err)
	}
	const stmt = `
INSERT INTO workout_logs (id, user_id, routine_id, routine_name, total_volume, duration_minutes, logged_at, sets_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  total_volume=excluded.total_volume,
  duration_minutes=excluded.duration_minutes,
  logged_at=excluded.logged_at,
  sets_json=excluded.sets_json;
`
	return s.db.Within(ctx, func(ctx context.Context) error {
		exec := s.db.Executor(ctx)
		if _, err := exec.ExecContext(ctx, stmt,
			log.ID,
			log.UserID,
			log.RoutineID,
			log.RoutineName,
			log.TotalVolume,
			log.DurationMinutes,
			sqlitedb.FormatTime(log.LoggedAt),
			string(raw),
		); err != nil {
			return sqlitedb.Classify("upsert workout log", err)
		}
		return sqlitedb.RecordChange(ctx, exec, "workout_log", log.ID, "upsert", log.LoggedAt)
	})
}

func (s *SQLiteWorkoutLogStore) List(ctx context.Context, userID string, limit int) ([]domain.WorkoutLog, error) {
	const query = `
SELECT id, user_id, routine_id, routine_name, total_volume, duration_minutes, logged_at, sets_json
FROM workout_logs WHERE user_id = ? ORDER BY logged_at DESC LIMIT ?`
	rows, err := s.db.Executor(ctx).QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, sqlitedb.Classify("list workout logs", err)
	}
	defer rows.Close()
	var out []domain.WorkoutLog
	for rows.Next() {
		var (
			log      domain.WorkoutLog
			loggedAt string
			raw      string
		)
		if err := rows.Scan(&log.ID, &log.UserID, &log.RoutineID, &log.RoutineName, &log.TotalVolume, &log.DurationMinutes, &loggedAt, &raw); err != nil {
			return nil, sqlitedb.Classify("scan workout log", err)
		}
		if log.LoggedAt, err = sqlitedb.ParseTime(loggedAt); err != nil {
			return nil, err
		}
		var rec setsRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode sets of %s: %w", log.ID, err)
		}
		log.Exercises = rec.Exercises
		log.Sets = rec.Sets
		out = append(out, log)
	}
	return out, rows.Err()
}
