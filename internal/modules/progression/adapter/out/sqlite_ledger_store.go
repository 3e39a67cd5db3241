package out

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ascend/internal/modules/progression/domain"
	progressionout "ascend/internal/modules/progression/port/out"
	"ascend/internal/platform/sqlitedb"
)

type SQLiteLedgerStore struct {
	db *sqlitedb.DB
}

func NewSQLiteLedgerStore(db *sqlitedb.DB) progressionout.LedgerStore {
	return &SQLiteLedgerStore{db: db}
}

func (s *SQLiteLedgerStore) Get(ctx context.Context, userID string) (domain.Ledger, error) {
	const query = `SELECT experience, missions_completed, workouts_completed, updated_at FROM ledgers WHERE user_id = ?`
	ledger := domain.Ledger{UserID: userID}
	var updatedAt string
	err := s.db.Executor(ctx).QueryRowContext(ctx, query, userID).Scan(
		&ledger.Experience,
		&ledger.MissionsCompleted,
		&ledger.WorkoutsCompleted,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger, nil
	}
	if err != nil {
		return domain.Ledger{}, sqlitedb.Classify("load ledger", err)
	}
	if ledger.UpdatedAt, err = sqlitedb.ParseTime(updatedAt); err != nil {
		return domain.Ledger{}, err
	}
	return ledger, nil
}

func (s *SQLiteLedgerStore) ApplyAward(ctx context.Context, award domain.Award) (bool, error) {
	applied := false
	err := s.db.Within(ctx, func(ctx context.Context) error {
		exec := s.db.Executor(ctx)
		const claim = `
INSERT INTO awards (source_id, user_id, kind, experience, awarded_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(source_id) DO NOTHING;
`
		res, err := exec.ExecContext(ctx, claim,
			award.SourceID,
			award.UserID,
			string(award.Kind),
			award.Delta.Experience,
			sqlitedb.FormatTime(award.AwardedAt),
		)
		if err != nil {
			return sqlitedb.Classify("claim award", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return sqlitedb.Classify("claim award", err)
		}
		if n == 0 {
			return nil
		}

		const increment = `
INSERT INTO ledgers (user_id, experience, missions_completed, workouts_completed, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  experience = experience + excluded.experience,
  missions_completed = missions_completed + excluded.missions_completed,
  workouts_completed = workouts_completed + excluded.workouts_completed,
  updated_at = excluded.updated_at;
`
		if _, err := exec.ExecContext(ctx, increment,
			award.UserID,
			award.Delta.Experience,
			award.Delta.MissionsCompleted,
			award.Delta.WorkoutsCompleted,
			sqlitedb.FormatTime(award.AwardedAt),
		); err != nil {
			return sqlitedb.Classify("increment ledger", err)
		}
		applied = true
		return sqlitedb.RecordChange(ctx, exec, "ledger", award.UserID, "award", award.AwardedAt)
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

type SQLiteStatsSource struct {
	db *sqlitedb.DB
}

func NewSQLiteStatsSource(db *sqlitedb.DB) progressionout.StatsSource {
	return &SQLiteStatsSource{db: db}
}

func (s *SQLiteStatsSource) CompletionTimes(ctx context.Context, userID string) ([]time.Time, error) {
	const query = `
SELECT completed_at FROM missions WHERE user_id = ? AND status = 'done' AND completed_at IS NOT NULL
UNION ALL
SELECT logged_at FROM workout_logs WHERE user_id = ?;
`
	rows, err := s.db.Executor(ctx).QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, sqlitedb.Classify("query completion times", err)
	}
	defer rows.Close()
	var out []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, sqlitedb.Classify("scan completion time", err)
		}
		t, err := sqlitedb.ParseTime(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStatsSource) TotalVolume(ctx context.Context, userID string) (float64, error) {
	var total float64
	err := s.db.Executor(ctx).QueryRowContext(ctx, `SELECT COALESCE(SUM(total_volume), 0) FROM workout_logs WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return 0, sqlitedb.Classify("sum workout volume", err)
	}
	return total, nil
}

func (s *SQLiteStatsSource) MissionTally(ctx context.Context, userID string) (domain.MissionTally, error) {
	const query = `SELECT category, status, COUNT(*) FROM missions WHERE user_id = ? GROUP BY category, status`
	rows, err := s.db.Executor(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return domain.MissionTally{}, sqlitedb.Classify("tally missions", err)
	}
	defer rows.Close()
	tally := domain.MissionTally{ByCategory: map[string]int{}}
	for rows.Next() {
		var category, status string
		var n int
		if err := rows.Scan(&category, &status, &n); err != nil {
			return domain.MissionTally{}, sqlitedb.Classify("scan mission tally", err)
		}
		tally.Total += n
		if status == "done" {
			tally.Done += n
			tally.ByCategory[category] += n
		}
	}
	return tally, rows.Err()
}
