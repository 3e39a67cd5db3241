package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ascend/internal/modules/mission/domain"
	missionout "ascend/internal/modules/mission/port/out"
	"ascend/internal/platform/clock"
	apperrors "ascend/internal/platform/errors"
	"ascend/internal/platform/sqlitedb"
)

type SQLiteMissionStore struct {
	db    *sqlitedb.DB
	clock clock.Clock
}

func NewSQLiteMissionStore(db *sqlitedb.DB, clock clock.Clock) missionout.MissionStore {
	return &SQLiteMissionStore{db: db, clock: clock}
}

const missionColumns = `id, user_id, title, category, priority, impact, status, created_at, planned_date, completed_at, difficulty, energy_after`

func (s *SQLiteMissionStore) Save(ctx context.Context, mission domain.Mission) error {
	const stmt = `
INSERT INTO missions (` + missionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  category=excluded.category,
  priority=excluded.priority,
  status=excluded.status,
  planned_date=excluded.planned_date,
  completed_at=excluded.completed_at,
  difficulty=excluded.difficulty,
  energy_after=excluded.energy_after;
`
	var difficulty, energy any
	if mission.Feedback != nil {
		difficulty = string(mission.Feedback.Difficulty)
		energy = mission.Feedback.EnergyAfter
	}
	return s.db.Within(ctx, func(ctx context.Context) error {
		exec := s.db.Executor(ctx)
		if _, err := exec.ExecContext(ctx, stmt,
			mission.ID,
			mission.UserID,
			mission.Title,
			string(mission.Category),
			string(mission.Priority),
			mission.Impact,
			string(mission.Status),
			sqlitedb.FormatTime(mission.CreatedAt),
			sqlitedb.FormatTime(mission.PlannedDate),
			sqlitedb.NullableTime(mission.CompletedAt),
			difficulty,
			energy,
		); err != nil {
			return sqlitedb.Classify("upsert mission", err)
		}
		return sqlitedb.RecordChange(ctx, exec, "mission", mission.ID, "upsert", s.clock.Now())
	})
}

func (s *SQLiteMissionStore) FindByID(ctx context.Context, userID, id string) (domain.Mission, error) {
	query := `SELECT ` + missionColumns + ` FROM missions WHERE user_id = ? AND id = ?`
	mission, err := scanMission(s.db.Executor(ctx).QueryRowContext(ctx, query, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Mission{}, fmt.Errorf("mission %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.Mission{}, sqlitedb.Classify("load mission", err)
	}
	return mission, nil
}

func (s *SQLiteMissionStore) List(ctx context.Context, userID string, filter missionout.ListFilter) ([]domain.Mission, error) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, string(filter.Category))
	}
	query := `SELECT ` + missionColumns + ` FROM missions WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY planned_date, impact DESC, created_at`
	rows, err := s.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlitedb.Classify("list missions", err)
	}
	defer rows.Close()
	var out []domain.Mission
	for rows.Next() {
		mission, err := scanMission(rows)
		if err != nil {
			return nil, sqlitedb.Classify("scan mission", err)
		}
		out = append(out, mission)
	}
	return out, rows.Err()
}

func (s *SQLiteMissionStore) Delete(ctx context.Context, userID, id string) error {
	return s.db.Within(ctx, func(ctx context.Context) error {
		exec := s.db.Executor(ctx)
		res, err := exec.ExecContext(ctx, `DELETE FROM missions WHERE user_id = ? AND id = ?`, userID, id)
		if err != nil {
			return sqlitedb.Classify("delete mission", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("mission %s: %w", id, apperrors.ErrNotFound)
		}
		return sqlitedb.RecordChange(ctx, exec, "mission", id, "delete", s.clock.Now())
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMission(row scanner) (domain.Mission, error) {
	var (
		m                          domain.Mission
		category, priority, status string
		createdAt, plannedDate     string
		completedAt, difficulty    sql.NullString
		energy                     sql.NullInt64
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.Title, &category, &priority, &m.Impact, &status, &createdAt, &plannedDate, &completedAt, &difficulty, &energy); err != nil {
		return domain.Mission{}, err
	}
	m.Category = domain.Category(category)
	m.Priority = domain.Priority(priority)
	m.Status = domain.Status(status)
	var err error
	if m.CreatedAt, err = sqlitedb.ParseTime(createdAt); err != nil {
		return domain.Mission{}, err
	}
	if m.PlannedDate, err = sqlitedb.ParseTime(plannedDate); err != nil {
		return domain.Mission{}, err
	}
	if completedAt.Valid {
		t, err := sqlitedb.ParseTime(completedAt.String)
		if err != nil {
			return domain.Mission{}, err
		}
		m.CompletedAt = &t
	}
	if difficulty.Valid {
		m.Feedback = &domain.Feedback{Difficulty: domain.Difficulty(difficulty.String), EnergyAfter: int(energy.Int64)}
	}
	return m, nil
}
