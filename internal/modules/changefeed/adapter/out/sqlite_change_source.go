package out

import (
	"context"
	"time"

	"ascend/internal/modules/changefeed/domain"
	changefeedout "ascend/internal/modules/changefeed/port/out"
	"ascend/internal/platform/sqlitedb"
)

type SQLiteChangeSource struct {
	db *sqlitedb.DB
}

func NewSQLiteChangeSource(db *sqlitedb.DB) changefeedout.ChangeSource {
	return &SQLiteChangeSource{db: db}
}

func (s *SQLiteChangeSource) Since(ctx context.Context, seq int64, limit int) ([]domain.Change, error) {
	const query = `
SELECT seq, record_type, record_id, op, changed_at
FROM changes WHERE seq > ? ORDER BY seq ASC LIMIT ?`
	rows, err := s.db.Executor(ctx).QueryContext(ctx, query, seq, limit)
	if err != nil {
		return nil, sqlitedb.Classify("read changes", err)
	}
	defer rows.Close()
	var out []domain.Change
	for rows.Next() {
		var (
			c   domain.Change
			raw string
		)
		if err := rows.Scan(&c.Seq, &c.RecordType, &c.RecordID, &c.Op, &raw); err != nil {
			return nil, sqlitedb.Classify("scan change", err)
		}
		if c.ChangedAt, err = sqlitedb.ParseTime(raw); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, sqlitedb.Classify("iterate changes", rows.Err())
}

func (s *SQLiteChangeSource) Latest(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.Executor(ctx).QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM changes`).Scan(&seq); err != nil {
		return 0, sqlitedb.Classify("read change head", err)
	}
	return seq, nil
}

// Prune drops entries older than before. The newest entry is always kept so
// AUTOINCREMENT never hands out a sequence a reader has already passed.
func (s *SQLiteChangeSource) Prune(ctx context.Context, before time.Time) (int64, error) {
	const stmt = `DELETE FROM changes WHERE changed_at < ? AND seq < (SELECT MAX(seq) FROM changes)`
	res, err := s.db.Executor(ctx).ExecContext(ctx, stmt, sqlitedb.FormatTime(before))
	if err != nil {
		return 0, sqlitedb.Classify("prune changes", err)
	}
	return res.RowsAffected()
}
