package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	adapterout "ascend/internal/modules/changefeed/adapter/out"
	"ascend/internal/platform/sqlitedb"
)

func TestSQLiteChangeSourceReadsPastCursor(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "ascend.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.Add(30 * 24 * time.Hour)
	require.NoError(t, sqlitedb.RecordChange(ctx, db.Executor(ctx), "mission", "m-1", "create", old))
	require.NoError(t, sqlitedb.RecordChange(ctx, db.Executor(ctx), "ledger", "local", "award", recent))
	require.NoError(t, sqlitedb.RecordChange(ctx, db.Executor(ctx), "mission", "m-1", "complete", old))

	source := adapterout.NewSQLiteChangeSource(db)
	head, err := source.Latest(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, head)

	changes, err := source.Since(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	require.Equal(t, "ledger", changes[0].RecordType)
	require.Equal(t, recent, changes[0].ChangedAt)
	require.EqualValues(t, 3, changes[1].Seq)

	pruned, err := source.Prune(ctx, recent)
	require.NoError(t, err)
	require.EqualValues(t, 1, pruned)

	remaining, err := source.Since(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	require.EqualValues(t, 2, remaining[0].Seq)
}

func TestFSNotifierWakesOnDatabaseWrites(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ascend.db")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wake, err := adapterout.NewFSNotifier(dbPath, 20*time.Millisecond, zerolog.Nop()).Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("x"), 0o644))

	select {
	case <-wake:
	case <-time.After(2 * time.Second):
		t.Fatal("no wakeup after database write")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-wake:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
