package out

import (
	"context"
	"time"

	"ascend/internal/modules/changefeed/domain"
)

type ChangeSource interface {
	// Since returns changes with a sequence above seq, oldest first.
	Since(ctx context.Context, seq int64, limit int) ([]domain.Change, error)
	Latest(ctx context.Context) (int64, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Notifier wakes the feed when the store may have new changes. Wakeups
// coalesce; a receiver must read everything past its cursor.
type Notifier interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}
