package out

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	changefeedout "ascend/internal/modules/changefeed/port/out"
)

const defaultDebounce = 150 * time.Millisecond

// FSNotifier watches the database directory and wakes the feed when the
// database or its WAL is written by any process.
type FSNotifier struct {
	dbPath   string
	debounce time.Duration
	logger   zerolog.Logger
}

func NewFSNotifier(dbPath string, debounce time.Duration, logger zerolog.Logger) changefeedout.Notifier {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &FSNotifier{dbPath: dbPath, debounce: debounce, logger: logger}
}

func (n *FSNotifier) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// SQLite replaces journal files, so watch the directory rather than the files.
	if err := watcher.Add(filepath.Dir(n.dbPath)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(n.dbPath), err)
	}
	base := filepath.Base(n.dbPath)
	wake := make(chan struct{}, 1)

	var (
		mu     sync.Mutex
		timer  *time.Timer
		closed bool
	)
	fire := func() {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case wake <- struct{}{}:
		default:
		}
	}
	shutdown := func() {
		mu.Lock()
		defer mu.Unlock()
		closed = true
		if timer != nil {
			timer.Stop()
		}
		close(wake)
		_ = watcher.Close()
	}

	go func() {
		defer shutdown()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(event.Name), base) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(n.debounce, fire)
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				n.logger.Warn().Err(err).Msg("database watcher")
			}
		}
	}()
	return wake, nil
}
