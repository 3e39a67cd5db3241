package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ascend/internal/modules/changefeed/domain"
	changefeedout "ascend/internal/modules/changefeed/port/out"
	"ascend/internal/platform/clock"
)

const (
	batchSize = 200
	retention = 7 * 24 * time.Hour
)

type FeedConfig struct {
	// PollInterval is the fallback when no wakeup arrives.
	PollInterval time.Duration
}

// Feed reads the change log past its cursor and hands each change to the
// matching subscriptions.
type Feed struct {
	source   changefeedout.ChangeSource
	notifier changefeedout.Notifier
	clock    clock.Clock
	cfg      FeedConfig
	logger   zerolog.Logger

	mu     sync.RWMutex
	subs   []domain.Subscription
	cursor int64
}

func NewFeed(source changefeedout.ChangeSource, notifier changefeedout.Notifier, clock clock.Clock, cfg FeedConfig, logger zerolog.Logger) *Feed {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return &Feed{source: source, notifier: notifier, clock: clock, cfg: cfg, logger: logger.With().Str("component", "changefeed").Logger()}
}

func (f *Feed) Subscribe(sub domain.Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, sub)
}

// Start positions the cursor at the newest change, so only changes made
// from now on are delivered, and prunes old log entries.
func (f *Feed) Start(ctx context.Context) error {
	latest, err := f.source.Latest(ctx)
	if err != nil {
		return fmt.Errorf("read change log head: %w", err)
	}
	f.mu.Lock()
	f.cursor = latest
	f.mu.Unlock()
	if n, err := f.source.Prune(ctx, f.clock.Now().Add(-retention)); err != nil {
		f.logger.Warn().Err(err).Msg("prune change log")
	} else if n > 0 {
		f.logger.Debug().Int64("pruned", n).Msg("change log pruned")
	}
	return nil
}

func (f *Feed) Run(ctx context.Context) error {
	if err := f.Start(ctx); err != nil {
		return err
	}
	var wake <-chan struct{}
	if f.notifier != nil {
		ch, err := f.notifier.Watch(ctx)
		if err != nil {
			f.logger.Warn().Err(err).Msg("change notifications unavailable; polling only")
		} else {
			wake = ch
		}
	}
	ticker := time.NewTicker(f.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-wake:
			if !ok {
				wake = nil
				continue
			}
		case <-ticker.C:
		}
		if _, err := f.Drain(ctx); err != nil && ctx.Err() == nil {
			f.logger.Warn().Err(err).Msg("read change log")
		}
	}
}

// Drain delivers every change past the cursor and reports how many were
// read.
func (f *Feed) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		f.mu.RLock()
		cursor := f.cursor
		f.mu.RUnlock()
		changes, err := f.source.Since(ctx, cursor, batchSize)
		if err != nil {
			return total, err
		}
		for _, c := range changes {
			f.deliver(c)
		}
		total += len(changes)
		if len(changes) > 0 {
			f.mu.Lock()
			f.cursor = changes[len(changes)-1].Seq
			f.mu.Unlock()
		}
		if len(changes) < batchSize {
			return total, nil
		}
	}
}

func (f *Feed) Cursor() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cursor
}

func (f *Feed) deliver(c domain.Change) {
	f.mu.RLock()
	subs := append([]domain.Subscription(nil), f.subs...)
	f.mu.RUnlock()
	for _, sub := range subs {
		if sub.Matches(c) {
			sub.Handler(c)
		}
	}
}
