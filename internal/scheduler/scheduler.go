// Package scheduler drives the reminder store on a timer.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store is the part of reminder.Store the scheduler drives.
type Store interface {
	FetchAll(ctx context.Context, triggerPopups bool)
	Tick()
}

// Options controls the timers. A zero RefreshInterval disables periodic
// refetching.
type Options struct {
	TickInterval    time.Duration
	RefreshInterval time.Duration
}

// Scheduler ticks the store's clock window and optionally refetches the
// list. It is owned by the caller and stops with its context or Stop.
type Scheduler struct {
	store  Store
	opts   Options
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Scheduler for store.
func New(store Store, opts Options, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		store:  store,
		opts:   opts,
		logger: logger.Named("scheduler"),
	}
}

// Run blocks: an initial fetch with popups, then a tick every
// TickInterval and a silent refetch every RefreshInterval.
// It exits when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.opts.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", s.opts.TickInterval)
	}
	if s.opts.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval must not be negative, got %s", s.opts.RefreshInterval)
	}

	s.logger.Info("started",
		zap.Duration("tick_interval", s.opts.TickInterval),
		zap.Duration("refresh_interval", s.opts.RefreshInterval))

	s.store.FetchAll(ctx, true)

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	// A nil channel never fires, which keeps refresh off.
	var refresh <-chan time.Time
	if s.opts.RefreshInterval > 0 {
		refreshTicker := time.NewTicker(s.opts.RefreshInterval)
		defer refreshTicker.Stop()
		refresh = refreshTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down")
			return nil
		case <-ticker.C:
			s.store.Tick()
		case <-refresh:
			s.logger.Debug("refreshing reminders")
			s.store.FetchAll(ctx, false)
		}
	}
}

// Start runs the scheduler in the background. Errors from Run are logged.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		if err := s.Run(ctx); err != nil {
			s.logger.Error("scheduler stopped", zap.Error(err))
		}
	}()
}

// Stop cancels a scheduler started with Start and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
