package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the sweep once a minute.
const DefaultSweepSchedule = "@every 1m"

// Sweeper evicts expired sessions on a cron schedule.
type Sweeper struct {
	store    Store
	schedule string
	now      func() time.Time
	onSweep  func(evicted int)
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepClock sets the clock passed to Store.Sweep.
func WithSweepClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		s.now = now
	}
}

// WithSweepObserver registers a callback run after every sweep.
func WithSweepObserver(fn func(evicted int)) SweeperOption {
	return func(s *Sweeper) {
		s.onSweep = fn
	}
}

// NewSweeper creates a sweeper. An empty schedule uses DefaultSweepSchedule.
func NewSweeper(store Store, schedule string, opts ...SweeperOption) *Sweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	s := &Sweeper{
		store:    store,
		schedule: schedule,
		now:      time.Now,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "session.sweeper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules the sweep. It stops when ctx is cancelled.
//
// Accepted schedules are standard cron expressions or descriptors:
//   - "@every 1m"   - Every minute
//   - "*/5 * * * *" - Every five minutes
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("session sweeper started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce() {
	evicted := s.store.Sweep(s.now())
	if evicted > 0 {
		s.logger.Debug("sweep completed", "evicted", evicted)
	}
	if s.onSweep != nil {
		s.onSweep(evicted)
	}
}

// Stop stops the sweeper and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("session sweeper stopped")
	}
}

// IsRunning reports whether the sweeper is scheduled.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled sweep, or nil when not scheduled.
func (s *Sweeper) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
