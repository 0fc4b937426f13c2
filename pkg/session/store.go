package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTTL is the inactivity period after which a session expires.
const DefaultTTL = 30 * time.Minute

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// Store is the narrow interface the conversation machine depends on.
type Store interface {
	// Get returns a copy of the session.
	Get(id string) (*Session, error)

	// Put stores a copy of the session, replacing any existing one.
	Put(s *Session) error

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(id string) error

	// Update runs fn on a copy of the session while holding the session's
	// lock, and commits the copy only if fn succeeds. A missing session is
	// created first. Update returns the committed session, or the unchanged
	// one together with fn's error.
	Update(id string, fn func(*Session) error) (*Session, error)

	// Sweep evicts sessions inactive for longer than the TTL and returns
	// how many were removed.
	Sweep(now time.Time) int
}

// Snapshotter persists sessions outside the process.
type Snapshotter interface {
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	LoadAll(ctx context.Context) ([]*Session, error)
}

// entry owns one session. mu is held for a whole transition.
type entry struct {
	mu           sync.Mutex
	session      *Session
	lastActivity atomic.Int64
	removed      bool
}

// MemoryStore is an in-memory Store with optional write-through snapshots.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry

	ttl       time.Duration
	now       func() time.Time
	snapshots Snapshotter
	logger    *slog.Logger
}

// StoreOption configures a MemoryStore.
type StoreOption func(*MemoryStore)

// WithTTL sets the inactivity TTL.
func WithTTL(ttl time.Duration) StoreOption {
	return func(m *MemoryStore) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithStoreClock sets the clock.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(m *MemoryStore) {
		m.now = now
	}
}

// WithSnapshots enables write-through persistence.
func WithSnapshots(s Snapshotter) StoreOption {
	return func(m *MemoryStore) {
		m.snapshots = s
	}
}

// WithStoreLogger sets the logger.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(m *MemoryStore) {
		m.logger = logger
	}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	m := &MemoryStore{
		entries: make(map[string]*entry),
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "session.store")
	return m
}

// Get returns a copy of the session.
func (m *MemoryStore) Get(id string) (*Session, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.session.Clone(), nil
}

// Put stores a copy of the session.
func (m *MemoryStore) Put(s *Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("session id cannot be empty")
	}
	_, err := m.Update(s.ID, func(dst *Session) error {
		version := dst.Version
		*dst = *s.Clone()
		dst.Version = version
		return nil
	})
	return err
}

// Delete removes the session.
func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	delete(m.entries, id)
	m.mu.Unlock()
	if !ok {
		return nil
	}

	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()

	m.dropSnapshot(id)
	return nil
}

// Update runs fn on a copy of the session under its lock.
func (m *MemoryStore) Update(id string, fn func(*Session) error) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}

	for {
		e := m.entryFor(id)
		e.mu.Lock()
		if e.removed {
			// Evicted between lookup and lock; start over with a fresh entry.
			e.mu.Unlock()
			continue
		}

		work := e.session.Clone()
		if err := fn(work); err != nil {
			current := e.session.Clone()
			e.mu.Unlock()
			return current, err
		}

		now := m.now()
		work.ID = id
		work.Version = e.session.Version + 1
		work.LastActivity = now
		e.session = work
		e.lastActivity.Store(now.UnixNano())
		committed := work.Clone()
		e.mu.Unlock()

		m.saveSnapshot(committed)
		return committed, nil
	}
}

func (m *MemoryStore) entryFor(id string) *entry {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if ok {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		return e
	}
	now := m.now()
	e = &entry{session: New(id, now)}
	e.lastActivity.Store(now.UnixNano())
	m.entries[id] = e
	return e
}

// Sweep evicts expired sessions. A session whose lock is held is
// mid-transition and is skipped.
func (m *MemoryStore) Sweep(now time.Time) int {
	cutoff := now.Add(-m.ttl).UnixNano()

	var evicted []string
	m.mu.Lock()
	for id, e := range m.entries {
		if e.lastActivity.Load() >= cutoff {
			continue
		}
		if !e.mu.TryLock() {
			continue
		}
		e.removed = true
		e.mu.Unlock()
		delete(m.entries, id)
		evicted = append(evicted, id)
	}
	m.mu.Unlock()

	for _, id := range evicted {
		m.dropSnapshot(id)
	}
	if len(evicted) > 0 {
		m.logger.Info("expired sessions evicted", "count", len(evicted))
	}
	return len(evicted)
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Restore loads every snapshot that has not yet expired.
func (m *MemoryStore) Restore(ctx context.Context) (int, error) {
	if m.snapshots == nil {
		return 0, nil
	}
	sessions, err := m.snapshots.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load session snapshots: %w", err)
	}

	cutoff := m.now().Add(-m.ttl)
	restored := 0
	m.mu.Lock()
	for _, s := range sessions {
		if s.LastActivity.Before(cutoff) {
			continue
		}
		e := &entry{session: s}
		e.lastActivity.Store(s.LastActivity.UnixNano())
		m.entries[s.ID] = e
		restored++
	}
	m.mu.Unlock()

	m.logger.Info("sessions restored from snapshots", "count", restored, "skipped", len(sessions)-restored)
	return restored, nil
}

func (m *MemoryStore) saveSnapshot(s *Session) {
	if m.snapshots == nil {
		return
	}
	if err := m.snapshots.Save(context.Background(), s); err != nil {
		m.logger.Warn("failed to snapshot session", "session_id", s.ID, "error", err)
	}
}

func (m *MemoryStore) dropSnapshot(id string) {
	if m.snapshots == nil {
		return
	}
	if err := m.snapshots.Delete(context.Background(), id); err != nil {
		m.logger.Warn("failed to delete session snapshot", "session_id", id, "error", err)
	}
}
