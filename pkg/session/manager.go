// Package session orchestrates save-slot access over a SnapshotStore,
// serializing concurrent operations per slot.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/reelvm/reel/internal/logging"
	"github.com/reelvm/reel/pkg/domain"
	"github.com/reelvm/reel/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager guards slot access with per-slot locks, garbage collected by
// reference counting.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given snapshot store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller locks entry.mu and calls release(slotID) after unlocking.
func (m *Manager) acquire(slotID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[slotID]
	if !exists {
		entry = &lockEntry{}
		m.locks[slotID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(slotID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[slotID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, slotID)
	}
}

// Save persists a snapshot. An empty slotID gets a generated one; the id
// actually used is returned either way.
func (m *Manager) Save(ctx context.Context, slotID string, snap *domain.Snapshot) (string, error) {
	if slotID == "" {
		slotID = uuid.NewString()
	}
	err := m.WithLock(ctx, slotID, func(ctx context.Context) error {
		return m.store.Save(ctx, slotID, snap)
	})
	if err != nil {
		return "", fmt.Errorf("failed to save slot %s: %w", slotID, err)
	}
	m.logger.Debug("saved snapshot", "slot", slotID, "instances", len(snap.Instances))
	return slotID, nil
}

// Load retrieves a snapshot from the store.
func (m *Manager) Load(ctx context.Context, slotID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, slotID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, slotID)
		return err
	})
	return snap, err
}

// Delete removes a slot from the store.
func (m *Manager) Delete(ctx context.Context, slotID string) error {
	return m.WithLock(ctx, slotID, func(ctx context.Context) error {
		return m.store.Delete(ctx, slotID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// WithLock executes fn while holding the lock for the slot.
func (m *Manager) WithLock(ctx context.Context, slotID string, fn func(context.Context) error) error {
	entry := m.acquire(slotID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(slotID)
	}()

	return fn(ctx)
}
