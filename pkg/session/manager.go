package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/formstate"
	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/ports"
	"github.com/aretw0/formstate/pkg/schema"
)

// DefaultLockTTL bounds how long a crashed holder can keep a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes snapshot access per key, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the given snapshot store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// Load retrieves a snapshot from the store.
func (m *Manager) Load(ctx context.Context, key string) (*domain.Snapshot, error) {
	var snapshot *domain.Snapshot
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		snapshot, err = m.store.Load(ctx, key)
		return err
	})
	return snapshot, err
}

// Save persists a snapshot.
func (m *Manager) Save(ctx context.Context, key string, snapshot *domain.Snapshot) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Save(ctx, key, snapshot)
	})
}

// Delete removes a snapshot from the store.
func (m *Manager) Delete(ctx context.Context, key string) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Delete(ctx, key)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns a SnapshotStore view whose operations go through the manager's locks.
func (m *Manager) Store() ports.SnapshotStore {
	return lockedStore{m}
}

// Open opens a form persisted under key through the manager, resuming its
// snapshot if one exists. opts are applied after the manager's own options.
func (m *Manager) Open(ctx context.Context, key string, s *schema.Schema, opts ...formstate.Option) (*formstate.Form, error) {
	if key == "" {
		return nil, domain.ErrMissingKey
	}
	base := []formstate.Option{
		formstate.WithStore(m.Store()),
		formstate.WithKey(key),
		formstate.WithLogger(m.logger),
	}
	return formstate.Open(ctx, s, append(base, opts...)...)
}

// WithLock executes fn while holding the lock for key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

type lockedStore struct{ m *Manager }

func (s lockedStore) Save(ctx context.Context, key string, snapshot *domain.Snapshot) error {
	return s.m.Save(ctx, key, snapshot)
}

func (s lockedStore) Load(ctx context.Context, key string) (*domain.Snapshot, error) {
	return s.m.Load(ctx, key)
}

func (s lockedStore) Delete(ctx context.Context, key string) error {
	return s.m.Delete(ctx, key)
}

func (s lockedStore) List(ctx context.Context) ([]string, error) {
	return s.m.List(ctx)
}
