package memory

import (
	"context"
	"sync"

	"github.com/aretw0/formstate/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Snapshot),
	}
}

// Save persists the snapshot in memory.
// FormState is immutable, so a shallow copy of the snapshot isolates the store from the caller.
func (s *Store) Save(ctx context.Context, key string, snapshot *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = *snapshot
	return nil
}

// Load retrieves the snapshot from memory.
func (s *Store) Load(ctx context.Context, key string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.data[key]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return &snapshot, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns stored keys.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	return keys, nil
}

// Discard is a store that keeps nothing: saves are dropped and loads always miss.
// It is the fallback for hosts without persistent storage.
type Discard struct{}

// NewDiscard returns a no-op store.
func NewDiscard() Discard { return Discard{} }

func (Discard) Save(ctx context.Context, key string, snapshot *domain.Snapshot) error { return nil }

func (Discard) Load(ctx context.Context, key string) (*domain.Snapshot, error) {
	return nil, domain.ErrSnapshotNotFound
}

func (Discard) Delete(ctx context.Context, key string) error { return nil }

func (Discard) List(ctx context.Context) ([]string, error) { return []string{}, nil }
