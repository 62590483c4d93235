package ports

import (
	"context"

	"github.com/aretw0/formstate/pkg/domain"
)

// SnapshotStore defines the interface for persisting form snapshots.
// This allows a partially filled form to survive reloads and be resumed later.
// Implementations must be safe for concurrent use.
type SnapshotStore interface {
	// Save persists the snapshot under key, replacing any previous one.
	Save(ctx context.Context, key string, snapshot *domain.Snapshot) error

	// Load retrieves the snapshot stored under key.
	// Returns domain.ErrSnapshotNotFound if there is none, and an error
	// wrapping domain.ErrMalformedSnapshot if the stored bytes do not decode.
	Load(ctx context.Context, key string) (*domain.Snapshot, error)

	// Delete removes the snapshot stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys that currently hold a snapshot.
	List(ctx context.Context) ([]string, error)
}
