// Package sqlite provides a SnapshotStore backed by an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/formstate/pkg/domain"
	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

// Store implements ports.SnapshotStore on a single "snapshots" table.
type Store struct {
	db    *sql.DB
	owned bool
}

// Open opens (or creates) the database at dsn and migrates the schema.
// A plain path works as dsn, e.g. "formstate.db" or ":memory:".
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, owned: true}
	if err := s.CreateTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewFromDB wraps an existing handle. The caller must run CreateTable
// and remains responsible for closing db.
func NewFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateTable creates the snapshots table if it does not exist.
func (s *Store) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			key      TEXT PRIMARY KEY,
			payload  TEXT NOT NULL,
			saved_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating snapshots table: %w", err)
	}
	return nil
}

// Save upserts the snapshot.
func (s *Store) Save(ctx context.Context, key string, snapshot *domain.Snapshot) error {
	if key == "" {
		return domain.ErrMissingKey
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
	`, key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves the snapshot stored under key.
func (s *Store) Load(ctx context.Context, key string) (*domain.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSnapshot, err)
	}
	return &snapshot, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// List returns stored keys, most recently saved first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM snapshots ORDER BY saved_at DESC, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close releases the database if the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
