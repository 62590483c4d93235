package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/aretw0/formstate/internal/adapters/file"
	"github.com/aretw0/formstate/pkg/adapters/memory"
	"github.com/aretw0/formstate/pkg/adapters/redis"
	"github.com/aretw0/formstate/pkg/adapters/sqlite"
	"github.com/aretw0/formstate/pkg/persistence/middleware"
	"github.com/aretw0/formstate/pkg/ports"
	"github.com/aretw0/formstate/pkg/session"
)

// OpenSessions builds the snapshot store selected by opts, wraps it with the
// configured middleware and returns a session manager over it. Redis stores
// also get a distributed lock. The returned func releases the backend.
func OpenSessions(ctx context.Context, opts Options, logger *slog.Logger) (*session.Manager, func() error, error) {
	store, closeFn, locker, err := openBackend(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	var mws []middleware.Middleware
	if len(opts.MaskFields) > 0 {
		mws = append(mws, middleware.NewMaskingMiddleware(opts.MaskFields))
	}
	if opts.EncryptionKey != "" {
		key, err := hex.DecodeString(opts.EncryptionKey)
		if err != nil || len(key) != 32 {
			_ = closeFn()
			return nil, nil, fmt.Errorf("encryption key must be 64 hex characters (32 bytes)")
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	store = middleware.Chain(store, mws...)

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker))
	}
	logger.Debug("store ready", "store", opts.Store, "middleware", len(mws))
	return session.NewManager(store, sessionOpts...), closeFn, nil
}

func openBackend(ctx context.Context, opts Options) (ports.SnapshotStore, func() error, ports.DistributedLocker, error) {
	noop := func() error { return nil }

	switch opts.Store {
	case "", StoreFile:
		dir := opts.StoreDir
		if dir == "" {
			dir = DefaultStoreDir
		}
		return file.New(dir), noop, nil, nil

	case StoreMemory:
		return memory.NewStore(), noop, nil, nil

	case StoreRedis:
		addr := opts.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		store := redis.New(addr, opts.RedisPassword, opts.RedisDB)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
		}
		return store, store.Close, redis.NewLocker(store.Client(), redis.DefaultPrefix), nil

	case StoreSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = "formstate.db"
		}
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store.Close, nil, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store %q (want file, memory, redis or sqlite)", opts.Store)
	}
}
