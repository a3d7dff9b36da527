// Package storage provides the durable key-value slots the note snapshot is
// written to. Every backend stores opaque bytes under a string key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"example.com/ocean-notes/internal/config"
	"example.com/ocean-notes/internal/db"
)

var (
	ErrNotFound       = errors.New("storage: key not found")
	ErrUnknownBackend = errors.New("storage: unknown backend")
	ErrInvalidKey     = errors.New("storage: invalid key")
)

// Backend is a durable slot that must be closed when the session ends.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open builds the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("backend", cfg.Backend))

	switch cfg.Backend {
	case config.BackendFile:
		log.Info("opening slot", zap.String("dir", cfg.DataDir))
		return NewFileSlot(cfg.DataDir)

	case config.BackendSQLite:
		path := filepath.Join(cfg.DataDir, "notes.db")
		if err := ensureDir(cfg.DataDir); err != nil {
			return nil, err
		}
		log.Info("opening slot", zap.String("path", path))
		conn, err := db.Open(ctx, db.DriverSQLite, db.SQLiteDSN(path), pool(cfg))
		if err != nil {
			return nil, err
		}
		return NewSQLSlot(ctx, conn)

	case config.BackendPostgres:
		log.Info("opening slot")
		conn, err := db.Open(ctx, db.DriverPostgres, cfg.DatabaseURL, pool(cfg))
		if err != nil {
			return nil, err
		}
		return NewSQLSlot(ctx, conn)

	case config.BackendMemory:
		log.Info("opening slot, notes will not survive this session")
		return NewMemorySlot(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

func pool(cfg config.Config) db.Pool {
	return db.Pool{
		MaxOpen:     cfg.MaxOpenConns,
		MaxIdle:     cfg.MaxIdleConns,
		MaxLifetime: cfg.ConnMaxLifetime,
		MaxIdleTime: cfg.ConnMaxIdleTime,
	}
}
