package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/ppestock/internal/config"
	"github.com/erazemk/ppestock/internal/db"
	"github.com/erazemk/ppestock/internal/persist"
	"github.com/erazemk/ppestock/internal/persist/kvstore"
	"github.com/erazemk/ppestock/internal/persist/remote"
	"github.com/erazemk/ppestock/internal/persist/sqlstore"
	"github.com/erazemk/ppestock/internal/seed"
	"github.com/erazemk/ppestock/internal/tracker"
)

// backend is an opened store. db is nil and client is set for the remote
// backend; the reverse holds for kv and sql.
type backend struct {
	store  persist.Adapter
	db     *sql.DB
	client *remote.Client
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Backend == config.BackendRemote {
		c := remote.New(cfg.RemoteURL, cfg.RemoteTimeout)
		if cfg.RemotePassword == "" {
			return nil, errors.New("PPE_REMOTE_PASSWORD is required for the remote backend")
		}
		err := remote.DefaultRetry.Do(ctx, func(ctx context.Context) error {
			return c.Login(ctx, cfg.RemoteRole, cfg.RemotePassword, "cli")
		})
		if err != nil {
			return nil, fmt.Errorf("logging in to %s: %w", cfg.RemoteURL, err)
		}
		return &backend{store: c, client: c}, nil
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "path", cfg.DBPath, "backend", cfg.Backend)

	b := &backend{db: database}
	if cfg.Backend == config.BackendKV {
		b.store = kvstore.New(database)
	} else {
		b.store = sqlstore.New(database)
	}
	return b, nil
}

// tracker opens a tracker over the backend, seeding an empty store.
func (b *backend) tracker(ctx context.Context, cfg *config.Config) (*tracker.Tracker, error) {
	return tracker.Open(ctx, b.store, tracker.Options{
		Seed:              seed.State(),
		MaxPerIssue:       cfg.MaxPerIssue,
		LowStockThreshold: cfg.LowStock,
		Logger:            slog.Default(),
	})
}

func (b *backend) Close() error {
	err := b.store.Close()
	if b.db != nil {
		err = errors.Join(err, b.db.Close())
	}
	return err
}
