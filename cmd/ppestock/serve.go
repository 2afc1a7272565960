package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"github.com/erazemk/ppestock/internal/api"
	"github.com/erazemk/ppestock/internal/auth"
	"github.com/erazemk/ppestock/internal/config"
	"github.com/erazemk/ppestock/internal/db"
	"github.com/erazemk/ppestock/internal/web"
)

type serveCmd struct {
	cfg *config.Config
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the web UI and HTTP API server" }
func (*serveCmd) Usage() string {
	return `serve [-db <path>] [-backend kv|sql] [-addr <host:port>]

  Serves the operator web UI and the stock API. The database is created and seeded on first run.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cfg.DBPath, "db", c.cfg.DBPath, "SQLite database path")
	f.StringVar(&c.cfg.Backend, "backend", c.cfg.Backend, "storage backend: kv or sql")
	f.StringVar(&c.cfg.Addr, "addr", c.cfg.Addr, "listen address")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.cfg.Backend == config.BackendRemote {
		return fail("serve needs a local backend (kv or sql)")
	}

	b, err := openBackend(ctx, c.cfg)
	if err != nil {
		return fail("%v", err)
	}
	defer b.Close()

	t, err := b.tracker(ctx, c.cfg)
	if err != nil {
		slog.Error("failed to open tracker", "error", err)
		return subcommands.ExitFailure
	}

	jwtSecret := c.cfg.JWTSecret
	if jwtSecret == "" {
		// Auto-generated on first run.
		if jwtSecret, err = db.JWTSecret(ctx, b.db); err != nil {
			slog.Error("failed to get JWT secret", "error", err)
			return subcommands.ExitFailure
		}
	}
	passwordHash := c.cfg.PasswordHash
	if passwordHash == "" {
		if passwordHash, err = db.PasswordHash(ctx, b.db); err != nil {
			return fail("%v: run init or hash-password -store, or set PPE_PASSWORD_HASH", err)
		}
	}

	deps := api.Deps{
		Tracker:      t,
		DB:           b.db,
		JWTSecret:    jwtSecret,
		Password:     auth.NewPassword(passwordHash),
	}
	webRouter, err := web.NewRouter(deps)
	if err != nil {
		slog.Error("failed to set up web router", "error", err)
		return subcommands.ExitFailure
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(deps))
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              c.cfg.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", c.cfg.Addr, "low_stock", c.cfg.LowStock, "max_per_issue", c.cfg.MaxPerIssue)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		return subcommands.ExitFailure
	}

	slog.Info("server stopped, closing database")
	return subcommands.ExitSuccess
}
