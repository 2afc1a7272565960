package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/erazemk/ppestock/internal/config"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. If logPath is non-empty, all
// levels are also appended to that file. The returned cleanup closes it.
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	cleanup := func() {}
	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	slog.SetDefault(slog.New(&levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}))
	return cleanup, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&initCmd{cfg: &cfg}, "setup")
	commander.Register(&hashPasswordCmd{cfg: &cfg}, "setup")
	commander.Register(&serveCmd{cfg: &cfg}, "server")
	commander.Register(&stockCmd{cfg: &cfg}, "stock")
	commander.Register(&issueCmd{cfg: &cfg}, "stock")
	commander.Register(&returnCmd{cfg: &cfg}, "stock")
	commander.Register(&exportCmd{cfg: &cfg}, "stock")

	flag.StringVar(&cfg.LogPath, "log", cfg.LogPath, "also append logs to this file")
	flag.Parse()

	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	status := commander.Execute(context.Background())
	closeLog()
	os.Exit(int(status))
}

// backendFlags binds the flags shared by every command that opens a store.
func backendFlags(f *flag.FlagSet, cfg *config.Config) {
	f.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	f.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend: kv, sql or remote")
	f.StringVar(&cfg.RemoteURL, "remote", cfg.RemoteURL, "API server URL for the remote backend")
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
