// Package config reads settings from the environment and an optional .env
// file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend names.
const (
	BackendKV     = "kv"
	BackendSQL    = "sql"
	BackendRemote = "remote"
)

// Config holds all runtime settings. Command-line flags override it after Load.
type Config struct {
	DBPath  string // PPE_DB
	Addr    string // PPE_ADDR
	Backend string // PPE_BACKEND: kv, sql or remote

	RemoteURL      string        // PPE_REMOTE_URL
	RemoteTimeout  time.Duration // PPE_REMOTE_TIMEOUT
	RemoteRole     string        // PPE_REMOTE_ROLE
	RemotePassword string        // PPE_REMOTE_PASSWORD

	JWTSecret    string // PPE_JWT_SECRET; generated and stored in the database when empty
	PasswordHash string // PPE_PASSWORD_HASH
	LogPath      string // PPE_LOG

	LowStock    int // PPE_LOW_STOCK
	MaxPerIssue int // PPE_MAX_PER_ISSUE
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		DBPath:        "ppestock.sqlite3",
		Addr:          ":8080",
		Backend:       BackendSQL,
		RemoteTimeout: 10 * time.Second,
		RemoteRole:    "user",
		LowStock:      10,
		MaxPerIssue:   50,
	}
}

// Load reads the given .env files (".env" when none are named), then the
// process environment. Missing .env files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("reading %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, falling back to Defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Defaults()

	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("PPE_DB", &cfg.DBPath)
	str("PPE_ADDR", &cfg.Addr)
	str("PPE_BACKEND", &cfg.Backend)
	str("PPE_REMOTE_URL", &cfg.RemoteURL)
	str("PPE_REMOTE_ROLE", &cfg.RemoteRole)
	str("PPE_REMOTE_PASSWORD", &cfg.RemotePassword)
	str("PPE_JWT_SECRET", &cfg.JWTSecret)
	str("PPE_PASSWORD_HASH", &cfg.PasswordHash)
	str("PPE_LOG", &cfg.LogPath)

	if v := getenv("PPE_REMOTE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("PPE_REMOTE_TIMEOUT must be a duration: %w", err)
		}
		cfg.RemoteTimeout = d
	}
	for key, dst := range map[string]*int{"PPE_LOW_STOCK": &cfg.LowStock, "PPE_MAX_PER_ISSUE": &cfg.MaxPerIssue} {
		v := getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s must be a number: %w", key, err)
		}
		*dst = n
	}
	return cfg, nil
}

// Validate checks that the settings fit together.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendKV, BackendSQL:
		if c.DBPath == "" {
			return fmt.Errorf("PPE_DB is required for the %s backend", c.Backend)
		}
	case BackendRemote:
		if c.RemoteURL == "" {
			return errors.New("PPE_REMOTE_URL is required for the remote backend")
		}
		u, err := url.Parse(c.RemoteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("PPE_REMOTE_URL %q is not an http(s) URL", c.RemoteURL)
		}
		if c.RemoteTimeout <= 0 {
			return errors.New("PPE_REMOTE_TIMEOUT must be positive")
		}
	default:
		return fmt.Errorf("PPE_BACKEND must be kv, sql or remote, got %q", c.Backend)
	}
	if c.LowStock < 0 {
		return errors.New("PPE_LOW_STOCK must not be negative")
	}
	if c.MaxPerIssue < 0 {
		return errors.New("PPE_MAX_PER_ISSUE must not be negative")
	}
	return nil
}
