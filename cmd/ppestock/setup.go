package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/google/subcommands"

	"github.com/erazemk/ppestock/internal/auth"
	"github.com/erazemk/ppestock/internal/config"
	"github.com/erazemk/ppestock/internal/db"
)

type initCmd struct {
	cfg *config.Config
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a database with the initial catalog and roster" }
func (*initCmd) Usage() string {
	return `init [-db <path>] [-backend kv|sql]

  Creates the database, seeds the PPE catalog and employee roster, and
  prints a generated shared login password.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cfg.DBPath, "db", c.cfg.DBPath, "SQLite database path")
	f.StringVar(&c.cfg.Backend, "backend", c.cfg.Backend, "storage backend: kv or sql")
}

func (c *initCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.cfg.Backend == config.BackendRemote {
		return fail("init works on a local database; the remote server initializes its own")
	}
	if _, err := os.Stat(c.cfg.DBPath); err == nil {
		return fail("database file %s already exists", c.cfg.DBPath)
	}

	password, err := generatePassword(16)
	if err != nil {
		return fail("generating password: %v", err)
	}
	if err := initDatabase(ctx, c.cfg, password); err != nil {
		os.Remove(c.cfg.DBPath)
		return fail("%v", err)
	}

	fmt.Printf("Database created: %s (%s backend)\n", c.cfg.DBPath, c.cfg.Backend)
	fmt.Println("Catalog and roster seeded.")
	fmt.Println()
	fmt.Printf("Shared login password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password. It cannot be recovered, only replaced with hash-password -store.")
	return subcommands.ExitSuccess
}

func initDatabase(ctx context.Context, cfg *config.Config, password string) error {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if _, err := b.tracker(ctx, cfg); err != nil {
		return fmt.Errorf("seeding: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return db.SetPasswordHash(ctx, b.db, hash)
}

type hashPasswordCmd struct {
	cfg   *config.Config
	store bool
}

func (*hashPasswordCmd) Name() string     { return "hash-password" }
func (*hashPasswordCmd) Synopsis() string { return "hash a shared login password" }
func (*hashPasswordCmd) Usage() string {
	return `hash-password [-store] [-db <path>] [<password>]

  Prints the bcrypt hash for PPE_PASSWORD_HASH, or with -store saves it in
  the database. A password is generated when none is given.
`
}

func (c *hashPasswordCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.store, "store", false, "store the hash in the database instead of printing it")
	f.StringVar(&c.cfg.DBPath, "db", c.cfg.DBPath, "SQLite database path")
}

func (c *hashPasswordCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	password := f.Arg(0)
	if password == "" {
		var err error
		if password, err = generatePassword(16); err != nil {
			return fail("generating password: %v", err)
		}
		fmt.Printf("Password: %s\n", password)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail("%v", err)
	}

	if !c.store {
		fmt.Printf("PPE_PASSWORD_HASH=%s\n", hash)
		return subcommands.ExitSuccess
	}

	database, err := db.Open(c.cfg.DBPath)
	if err != nil {
		return fail("%v", err)
	}
	defer database.Close()
	if err := db.Migrate(database); err != nil {
		return fail("migrating database: %v", err)
	}
	if err := db.SetPasswordHash(ctx, database, hash); err != nil {
		return fail("%v", err)
	}
	fmt.Println("Password hash stored.")
	return subcommands.ExitSuccess
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
