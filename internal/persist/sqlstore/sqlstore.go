// Package sqlstore persists state in normalized SQLite tables, writing only
// the rows that changed on each save.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/erazemk/ppestock/internal/db"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/persist"
)

const versionKey = "state_version"

// Store is a persist.Adapter over the structured schema.
type Store struct {
	db    *sql.DB
	owned bool
}

// New returns a store on an already migrated database. Close does not close db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens and migrates the database at path.
func Open(path string) (*Store, error) {
	d, err := db.Open(path)
	if err != nil {
		return nil, persist.Failure("opening sql store", err)
	}
	if err := db.Migrate(d); err != nil {
		d.Close()
		return nil, persist.Failure("opening sql store", err)
	}
	return &Store{db: d, owned: true}, nil
}

// DB exposes the underlying handle so proofs can share the file.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Load reads the whole state in one read transaction.
func (s *Store) Load(ctx context.Context) (*persist.State, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persist.Failure("loading state", err)
	}
	defer tx.Rollback()

	version, ok, err := readVersion(ctx, tx)
	if err != nil {
		return nil, persist.Failure("loading state", err)
	}
	if !ok {
		return nil, persist.ErrEmpty
	}

	st := &persist.State{Version: version}
	if st.Items, err = queryItems(ctx, tx, "", nil); err != nil {
		return nil, persist.Failure("loading state", err)
	}
	if st.Transactions, err = queryTransactions(ctx, tx, "", nil); err != nil {
		return nil, persist.Failure("loading state", err)
	}
	if st.Roster, err = queryRoster(ctx, tx); err != nil {
		return nil, persist.Failure("loading state", err)
	}
	return st, nil
}

// Save writes the difference between st and the stored rows.
func (s *Store) Save(ctx context.Context, st *persist.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persist.Failure("saving state", err)
	}
	defer tx.Rollback()

	current, _, err := readVersion(ctx, tx)
	if err != nil {
		return persist.Failure("saving state", err)
	}
	if current != st.Version {
		return persist.ErrConflict
	}

	if err := saveItems(ctx, tx, st.Items); err != nil {
		return persist.Failure("saving items", err)
	}
	if err := saveTransactions(ctx, tx, st.Transactions); err != nil {
		return persist.Failure("saving transactions", err)
	}
	if err := saveRoster(ctx, tx, st.Roster); err != nil {
		return persist.Failure("saving roster", err)
	}

	next := st.Version + 1
	_, err = tx.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		versionKey, strconv.FormatInt(next, 10),
	)
	if err != nil {
		return persist.Failure("saving version", err)
	}

	if err := tx.Commit(); err != nil {
		return persist.Failure("committing state", err)
	}
	st.Version = next
	return nil
}

// ItemsByCategory returns the items of one category in catalog order.
func (s *Store) ItemsByCategory(ctx context.Context, category string) ([]model.Item, error) {
	items, err := queryItems(ctx, s.db, "WHERE category = ?", []any{category})
	if err != nil {
		return nil, fmt.Errorf("listing items by category: %w", err)
	}
	return items, nil
}

// TransactionsByDate returns the transactions recorded on date (YYYY-MM-DD).
func (s *Store) TransactionsByDate(ctx context.Context, date string) ([]model.Transaction, error) {
	txs, err := queryTransactions(ctx, s.db, "WHERE date = ?", []any{date})
	if err != nil {
		return nil, fmt.Errorf("listing transactions by date: %w", err)
	}
	return txs, nil
}

// TransactionsByEmployee returns the transactions recorded against an
// employee or site.
func (s *Store) TransactionsByEmployee(ctx context.Context, name string) ([]model.Transaction, error) {
	txs, err := queryTransactions(ctx, s.db, "WHERE employee = ?", []any{name})
	if err != nil {
		return nil, fmt.Errorf("listing transactions by employee: %w", err)
	}
	return txs, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func readVersion(ctx context.Context, tx *sql.Tx) (int64, bool, error) {
	var raw string
	err := tx.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, versionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading version: %w", err)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parsing version: %w", err)
	}
	return v, true, nil
}
