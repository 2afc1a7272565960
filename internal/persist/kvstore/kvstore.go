// Package kvstore persists state as JSON documents under fixed keys in a
// SQLite key-value table.
package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/erazemk/ppestock/internal/db"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/persist"
)

// Storage keys.
const (
	StockKey        = "ppe_stock_v1"
	TransactionsKey = "ppe_transactions_v1"
	RosterKey       = "ppe_roster_v1"
	VersionKey      = "ppe_version"
)

// Store is a persist.Adapter over the kv table.
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
		return nil, persist.Failure("opening kv store", err)
	}
	if err := db.Migrate(d); err != nil {
		d.Close()
		return nil, persist.Failure("opening kv store", err)
	}
	return &Store{db: d, owned: true}, nil
}

// Load reads all documents in one transaction.
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
	docs := []struct {
		key string
		dst any
	}{
		{StockKey, &st.Items},
		{TransactionsKey, &st.Transactions},
		{RosterKey, &st.Roster},
	}
	for _, d := range docs {
		var raw string
		err := tx.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, d.key).Scan(&raw)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, persist.Failure("reading "+d.key, err)
		}
		if err := json.Unmarshal([]byte(raw), d.dst); err != nil {
			return nil, persist.Failure("decoding "+d.key, err)
		}
	}

	if st.Items == nil {
		st.Items = []model.Item{}
	}
	if st.Transactions == nil {
		st.Transactions = []model.Transaction{}
	}
	return st, nil
}

// Save writes all documents and the new version atomically.
func (s *Store) Save(ctx context.Context, st *persist.State) error {
	stock, err := json.Marshal(st.Items)
	if err != nil {
		return persist.Failure("encoding stock", err)
	}
	txs, err := json.Marshal(st.Transactions)
	if err != nil {
		return persist.Failure("encoding transactions", err)
	}
	roster, err := json.Marshal(st.Roster)
	if err != nil {
		return persist.Failure("encoding roster", err)
	}

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

	next := st.Version + 1
	values := map[string]string{
		StockKey:        string(stock),
		TransactionsKey: string(txs),
		RosterKey:       string(roster),
		VersionKey:      strconv.FormatInt(next, 10),
	}
	for key, value := range values {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO kv (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		)
		if err != nil {
			return persist.Failure("writing "+key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return persist.Failure("committing state", err)
	}
	st.Version = next
	return nil
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func readVersion(ctx context.Context, tx *sql.Tx) (int64, bool, error) {
	var raw string
	err := tx.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, VersionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parsing %s: %w", VersionKey, err)
	}
	return v, true, nil
}
