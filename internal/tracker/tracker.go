// Package tracker ties the ledger, the transaction log and a persistence
// adapter together. One Tracker is shared by every caller in a process.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/ppestock/internal/ledger"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/persist"
	"github.com/erazemk/ppestock/internal/txlog"
)

// ErrUnknownActor means the employee is not on the roster.
var ErrUnknownActor = errors.New("employee is not on the roster")

// Options configures a Tracker.
type Options struct {
	// Seed is saved when the store is empty. Nil starts with an empty catalog.
	Seed *persist.State
	// MaxPerIssue caps a single issue. Zero means no cap.
	MaxPerIssue int
	// LowStockThreshold defaults to ledger.DefaultLowStockThreshold.
	LowStockThreshold int
	Logger            *slog.Logger
	Now               func() time.Time
}

// Tracker serializes every read and mutation behind one mutex. A mutation
// that cannot be saved is rolled back, so memory never runs ahead of storage.
type Tracker struct {
	mu      sync.Mutex
	store   persist.Adapter
	opts    Options
	logger  *slog.Logger
	ledger  *ledger.Ledger
	log     *txlog.Log
	roster  model.Roster
	version int64
}

// Open loads state from store, seeding it first if the store is empty.
func Open(ctx context.Context, store persist.Adapter, opts Options) (*Tracker, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = ledger.DefaultLowStockThreshold
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tracker{store: store, opts: opts, logger: logger}

	st, err := store.Load(ctx)
	if errors.Is(err, persist.ErrEmpty) {
		st = &persist.State{}
		if opts.Seed != nil {
			st = opts.Seed.Clone()
			st.Version = 0
		}
		if err := t.adopt(st); err != nil {
			return nil, fmt.Errorf("seeding state: %w", err)
		}
		if err := store.Save(ctx, st); err != nil {
			return nil, fmt.Errorf("saving seed state: %w", err)
		}
		t.version = st.Version
		logger.Info("seeded empty store", "items", len(st.Items), "employees", len(st.Roster.Employees))
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}
	if err := t.adopt(st); err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}
	return t, nil
}

// adopt replaces in-memory state. The caller holds mu or owns t exclusively.
func (t *Tracker) adopt(st *persist.State) error {
	l, err := ledger.New(st.Items)
	if err != nil {
		return err
	}
	lg, err := txlog.New(st.Transactions)
	if err != nil {
		return err
	}
	t.ledger = l
	t.log = lg
	t.roster = st.Roster.Clone()
	t.version = st.Version
	return nil
}

func (t *Tracker) snapshot() *persist.State {
	return &persist.State{
		Version:      t.version,
		Items:        t.ledger.Items(),
		Transactions: t.log.All(),
		Roster:       t.roster.Clone(),
	}
}

// mutate runs fn on the live state and saves the result. If fn or the save
// fails, the state from before fn is restored.
func (t *Tracker) mutate(ctx context.Context, fn func() error) error {
	before := t.snapshot()
	if err := fn(); err != nil {
		t.restore(before)
		return err
	}
	st := t.snapshot()
	if err := t.store.Save(ctx, st); err != nil {
		t.restore(before)
		return err
	}
	t.version = st.Version
	return nil
}

func (t *Tracker) restore(st *persist.State) {
	if err := t.adopt(st); err != nil {
		// The snapshot was built from a valid ledger and log.
		panic(fmt.Sprintf("restoring snapshot: %v", err))
	}
}

// Close closes the underlying adapter.
func (t *Tracker) Close() error {
	return t.store.Close()
}

// Reload discards in-memory state and re-reads the store, typically after
// a save failed with persist.ErrConflict.
func (t *Tracker) Reload(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("reloading state: %w", err)
	}
	if err := t.adopt(st); err != nil {
		return fmt.Errorf("reloading state: %w", err)
	}
	t.logger.Info("state reloaded", "version", st.Version)
	return nil
}

// State returns a copy of everything the tracker holds.
func (t *Tracker) State() *persist.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

// ReplaceState swaps in a whole new state. st.Version must equal the current
// version, otherwise persist.ErrConflict is returned. On success st.Version
// holds the new version.
func (t *Tracker) ReplaceState(ctx context.Context, st *persist.State) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if st.Version != t.version {
		return persist.ErrConflict
	}
	next := st.Clone()
	err := t.mutate(ctx, func() error {
		return t.adopt(next)
	})
	if err != nil {
		return err
	}
	st.Version = t.version
	t.logger.Info("state replaced", "version", t.version, "items", len(next.Items), "transactions", len(next.Transactions))
	return nil
}

func (t *Tracker) today() (date, stamp string) {
	now := t.opts.Now()
	return now.Format(time.DateOnly), now.Format(time.RFC3339)
}

func (t *Tracker) isEmployee(name string) bool {
	return slices.ContainsFunc(t.roster.Employees, func(e model.Employee) bool { return e.Name == name })
}

func newID() string {
	return uuid.NewString()
}
