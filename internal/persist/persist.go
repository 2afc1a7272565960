// Package persist defines the storage seam shared by the key-value,
// structured-database and remote-API backends.
package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/erazemk/ppestock/internal/model"
)

// State is everything a backend stores: catalog, transaction log and roster.
// Version increases by one on every successful Save.
type State struct {
	Version      int64               `json:"version"`
	Items        []model.Item        `json:"items"`
	Transactions []model.Transaction `json:"transactions"`
	Roster       model.Roster        `json:"roster"`
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	return &State{
		Version:      s.Version,
		Items:        model.CloneItems(s.Items),
		Transactions: model.CloneTransactions(s.Transactions),
		Roster:       s.Roster.Clone(),
	}
}

// Adapter loads and saves State.
//
// Load returns the last successfully saved state, or ErrEmpty if nothing has
// been saved yet. Save is a compare-and-swap on st.Version: it fails with
// ErrConflict when the stored version differs, and on success increments
// st.Version. A failed Save leaves the stored state untouched.
type Adapter interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, st *State) error
	Close() error
}

var (
	// ErrPersistence is the kind shared by every storage failure.
	ErrPersistence = errors.New("persistence failure")
	// ErrEmpty means the backend holds no state yet.
	ErrEmpty = errors.New("no persisted state")
	// ErrConflict means another writer saved since this state was loaded.
	ErrConflict = fmt.Errorf("%w: state was modified by another writer", ErrPersistence)
)

// Failure wraps a backend error so it matches ErrPersistence.
func Failure(op string, err error) error {
	if err == nil || errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// NetworkError is a remote-backend failure. StatusCode is 0 when the request
// never got an HTTP response (timeout, refused connection).
type NetworkError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("network error: %s", e.Message)
	}
	return fmt.Sprintf("remote returned %d: %s", e.StatusCode, e.Message)
}

func (e *NetworkError) Is(target error) bool {
	if target == ErrPersistence {
		return true
	}
	return target == ErrConflict && e.StatusCode == 409
}

func (e *NetworkError) Unwrap() error { return e.Err }
