package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/ppestock/internal/model"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Load(ctx)
	require.ErrorIs(t, err, ErrEmpty)

	st := &State{
		Items:        []model.Item{{ID: 1, Name: "Ear Plug", Variants: []model.Variant{{Code: "STD", Balance: 200}}}},
		Transactions: []model.Transaction{{ID: "t1", Type: model.TxOut, Quantity: 2}},
	}
	require.NoError(t, m.Save(ctx, st))
	assert.Equal(t, int64(1), st.Version)

	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestMemoryConflict(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, &State{}))

	stale := &State{Version: 0}
	err := m.Save(ctx, stale)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, int64(0), stale.Version)
}

func TestNetworkErrorKinds(t *testing.T) {
	var err error = &NetworkError{StatusCode: 409, Message: "version mismatch"}
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, ErrConflict)

	err = &NetworkError{Message: "timeout", Err: context.DeadlineExceeded}
	assert.ErrorIs(t, err, ErrPersistence)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var ne *NetworkError
	assert.True(t, errors.As(Failure("saving", err), &ne))
}

func TestFailureWraps(t *testing.T) {
	base := errors.New("disk full")
	err := Failure("saving state", base)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "persistence failure: saving state: disk full", err.Error())

	assert.Same(t, ErrConflict, Failure("x", ErrConflict))
	assert.NoError(t, Failure("x", nil))
}
