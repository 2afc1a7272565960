package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/ppestock/internal/db"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/persist"
)

func sampleState() *persist.State {
	return &persist.State{
		Items: []model.Item{
			{ID: 5, Category: "Head Protection", Name: "Safety Helmet (Yellow)", Variants: []model.Variant{
				{Code: "S", Label: "S", Balance: 6},
				{Code: "M", Label: "M", Balance: 20},
			}},
			{ID: 2, Category: "Gloves", Name: "Hand Gloves", Brand: "PROSAFE", Variants: []model.Variant{
				{Code: "STD", Label: "Standard", Balance: 482},
			}},
		},
		Transactions: []model.Transaction{
			{
				ID: "t1", Type: model.TxOut, Date: "2026-10-18", Time: "2026-10-18T09:00:00Z",
				Employee: "HASAN ATIK", ItemID: 5, VariantCode: "M", Category: "Head Protection",
				Item: "Safety Helmet (Yellow)", Variant: "M", Quantity: 4,
				Location: &model.Location{Lat: 25.2, Lng: 55.3}, ProofRef: "p1",
			},
			{
				ID: "t2", Type: model.TxOut, Date: "2026-10-19", Time: "2026-10-19T10:00:00Z",
				Employee: "Site 4", Superior: "RANGANATHAN IYAPPAN", ItemID: 2, VariantCode: "STD",
				Category: "Gloves", Item: "Hand Gloves", Brand: "PROSAFE", Variant: "STD", Quantity: 10, ProofRef: "p2",
			},
		},
		Roster: model.Roster{
			Employees: []model.Employee{{Name: "HASAN ATIK", Department: "Maintenance", ShoeSize: "8"}},
			Sites:     []string{"Site 4"},
			Superiors: []string{"RANGANATHAN IYAPPAN"},
		},
	}
}

func TestLoadEmpty(t *testing.T) {
	s := New(db.NewTestDB(t))
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, persist.ErrEmpty)
}

func TestRoundTripKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := New(db.NewTestDB(t))

	st := sampleState()
	require.NoError(t, s.Save(ctx, st))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestIncrementalSave(t *testing.T) {
	ctx := context.Background()
	s := New(db.NewTestDB(t))

	st := sampleState()
	require.NoError(t, s.Save(ctx, st))

	// Partial return, new transaction, balance change, dropped variant.
	st.Transactions[0].ReturnHistory = append(st.Transactions[0].ReturnHistory,
		model.ReturnEntry{ReturnedQuantity: 1, ReturnDate: "2026-10-19", RemainingQuantity: 3})
	st.Transactions = append(st.Transactions, model.Transaction{
		ID: "t3", Type: model.TxIn, Date: "2026-10-19", Time: "2026-10-19T11:00:00Z",
		Employee: "HASAN ATIK", ItemID: 5, VariantCode: "M", Quantity: 1, ProofRef: "p3",
	})
	st.Items[0].Variants = st.Items[0].Variants[1:]
	st.Items[0].Variants[0].Balance = 17
	require.NoError(t, s.Save(ctx, st))
	assert.Equal(t, int64(2), st.Version)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, st, got)

	st.Transactions[0].ReturnHistory = append(st.Transactions[0].ReturnHistory,
		model.ReturnEntry{ReturnedQuantity: 3, ReturnDate: "2026-10-20", RemainingQuantity: 0})
	require.NoError(t, s.Save(ctx, st))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Transactions[0].ReturnHistory, 2)
	assert.Equal(t, 0, got.Transactions[0].ReturnHistory[1].RemainingQuantity)
}

func TestSaveRewritesStoredTransaction(t *testing.T) {
	ctx := context.Background()
	s := New(db.NewTestDB(t))

	st := sampleState()
	st.Transactions[0].ReturnHistory = []model.ReturnEntry{{ReturnedQuantity: 1, ReturnDate: "2026-10-19", RemainingQuantity: 3}}
	require.NoError(t, s.Save(ctx, st))

	st.Transactions[0].Quantity = 9
	st.Transactions[0].Employee = "MIA MD SUJON"
	st.Transactions[0].Location = nil
	st.Transactions[0].ReturnHistory = nil
	st.Transactions[1].ReturnHistory = []model.ReturnEntry{{ReturnedQuantity: 2, ReturnDate: "2026-10-20", RemainingQuantity: 8}}
	require.NoError(t, s.Save(ctx, st))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, st, got)

	// A history that diverges from the stored one replaces it.
	st.Transactions[1].ReturnHistory = []model.ReturnEntry{{ReturnedQuantity: 5, ReturnDate: "2026-10-21", RemainingQuantity: 5}}
	st.Transactions[0], st.Transactions[1] = st.Transactions[1], st.Transactions[0]
	require.NoError(t, s.Save(ctx, st))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, st, got)
	assert.Equal(t, "t2", got.Transactions[0].ID)
}

func TestResetDeletesTransactions(t *testing.T) {
	ctx := context.Background()
	d := db.NewTestDB(t)
	s := New(d)

	st := sampleState()
	st.Transactions[0].ReturnHistory = []model.ReturnEntry{{ReturnedQuantity: 1, ReturnDate: "2026-10-19", RemainingQuantity: 3}}
	require.NoError(t, s.Save(ctx, st))

	st.Transactions = []model.Transaction{}
	require.NoError(t, s.Save(ctx, st))

	var n int
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM return_history`).Scan(&n))
	assert.Equal(t, 0, n)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Transactions)
	assert.Len(t, got.Items, 2)
}

func TestStaleSaveConflicts(t *testing.T) {
	ctx := context.Background()
	s := New(db.NewTestDB(t))
	require.NoError(t, s.Save(ctx, sampleState()))

	stale := sampleState()
	stale.Items[1].Variants[0].Balance = 1
	assert.ErrorIs(t, s.Save(ctx, stale), persist.ErrConflict)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 482, got.Items[1].Variants[0].Balance)
}

func TestIndexedReads(t *testing.T) {
	ctx := context.Background()
	s := New(db.NewTestDB(t))
	st := sampleState()
	st.Transactions[1].ReturnHistory = []model.ReturnEntry{{ReturnedQuantity: 2, ReturnDate: "2026-10-19", RemainingQuantity: 8}}
	require.NoError(t, s.Save(ctx, st))

	byDate, err := s.TransactionsByDate(ctx, "2026-10-19")
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, "t2", byDate[0].ID)
	assert.Equal(t, 8, byDate[0].Remaining())

	byEmployee, err := s.TransactionsByEmployee(ctx, "HASAN ATIK")
	require.NoError(t, err)
	require.Len(t, byEmployee, 1)
	assert.Equal(t, "t1", byEmployee[0].ID)
	assert.Nil(t, byEmployee[0].ReturnHistory)

	gloves, err := s.ItemsByCategory(ctx, "Gloves")
	require.NoError(t, err)
	require.Len(t, gloves, 1)
	assert.Equal(t, "Hand Gloves", gloves[0].Name)
	assert.Len(t, gloves[0].Variants, 1)

	none, err := s.ItemsByCategory(ctx, "Footwear")
	require.NoError(t, err)
	assert.Empty(t, none)
}
