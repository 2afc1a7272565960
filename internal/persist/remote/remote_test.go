package remote

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/erazemk/ppestock/internal/api"
	"github.com/erazemk/ppestock/internal/auth"
	"github.com/erazemk/ppestock/internal/db"
	"github.com/erazemk/ppestock/internal/export"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/persist"
	"github.com/erazemk/ppestock/internal/persist/kvstore"
	"github.com/erazemk/ppestock/internal/proofs"
	"github.com/erazemk/ppestock/internal/seed"
	"github.com/erazemk/ppestock/internal/tracker"
	"github.com/erazemk/ppestock/internal/txlog"
)

const password = "remote-password"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow() time.Time { return time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC) }

// newServer runs the API over a kvstore-backed tracker and returns a
// logged-in client for it.
func newServer(t *testing.T, role string) (*Client, *tracker.Tracker) {
	t.Helper()
	c, server, _ := newServerDB(t, role)
	return c, server
}

func newServerDB(t *testing.T, role string) (*Client, *tracker.Tracker, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	server, err := tracker.Open(context.Background(), kvstore.New(database), tracker.Options{
		Seed:   seed.State(),
		Logger: quietLogger(),
		Now:    fixedNow,
	})
	require.NoError(t, err)

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	ts := httptest.NewServer(api.NewRouter(api.Deps{
		Tracker:      server,
		DB:           database,
		JWTSecret:    "remote-secret",
		Password:     auth.NewPassword(hash),
	}))
	t.Cleanup(ts.Close)

	c := New(ts.URL, 5*time.Second)
	require.NoError(t, c.Login(context.Background(), role, password, "tester"))
	t.Cleanup(func() { c.Close() })
	return c, server, database
}

func TestExportResolvesProofNames(t *testing.T) {
	ctx := context.Background()
	c, _, database := newServerDB(t, model.RoleManager)

	proof := &model.Proof{FileName: "Safety Shoe_8_1792400400000.jpg", MIME: "image/jpeg", Data: []byte{0xff, 0xd8}, Timestamp: fixedNow()}
	require.NoError(t, proofs.Save(ctx, database, proof))
	_, err := c.CreateTransaction(ctx, model.TxOut, tracker.MovementRequest{
		ItemID: 1, VariantCode: "8", Quantity: 1, Employee: "HASAN ATIK", ProofRef: proof.Ref,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Export(ctx, "2026-10-19", &buf))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, proof.FileName, rows[1][len(export.Header)-1])

	err = c.Export(ctx, "2026-01-01", io.Discard)
	assert.Equal(t, "no_transactions", KindOf(err))
}

func TestLoadSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, server := newServer(t, model.RoleUser)

	st, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Version)
	assert.Len(t, st.Items, 10)

	st.Items[1].Variants[0].Balance = 400
	require.NoError(t, c.Save(ctx, st))
	assert.Equal(t, int64(2), st.Version)

	bal, err := server.Balance(2, "STD")
	require.NoError(t, err)
	assert.Equal(t, 400, bal)
}

func TestStaleSaveConflicts(t *testing.T) {
	ctx := context.Background()
	c, _ := newServer(t, model.RoleUser)

	first, err := c.Load(ctx)
	require.NoError(t, err)
	second, err := c.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Save(ctx, first))
	err = c.Save(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, persist.ErrConflict)
	assert.ErrorIs(t, err, persist.ErrPersistence)
	assert.Equal(t, "conflict", KindOf(err))
	assert.False(t, Retryable(err))
}

func TestTrackerOverRemote(t *testing.T) {
	ctx := context.Background()
	c, server := newServer(t, model.RoleUser)

	local, err := tracker.Open(ctx, c, tracker.Options{Logger: quietLogger(), Now: fixedNow})
	require.NoError(t, err)

	_, err = local.Issue(ctx, tracker.MovementRequest{
		ItemID: 6, VariantCode: "STD", Quantity: 7, Employee: "HASAN ATIK", ProofRef: "p-1",
	})
	require.NoError(t, err)

	bal, err := server.Balance(6, "STD")
	require.NoError(t, err)
	assert.Equal(t, 40, bal)
	assert.Len(t, server.Transactions(txlog.Query{}), 1)
}

func TestResources(t *testing.T) {
	ctx := context.Background()
	c, _ := newServer(t, model.RoleAdmin)

	rec, err := c.CreateTransaction(ctx, model.TxOut, tracker.MovementRequest{
		ItemID: 5, VariantCode: "M", Quantity: 2, Employee: "HASAN ATIK", ProofRef: "p-2",
	})
	require.NoError(t, err)
	assert.Equal(t, 18, rec.Result.Balance)

	_, err = c.CreateTransaction(ctx, model.TxOut, tracker.MovementRequest{
		ItemID: 5, VariantCode: "S", Quantity: 9, Employee: "HASAN ATIK", ProofRef: "p-3",
	})
	var netErr *persist.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusUnprocessableEntity, netErr.StatusCode)
	assert.Equal(t, "insufficient_stock", KindOf(err))

	ret, err := c.ReturnPartial(ctx, rec.Transaction.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, ret.Entry.RemainingQuantity)

	txs, err := c.Transactions(ctx, txlog.Query{Actor: "hasan", OpenOnly: true})
	require.NoError(t, err)
	require.Len(t, txs, 1)

	require.NoError(t, c.AddEmployee(ctx, model.Employee{Name: "REMOTE HIRE"}))
	employees, err := c.Employees(ctx)
	require.NoError(t, err)
	assert.Equal(t, "REMOTE HIRE", employees[len(employees)-1].Name)
	require.NoError(t, c.DeleteEmployee(ctx, "REMOTE HIRE"))

	require.NoError(t, c.DeleteTransactions(ctx))
	txs, err = c.Transactions(ctx, txlog.Query{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestUnreachableServer(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := New(url, time.Second).Load(context.Background())
	var netErr *persist.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 0, netErr.StatusCode)
	assert.ErrorIs(t, err, persist.ErrPersistence)
	assert.True(t, Retryable(err))
}

func TestRetryPolicy(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"error":"busy","kind":"persistence"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"version":3,"items":[],"transactions":[],"roster":{"employees":[],"sites":[],"superiors":[]}}`))
	}))
	defer ts.Close()

	c := New(ts.URL, time.Second)
	policy := RetryPolicy{Attempts: 3, Base: time.Millisecond}

	var st *persist.State
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		var err error
		st, err = c.Load(ctx)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Version)
	assert.Equal(t, int32(3), calls.Load())

	calls.Store(0)
	err = RetryPolicy{Attempts: 2, Base: time.Millisecond}.Do(context.Background(), func(ctx context.Context) error {
		_, err := c.Load(ctx)
		return err
	})
	assert.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRejectedRequestIsNotRetried(t *testing.T) {
	var calls int
	err := DefaultRetry.Do(context.Background(), func(context.Context) error {
		calls++
		return &persist.NetworkError{StatusCode: http.StatusBadRequest, Message: "bad"}
	})
	var netErr *persist.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusBadRequest, netErr.StatusCode)
	assert.Equal(t, 1, calls)
	assert.False(t, errors.Is(err, persist.ErrConflict))
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	err := RetryPolicy{Attempts: 5, Base: time.Hour}.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return &persist.NetworkError{StatusCode: http.StatusServiceUnavailable, Message: "busy"}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
