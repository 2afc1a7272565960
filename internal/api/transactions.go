package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/tracker"
	"github.com/erazemk/ppestock/internal/txlog"
)

// TransactionsHandler handles issues, returns and the transaction log.
type TransactionsHandler struct {
	Tracker *tracker.Tracker
}

type createTransactionRequest struct {
	Type model.TxType `json:"type"`
	tracker.MovementRequest
}

// List handles GET /api/transactions?from=&to=&actor=&item=&open=true.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jsonResponse(w, http.StatusOK, h.Tracker.Transactions(txlog.Query{
		From:     q.Get("from"),
		To:       q.Get("to"),
		Actor:    q.Get("actor"),
		Item:     q.Get("item"),
		OpenOnly: q.Get("open") == "true",
	}))
}

// Create handles POST /api/transactions. The balance check and the
// decrement run under the tracker's lock, so concurrent clients cannot
// overdraw a variant.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		rec tracker.Receipt
		err error
	)
	switch req.Type {
	case model.TxOut:
		rec, err = h.Tracker.Issue(r.Context(), req.MovementRequest)
	case model.TxIn:
		rec, err = h.Tracker.Return(r.Context(), req.MovementRequest)
	default:
		jsonError(w, http.StatusBadRequest, `type must be "OUT" or "IN"`)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, rec)
}

// Get handles GET /api/transactions/{id}.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Tracker.Transaction(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, tx)
}

// Return handles POST /api/transactions/{id}/returns.
func (h *TransactionsHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.Tracker.PartialReturn(r.Context(), r.PathValue("id"), req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

// Reset handles DELETE /api/transactions?confirm=true.
func (h *TransactionsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := h.Tracker.ResetTransactions(r.Context(), confirmed); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Warn("transactions reset remotely", "by", GetClaims(r.Context()).Name)
	w.WriteHeader(http.StatusNoContent)
}
