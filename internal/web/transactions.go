package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/ppestock/internal/export"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/proofs"
	"github.com/erazemk/ppestock/internal/txlog"
)

type transactionsPage struct {
	PageData
	Query        txlog.Query
	Transactions []model.Transaction
	Today        string
}

func (s *Server) renderTransactions(w http.ResponseWriter, r *http.Request, errMsg string) {
	q := r.URL.Query()
	query := txlog.Query{
		From:     q.Get("from"),
		To:       q.Get("to"),
		Actor:    q.Get("actor"),
		Item:     q.Get("item"),
		OpenOnly: q.Get("open") == "on",
	}
	data := &transactionsPage{
		PageData:     s.page(r, "Transactions"),
		Query:        query,
		Transactions: s.Tracker.Transactions(query),
		Today:        s.Now().Format(time.DateOnly),
	}
	data.Error = errMsg
	s.Templates.Render(w, "transactions.html", data)
}

// TransactionsPage handles GET /transactions.
func (s *Server) TransactionsPage(w http.ResponseWriter, r *http.Request) {
	s.renderTransactions(w, r, "")
}

// ReturnSubmit handles POST /transactions/{id}/return.
func (s *Server) ReturnSubmit(w http.ResponseWriter, r *http.Request) {
	quantity, _ := strconv.Atoi(r.FormValue("quantity"))
	rec, err := s.Tracker.PartialReturn(r.Context(), r.PathValue("id"), quantity)
	if err != nil {
		s.renderTransactions(w, r, errorMessage(err))
		return
	}
	slog.Info("partial return recorded", "transaction", rec.Transaction.ID, "remaining", rec.Entry.RemainingQuantity)
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

// ResetSubmit handles POST /transactions/reset (admin).
func (s *Server) ResetSubmit(w http.ResponseWriter, r *http.Request) {
	if err := s.Tracker.ResetTransactions(r.Context(), r.FormValue("confirm") == "on"); err != nil {
		s.renderTransactions(w, r, "Tick the confirmation box to clear the log.")
		return
	}
	slog.Warn("transaction log cleared from web", "role", GetWebClaims(r.Context()).Role)
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

// ExportDownload handles GET /export?date=.
func (s *Server) ExportDownload(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		date = s.Now().Format(time.DateOnly)
	}

	txs := s.Tracker.Transactions(txlog.Query{From: date, To: date})
	if len(txs) == 0 {
		s.renderTransactions(w, r, "No transactions on "+date+".")
		return
	}
	refs := make([]string, len(txs))
	for i, t := range txs {
		refs[i] = t.ProofRef
	}
	names, err := proofs.Names(r.Context(), s.DB, refs)
	if err != nil {
		slog.Error("failed to resolve proof names", "error", err)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(date)+`"`)
	if err := export.Write(w, txs, date, names); err != nil && !errors.Is(err, export.ErrNoTransactions) {
		slog.Error("failed to write export", "error", err)
	}
}

// ProofImage handles GET /proofs/{ref}.
func (s *Server) ProofImage(w http.ResponseWriter, r *http.Request) {
	p, err := proofs.Get(r.Context(), s.DB, r.PathValue("ref"))
	if err != nil {
		slog.Error("failed to get proof", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", p.MIME)
	w.Header().Set("Content-Disposition", `inline; filename="`+p.FileName+`"`)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(p.Data); err != nil {
		slog.Error("failed to write proof response", "error", err)
	}
}
