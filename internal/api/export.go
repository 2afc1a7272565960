package api

import (
	"bytes"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/ppestock/internal/export"
	"github.com/erazemk/ppestock/internal/proofs"
	"github.com/erazemk/ppestock/internal/tracker"
	"github.com/erazemk/ppestock/internal/txlog"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler produces the daily xlsx export.
type ExportHandler struct {
	Tracker *tracker.Tracker
	DB      *sql.DB
	Now     func() time.Time
}

// Daily handles GET /api/export?date=YYYY-MM-DD; the date defaults to today.
func (h *ExportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.Now().Format(time.DateOnly)
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		jsonError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	txs := h.Tracker.Transactions(txlog.Query{From: date, To: date})
	refs := make([]string, 0, len(txs))
	for _, t := range txs {
		refs = append(refs, t.ProofRef)
	}
	names, err := proofs.Names(r.Context(), h.DB, refs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, txs, date, names); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(date)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}
