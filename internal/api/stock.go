package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/ppestock/internal/tracker"
)

// StockHandler serves balance reports.
type StockHandler struct {
	Tracker *tracker.Tracker
}

// Low handles GET /api/stock/low?threshold=N.
func (h *StockHandler) Low(w http.ResponseWriter, r *http.Request) {
	threshold := 0
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid threshold")
			return
		}
		threshold = n
	}
	jsonResponse(w, http.StatusOK, h.Tracker.LowStock(threshold))
}

// Summary handles GET /api/stock/summary.
func (h *StockHandler) Summary(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Tracker.Summary())
}
