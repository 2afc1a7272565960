package web

import (
	"net/http"

	"github.com/erazemk/ppestock/internal/ledger"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/txlog"
)

// Dashboard handles GET /: balances, low stock and the latest movements.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	recent := s.Tracker.Transactions(txlog.Query{})
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Items   []model.Item
		Summary ledger.Summary
		Low     []ledger.LowStockEntry
		Recent  []model.Transaction
	}{
		PageData: s.page(r, "Stock"),
		Items:    s.Tracker.Items(),
		Summary:  s.Tracker.Summary(),
		Low:      s.Tracker.LowStock(0),
		Recent:   recent,
	})
}
