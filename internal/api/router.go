package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/ppestock/internal/auth"
	"github.com/erazemk/ppestock/internal/labels"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/tracker"
)

// Deps are the collaborators the API is built on.
type Deps struct {
	Tracker      *tracker.Tracker
	DB           *sql.DB // proof images
	JWTSecret    string
	Password     *auth.Password
	Labels       labels.Normalizer
	Now          func() time.Time
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	if d.Labels == nil {
		d.Labels = labels.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{JWTSecret: d.JWTSecret, Password: d.Password}
	stateHandler := &StateHandler{Tracker: d.Tracker}
	itemsHandler := &ItemsHandler{Tracker: d.Tracker, Labels: d.Labels}
	stockHandler := &StockHandler{Tracker: d.Tracker}
	txHandler := &TransactionsHandler{Tracker: d.Tracker}
	proofsHandler := &ProofsHandler{DB: d.DB, Now: d.Now}
	employeesHandler := &EmployeesHandler{Tracker: d.Tracker}
	exportHandler := &ExportHandler{Tracker: d.Tracker, DB: d.DB, Now: d.Now}

	authMW := AuthMiddleware(d.JWTSecret)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))

	// Whole-state sync for remote adapters.
	mux.Handle("GET /api/state", authMW(http.HandlerFunc(stateHandler.Get)))
	mux.Handle("PUT /api/state", authMW(http.HandlerFunc(stateHandler.Put)))

	// Catalog: read (all roles), write (manager+).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(requireManager(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(requireManager(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("POST /api/items/{id}/variants", authMW(requireManager(http.HandlerFunc(itemsHandler.AddVariant))))
	mux.Handle("PUT /api/items/{id}/variants/{code}", authMW(requireManager(http.HandlerFunc(itemsHandler.RenameVariant))))
	mux.Handle("DELETE /api/items/{id}/variants/{code}", authMW(requireManager(http.HandlerFunc(itemsHandler.RemoveVariant))))
	mux.Handle("POST /api/items/{id}/variants/{code}/restock", authMW(requireManager(http.HandlerFunc(itemsHandler.Restock))))

	// Stock reports (all roles).
	mux.Handle("GET /api/stock/low", authMW(http.HandlerFunc(stockHandler.Low)))
	mux.Handle("GET /api/stock/summary", authMW(http.HandlerFunc(stockHandler.Summary)))

	// Transactions: issue/return (all roles), reset (admin).
	mux.Handle("GET /api/transactions", authMW(http.HandlerFunc(txHandler.List)))
	mux.Handle("POST /api/transactions", authMW(http.HandlerFunc(txHandler.Create)))
	mux.Handle("DELETE /api/transactions", authMW(requireAdmin(http.HandlerFunc(txHandler.Reset))))
	mux.Handle("GET /api/transactions/{id}", authMW(http.HandlerFunc(txHandler.Get)))
	mux.Handle("POST /api/transactions/{id}/returns", authMW(http.HandlerFunc(txHandler.Return)))

	// Proofs (all roles).
	mux.Handle("PUT /api/proofs", authMW(http.HandlerFunc(proofsHandler.Upload)))
	mux.Handle("GET /api/proofs/{ref}", authMW(http.HandlerFunc(proofsHandler.Get)))

	// Roster: read (all roles), write (manager+).
	mux.Handle("GET /api/employees", authMW(http.HandlerFunc(employeesHandler.List)))
	mux.Handle("POST /api/employees", authMW(requireManager(http.HandlerFunc(employeesHandler.Create))))
	mux.Handle("DELETE /api/employees/{name}", authMW(requireManager(http.HandlerFunc(employeesHandler.Delete))))
	mux.Handle("GET /api/roster", authMW(http.HandlerFunc(employeesHandler.Roster)))
	mux.Handle("POST /api/sites", authMW(requireManager(http.HandlerFunc(employeesHandler.AddSite))))
	mux.Handle("POST /api/superiors", authMW(requireManager(http.HandlerFunc(employeesHandler.AddSuperior))))

	// Export (manager+).
	mux.Handle("GET /api/export", authMW(requireManager(http.HandlerFunc(exportHandler.Daily))))

	return mux
}
