package web

import (
	"net/http"
	"time"

	"github.com/erazemk/ppestock/internal/api"
	"github.com/erazemk/ppestock/internal/labels"
	"github.com/erazemk/ppestock/internal/model"
	webembed "github.com/erazemk/ppestock/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(d api.Deps) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Labels == nil {
		d.Labels = labels.Default()
	}

	s := &Server{
		Tracker:   d.Tracker,
		DB:        d.DB,
		Templates: templates,
		JWTSecret: d.JWTSecret,
		Password:  d.Password,
		Labels:    d.Labels,
		Now:       d.Now,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(d.JWTSecret)
	page := func(h http.HandlerFunc) http.Handler { return cookieAuth(h) }
	manager := func(h http.HandlerFunc) http.Handler { return cookieAuth(requireRole(model.RoleManager, h)) }
	admin := func(h http.HandlerFunc) http.Handler { return cookieAuth(requireRole(model.RoleAdmin, h)) }

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", page(s.Dashboard))

	mux.Handle("GET /issue", page(s.IssuePage))
	mux.Handle("POST /issue", page(s.IssueSubmit))

	mux.Handle("GET /transactions", page(s.TransactionsPage))
	mux.Handle("POST /transactions/{id}/return", page(s.ReturnSubmit))
	mux.Handle("POST /transactions/reset", admin(s.ResetSubmit))
	mux.Handle("GET /proofs/{ref}", page(s.ProofImage))
	mux.Handle("GET /export", manager(s.ExportDownload))

	mux.Handle("GET /employees", page(s.EmployeesPage))
	mux.Handle("POST /employees", manager(s.EmployeeCreateSubmit))
	mux.Handle("POST /employees/delete", manager(s.EmployeeDeleteSubmit))
	mux.Handle("POST /sites", manager(s.SiteCreateSubmit))
	mux.Handle("POST /superiors", manager(s.SuperiorCreateSubmit))

	mux.Handle("GET /items", manager(s.ItemsPage))
	mux.Handle("POST /items", manager(s.ItemCreateSubmit))
	mux.Handle("POST /items/{id}", manager(s.ItemUpdateSubmit))
	mux.Handle("POST /items/{id}/variants", manager(s.VariantCreateSubmit))
	mux.Handle("POST /items/{id}/variants/{code}", manager(s.VariantRenameSubmit))
	mux.Handle("POST /items/{id}/variants/{code}/delete", manager(s.VariantDeleteSubmit))
	mux.Handle("POST /items/{id}/variants/{code}/restock", manager(s.RestockSubmit))

	mux.Handle("GET /settings", admin(s.SettingsPage))
	mux.Handle("POST /settings", admin(s.SettingsSubmit))

	return mux, nil
}
