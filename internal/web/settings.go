package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/ppestock/internal/auth"
	"github.com/erazemk/ppestock/internal/db"
	"github.com/erazemk/ppestock/internal/model"
)

func (s *Server) renderSettings(w http.ResponseWriter, r *http.Request, errMsg, success string) {
	data := s.page(r, "Settings")
	data.Error = errMsg
	data.Success = success
	s.Templates.Render(w, "settings.html", &data)
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.renderSettings(w, r, "", "")
}

// SettingsSubmit handles POST /settings and changes the shared password.
// The new hash is stored and takes effect for the next login without a
// restart.
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	current := r.FormValue("current_password")
	next := r.FormValue("new_password")
	if current == "" || next == "" {
		s.renderSettings(w, r, "Enter the current and the new password.", "")
		return
	}
	if next != r.FormValue("confirm_password") {
		s.renderSettings(w, r, "The new passwords do not match.", "")
		return
	}
	if err := s.Password.Check(current); err != nil {
		s.renderSettings(w, r, "The current password is wrong.", "")
		return
	}

	if err := model.ValidatePassword(next); err != nil {
		s.renderSettings(w, r, "The new "+err.Error()+".", "")
		return
	}

	hash, err := auth.HashPassword(next)
	if err == nil {
		err = db.SetPasswordHash(r.Context(), s.DB, hash)
	}
	if err != nil {
		slog.Error("failed to store password", "error", err)
		s.renderSettings(w, r, "The password could not be saved.", "")
		return
	}
	s.Password.Set(hash)

	slog.Info("shared password changed", "role", claims.Role, "name", claims.Name)
	s.renderSettings(w, r, "", "Password changed.")
}
