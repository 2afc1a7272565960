package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/ppestock/internal/auth"
	"github.com/erazemk/ppestock/internal/model"
)

// AuthHandler handles the role-selection login.
type AuthHandler struct {
	JWTSecret string
	Password  *auth.Password
}

type loginRequest struct {
	Role     string `json:"role"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login handles POST /api/auth/login. Everyone shares one password; the
// role only decides which parts of the API the token opens.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !model.ValidRole(req.Role) || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "role and password required")
		return
	}

	if err := h.Password.Check(req.Password); err != nil {
		slog.Warn("login failed", "role", req.Role, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, req.Role, req.Name)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("operator logged in", "role", req.Role, "name", req.Name)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, Role: req.Role})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	jsonResponse(w, http.StatusOK, map[string]string{"role": claims.Role, "name": claims.Name})
}
