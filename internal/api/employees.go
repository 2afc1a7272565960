package api

import (
	"context"
	"net/http"

	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/tracker"
)

// EmployeesHandler handles the roster of people and sites items are issued to.
type EmployeesHandler struct {
	Tracker *tracker.Tracker
}

type nameRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/employees.
func (h *EmployeesHandler) List(w http.ResponseWriter, r *http.Request) {
	employees := h.Tracker.Employees()
	if employees == nil {
		employees = []model.Employee{}
	}
	jsonResponse(w, http.StatusOK, employees)
}

// Create handles POST /api/employees.
func (h *EmployeesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var e model.Employee
	if err := decodeJSON(r, &e); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Tracker.AddEmployee(r.Context(), e); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, e)
}

// Delete handles DELETE /api/employees/{name}.
func (h *EmployeesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.RemoveEmployee(r.Context(), r.PathValue("name")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Roster handles GET /api/roster.
func (h *EmployeesHandler) Roster(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Tracker.Roster())
}

// AddSite handles POST /api/sites.
func (h *EmployeesHandler) AddSite(w http.ResponseWriter, r *http.Request) {
	h.addName(w, r, h.Tracker.AddSite)
}

// AddSuperior handles POST /api/superiors.
func (h *EmployeesHandler) AddSuperior(w http.ResponseWriter, r *http.Request) {
	h.addName(w, r, h.Tracker.AddSuperior)
}

func (h *EmployeesHandler) addName(w http.ResponseWriter, r *http.Request, add func(context.Context, string) error) {
	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := add(r.Context(), req.Name); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, req)
}
