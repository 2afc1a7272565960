package web

import (
	"net/http"

	"github.com/erazemk/ppestock/internal/model"
)

func (s *Server) renderEmployees(w http.ResponseWriter, r *http.Request, errMsg string) {
	data := &struct {
		PageData
		Roster model.Roster
	}{
		PageData: s.page(r, "Roster"),
		Roster:   s.Tracker.Roster(),
	}
	data.Error = errMsg
	s.Templates.Render(w, "employees.html", data)
}

// EmployeesPage handles GET /employees.
func (s *Server) EmployeesPage(w http.ResponseWriter, r *http.Request) {
	s.renderEmployees(w, r, "")
}

// EmployeeCreateSubmit handles POST /employees.
func (s *Server) EmployeeCreateSubmit(w http.ResponseWriter, r *http.Request) {
	e := model.Employee{
		Name:       r.FormValue("name"),
		Department: r.FormValue("department"),
		ShoeSize:   r.FormValue("shoe_size"),
		ShirtSize:  r.FormValue("shirt_size"),
		PantSize:   r.FormValue("pant_size"),
		HelmetSize: r.FormValue("helmet_size"),
	}
	if err := s.Tracker.AddEmployee(r.Context(), e); err != nil {
		s.renderEmployees(w, r, "Could not add employee: "+err.Error())
		return
	}
	http.Redirect(w, r, "/employees", http.StatusSeeOther)
}

// EmployeeDeleteSubmit handles POST /employees/delete.
func (s *Server) EmployeeDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	if err := s.Tracker.RemoveEmployee(r.Context(), r.FormValue("name")); err != nil {
		s.renderEmployees(w, r, "Could not remove employee: "+err.Error())
		return
	}
	http.Redirect(w, r, "/employees", http.StatusSeeOther)
}

// SiteCreateSubmit handles POST /sites.
func (s *Server) SiteCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if err := s.Tracker.AddSite(r.Context(), r.FormValue("name")); err != nil {
		s.renderEmployees(w, r, "Could not add site: "+err.Error())
		return
	}
	http.Redirect(w, r, "/employees", http.StatusSeeOther)
}

// SuperiorCreateSubmit handles POST /superiors.
func (s *Server) SuperiorCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if err := s.Tracker.AddSuperior(r.Context(), r.FormValue("name")); err != nil {
		s.renderEmployees(w, r, "Could not add superior: "+err.Error())
		return
	}
	http.Redirect(w, r, "/employees", http.StatusSeeOther)
}
