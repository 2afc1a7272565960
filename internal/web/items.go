package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/ppestock/internal/model"
)

func (s *Server) renderItems(w http.ResponseWriter, r *http.Request, errMsg, success string) {
	data := &struct {
		PageData
		Items []model.Item
	}{
		PageData: s.page(r, "Items"),
		Items:    s.Tracker.Items(),
	}
	data.Error = errMsg
	data.Success = success
	s.Templates.Render(w, "items.html", data)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) formVariant(r *http.Request) model.Variant {
	v := model.Variant{
		Code:  s.Labels.Code(r.FormValue("code")),
		Label: s.Labels.Label(r.FormValue("label")),
	}
	if v.Label == "" {
		v.Label = v.Code
	}
	v.Balance, _ = strconv.Atoi(r.FormValue("balance"))
	return v
}

// ItemsPage handles GET /items.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	s.renderItems(w, r, "", "")
}

// ItemCreateSubmit handles POST /items. The first variant is optional.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	item := model.Item{
		Category: s.Labels.Name(r.FormValue("category")),
		Name:     s.Labels.Name(r.FormValue("name")),
		Brand:    s.Labels.Name(r.FormValue("brand")),
	}
	if r.FormValue("code") != "" {
		item.Variants = []model.Variant{s.formVariant(r)}
	}

	added, err := s.Tracker.AddItem(r.Context(), item)
	if err != nil {
		slog.Warn("failed to add item", "error", err)
		s.renderItems(w, r, errorMessage(err), "")
		return
	}
	slog.Info("item created", "role", claims.Role, "name", claims.Name, "item", added.Name)
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

// ItemUpdateSubmit handles POST /items/{id}.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := s.Tracker.Item(id)
	if err != nil {
		s.renderItems(w, r, errorMessage(err), "")
		return
	}

	item.Category = s.Labels.Name(r.FormValue("category"))
	item.Name = s.Labels.Name(r.FormValue("name"))
	item.Brand = s.Labels.Name(r.FormValue("brand"))
	if err := s.Tracker.UpdateItem(r.Context(), item); err != nil {
		s.renderItems(w, r, errorMessage(err), "")
		return
	}
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

// VariantCreateSubmit handles POST /items/{id}/variants.
func (s *Server) VariantCreateSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.Tracker.AddVariant(r.Context(), id, s.formVariant(r)); err != nil {
		s.renderItems(w, r, errorMessage(err), "")
		return
	}
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

// VariantRenameSubmit handles POST /items/{id}/variants/{code}.
func (s *Server) VariantRenameSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	label := s.Labels.Label(r.FormValue("label"))
	if err := s.Tracker.RenameVariant(r.Context(), id, r.PathValue("code"), label); err != nil {
		s.renderItems(w, r, errorMessage(err), "")
		return
	}
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

// VariantDeleteSubmit handles POST /items/{id}/variants/{code}/delete.
func (s *Server) VariantDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	code := r.PathValue("code")
	if err := s.Tracker.RemoveVariant(r.Context(), id, code); err != nil {
		slog.Warn("failed to remove variant", "item", id, "variant", code, "error", err)
		s.renderItems(w, r, errorMessage(err), "")
		return
	}
	slog.Info("variant removed", "role", claims.Role, "name", claims.Name, "item", id, "variant", code)
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

// RestockSubmit handles POST /items/{id}/variants/{code}/restock.
func (s *Server) RestockSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	quantity, _ := strconv.Atoi(r.FormValue("quantity"))

	res, err := s.Tracker.Restock(r.Context(), id, r.PathValue("code"), quantity)
	if err != nil {
		s.renderItems(w, r, errorMessage(err), "")
		return
	}
	slog.Info("stock added", "role", claims.Role, "name", claims.Name, "item", id, "variant", res.VariantCode, "quantity", quantity)
	s.renderItems(w, r, "", fmt.Sprintf("Added %d. New balance %d.", quantity, res.Balance))
}
