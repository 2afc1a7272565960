package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/ppestock/internal/labels"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/tracker"
)

// ItemsHandler handles catalog endpoints. Free text is normalized before it
// reaches the tracker.
type ItemsHandler struct {
	Tracker *tracker.Tracker
	Labels  labels.Normalizer
}

type updateItemRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	ImageRef string `json:"imageRef"`
}

type variantLabelRequest struct {
	Label string `json:"label"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *ItemsHandler) normalizeVariant(v model.Variant) model.Variant {
	v.Code = h.Labels.Code(v.Code)
	v.Label = h.Labels.Label(v.Label)
	if v.Label == "" {
		v.Label = v.Code
	}
	return v
}

func pathItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return 0, false
	}
	return id, true
}

// List handles GET /api/items, optionally filtered by ?category=.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.Tracker.Items()
	if category := r.URL.Query().Get("category"); category != "" {
		filtered := []model.Item{}
		for _, it := range items {
			if it.Category == category {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item model.Item
	if err := decodeJSON(r, &item); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item.Category = h.Labels.Name(item.Category)
	item.Name = h.Labels.Name(item.Name)
	item.Brand = h.Labels.Name(item.Brand)
	for i, v := range item.Variants {
		item.Variants[i] = h.normalizeVariant(v)
	}

	added, err := h.Tracker.AddItem(r.Context(), item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, added)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathItemID(w, r)
	if !ok {
		return
	}
	item, err := h.Tracker.Item(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathItemID(w, r)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item := model.Item{
		ID:       id,
		Category: h.Labels.Name(req.Category),
		Name:     h.Labels.Name(req.Name),
		Brand:    h.Labels.Name(req.Brand),
		ImageRef: req.ImageRef,
	}
	if err := h.Tracker.UpdateItem(r.Context(), item); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.Tracker.Item(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// AddVariant handles POST /api/items/{id}/variants.
func (h *ItemsHandler) AddVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathItemID(w, r)
	if !ok {
		return
	}

	var v model.Variant
	if err := decodeJSON(r, &v); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v = h.normalizeVariant(v)

	if err := h.Tracker.AddVariant(r.Context(), id, v); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, v)
}

// RenameVariant handles PUT /api/items/{id}/variants/{code}.
func (h *ItemsHandler) RenameVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathItemID(w, r)
	if !ok {
		return
	}

	var req variantLabelRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Tracker.RenameVariant(r.Context(), id, r.PathValue("code"), h.Labels.Label(req.Label)); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "variant renamed"})
}

// RemoveVariant handles DELETE /api/items/{id}/variants/{code}.
func (h *ItemsHandler) RemoveVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathItemID(w, r)
	if !ok {
		return
	}
	if err := h.Tracker.RemoveVariant(r.Context(), id, r.PathValue("code")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Restock handles POST /api/items/{id}/variants/{code}/restock.
func (h *ItemsHandler) Restock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathItemID(w, r)
	if !ok {
		return
	}

	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Tracker.Restock(r.Context(), id, r.PathValue("code"), req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}
