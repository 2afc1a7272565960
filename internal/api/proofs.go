package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/ppestock/internal/imaging"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/proofs"
)

// ProofsHandler stores and serves proof photos.
type ProofsHandler struct {
	DB  *sql.DB
	Now func() time.Time
}

type proofResponse struct {
	Ref       string          `json:"ref"`
	FileName  string          `json:"fileName"`
	Timestamp time.Time       `json:"timestamp"`
	Location  *model.Location `json:"location,omitempty"`
}

// Upload handles PUT /api/proofs as a multipart form with an "image" file
// and "item", "variant", "lat" and "lng" fields.
func (h *ProofsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	item, variant := r.FormValue("item"), r.FormValue("variant")
	if item == "" || variant == "" {
		jsonError(w, http.StatusBadRequest, "item and variant required")
		return
	}

	var loc *model.Location
	if lat, lng := r.FormValue("lat"), r.FormValue("lng"); lat != "" && lng != "" {
		la, errLat := strconv.ParseFloat(lat, 64)
		ln, errLng := strconv.ParseFloat(lng, 64)
		if errLat != nil || errLng != nil || la < -90 || la > 90 || ln < -180 || ln > 180 {
			jsonError(w, http.StatusBadRequest, "invalid location")
			return
		}
		loc = &model.Location{Lat: la, Lng: ln}
	}

	p, err := proofs.Capture(r.Context(), h.DB, file, item, variant, loc, h.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("proof captured", "ref", p.Ref, "file", p.FileName, "located", loc != nil)
	jsonResponse(w, http.StatusCreated, proofResponse{
		Ref: p.Ref, FileName: p.FileName, Timestamp: p.Timestamp, Location: p.Location,
	})
}

// Get handles GET /api/proofs/{ref} and returns the image itself.
func (h *ProofsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := proofs.Get(r.Context(), h.DB, r.PathValue("ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		jsonError(w, http.StatusNotFound, "proof not found")
		return
	}

	w.Header().Set("Content-Type", p.MIME)
	w.Header().Set("Content-Disposition", `inline; filename="`+p.FileName+`"`)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Write(p.Data)
}
