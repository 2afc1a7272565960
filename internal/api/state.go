package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/ppestock/internal/persist"
	"github.com/erazemk/ppestock/internal/tracker"
)

// StateHandler serves the whole state to remote adapters.
type StateHandler struct {
	Tracker *tracker.Tracker
}

func setVersion(w http.ResponseWriter, version int64) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(version, 10)))
}

// parseVersion reads an If-Match header; both quoted and bare values work.
func parseVersion(header string) (int64, bool) {
	v, err := strconv.ParseInt(strings.Trim(strings.TrimSpace(header), `"`), 10, 64)
	return v, err == nil && v >= 0
}

// Get handles GET /api/state.
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	st := h.Tracker.State()
	setVersion(w, st.Version)
	jsonResponse(w, http.StatusOK, st)
}

// Put handles PUT /api/state. The If-Match header must carry the version
// the client loaded.
func (h *StateHandler) Put(w http.ResponseWriter, r *http.Request) {
	version, ok := parseVersion(r.Header.Get("If-Match"))
	if !ok {
		jsonError(w, http.StatusPreconditionRequired, "If-Match header with state version required")
		return
	}

	var st persist.State
	if err := decodeJSON(r, &st); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	st.Version = version

	if err := h.Tracker.ReplaceState(r.Context(), &st); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("state replaced remotely", "version", st.Version, "by", GetClaims(r.Context()).Role)
	setVersion(w, st.Version)
	jsonResponse(w, http.StatusOK, map[string]int64{"version": st.Version})
}
