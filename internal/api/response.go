package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/ppestock/internal/export"
	"github.com/erazemk/ppestock/internal/imaging"
	"github.com/erazemk/ppestock/internal/ledger"
	"github.com/erazemk/ppestock/internal/persist"
	"github.com/erazemk/ppestock/internal/tracker"
	"github.com/erazemk/ppestock/internal/txlog"
	"github.com/erazemk/ppestock/internal/validate"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]any{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// writeError maps a domain error to a status code and a body carrying the
// error kind and its details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := map[string]any{"error": err.Error()}
	status := http.StatusInternalServerError

	var (
		insufficient *ledger.InsufficientStockError
		invalidQty   *ledger.InvalidQuantityError
		invalidReq   *validate.Error
	)
	switch {
	case errors.As(err, &invalidReq):
		status = http.StatusBadRequest
		body["kind"] = "validation"
		body["fields"] = invalidReq.Fields
	case errors.As(err, &insufficient):
		status = http.StatusUnprocessableEntity
		body["kind"] = "insufficient_stock"
		body["current"] = insufficient.Current
		body["requested"] = insufficient.Requested
	case errors.As(err, &invalidQty):
		status = http.StatusBadRequest
		body["kind"] = "invalid_quantity"
		body["field"] = invalidQty.Field
		if invalidQty.Remaining >= 0 {
			body["remaining"] = invalidQty.Remaining
		}
		if invalidQty.Max > 0 {
			body["max"] = invalidQty.Max
		}
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, txlog.ErrNotFound):
		status = http.StatusNotFound
		body["kind"] = "not_found"
	case errors.Is(err, export.ErrNoTransactions):
		status = http.StatusNotFound
		body["kind"] = "no_transactions"
	case errors.Is(err, persist.ErrConflict):
		status = http.StatusConflict
		body["kind"] = "conflict"
	case errors.Is(err, ledger.ErrDuplicate), errors.Is(err, txlog.ErrDuplicateID):
		status = http.StatusConflict
		body["kind"] = "duplicate"
	case errors.Is(err, ledger.ErrInUse):
		status = http.StatusConflict
		body["kind"] = "in_use"
	case errors.Is(err, ledger.ErrInvalidCatalog), errors.Is(err, txlog.ErrNotConfirmed),
		errors.Is(err, txlog.ErrNotAnIssue), errors.Is(err, txlog.ErrInvalidType),
		errors.Is(err, ledger.ErrInvalidQuantity), errors.Is(err, tracker.ErrUnknownActor):
		status = http.StatusBadRequest
		body["kind"] = "invalid_request"
	case errors.Is(err, imaging.ErrUnsupported), errors.Is(err, imaging.ErrTooLarge):
		status = http.StatusBadRequest
		body["kind"] = "invalid_image"
	case errors.Is(err, persist.ErrPersistence):
		body["kind"] = "persistence"
	default:
		body["kind"] = "internal"
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body["error"] = "internal error"
	}
	jsonResponse(w, status, body)
}
