package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/ppestock/internal/imaging"
	"github.com/erazemk/ppestock/internal/ledger"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/proofs"
	"github.com/erazemk/ppestock/internal/tracker"
	"github.com/erazemk/ppestock/internal/validate"
)

type issueForm struct {
	PageData
	Items  []model.Item
	Roster model.Roster
}

func (s *Server) renderIssue(w http.ResponseWriter, r *http.Request, errMsg string) {
	data := &issueForm{
		PageData: s.page(r, "Issue / return"),
		Items:    s.Tracker.Items(),
		Roster:   s.Tracker.Roster(),
	}
	data.Error = errMsg
	s.Templates.Render(w, "issue.html", data)
}

// IssuePage handles GET /issue.
func (s *Server) IssuePage(w http.ResponseWriter, r *http.Request) {
	s.renderIssue(w, r, "")
}

// IssueSubmit handles POST /issue. The photo is stored first; its ref
// becomes the transaction's proof.
func (s *Server) IssueSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		s.renderIssue(w, r, "The photo is too large.")
		return
	}

	idText, code, _ := strings.Cut(r.FormValue("variant"), ":")
	itemID, _ := strconv.ParseInt(idText, 10, 64)
	quantity, _ := strconv.Atoi(r.FormValue("quantity"))
	req := tracker.MovementRequest{
		ItemID:      itemID,
		VariantCode: code,
		Quantity:    quantity,
		Employee:    r.FormValue("employee"),
		Site:        r.FormValue("site"),
		Superior:    r.FormValue("superior"),
		Location:    formLocation(r),
	}
	if req.Site != "" {
		req.Employee = ""
	}

	item, err := s.Tracker.Item(itemID)
	if err != nil {
		s.renderIssue(w, r, "Choose an item.")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		s.renderIssue(w, r, "A photo of the handover is required.")
		return
	}
	defer file.Close()

	proof, err := proofs.Capture(r.Context(), s.DB, file, item.Name, code, req.Location, s.Now())
	if err != nil {
		slog.Warn("proof capture failed", "error", err)
		s.renderIssue(w, r, errorMessage(err))
		return
	}
	req.ProofRef = proof.Ref

	var rec tracker.Receipt
	if r.FormValue("type") == string(model.TxIn) {
		rec, err = s.Tracker.Return(r.Context(), req)
	} else {
		rec, err = s.Tracker.Issue(r.Context(), req)
	}
	if err != nil {
		slog.Warn("movement rejected", "error", err, "role", claims.Role)
		s.renderIssue(w, r, errorMessage(err))
		return
	}

	slog.Info("movement recorded", "role", claims.Role, "name", claims.Name, "transaction", rec.Transaction.ID)
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

func formLocation(r *http.Request) *model.Location {
	lat, errLat := strconv.ParseFloat(r.FormValue("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.FormValue("lng"), 64)
	if errLat != nil || errLng != nil {
		return nil
	}
	return &model.Location{Lat: lat, Lng: lng}
}

// errorMessage turns a rejected operation into text for the operator.
func errorMessage(err error) string {
	var (
		short   *ledger.InsufficientStockError
		qty     *ledger.InvalidQuantityError
		invalid *validate.Error
	)
	switch {
	case errors.As(err, &short):
		return fmt.Sprintf("Only %d in stock, %d requested.", short.Current, short.Requested)
	case errors.As(err, &qty) && qty.Remaining >= 0:
		return fmt.Sprintf("Only %d still out on this issue.", qty.Remaining)
	case errors.As(err, &qty) && qty.Max > 0:
		return fmt.Sprintf("At most %d can be issued at once.", qty.Max)
	case errors.As(err, &qty):
		return "Quantity must be a positive number."
	case errors.As(err, &invalid):
		fields := make([]string, len(invalid.Fields))
		for i, f := range invalid.Fields {
			fields[i] = f.Field
		}
		return "Check these fields: " + strings.Join(fields, ", ") + "."
	case errors.Is(err, tracker.ErrUnknownActor):
		return "That employee is not on the roster."
	case errors.Is(err, ledger.ErrInUse):
		return "That variant still holds stock or has units out."
	case errors.Is(err, ledger.ErrDuplicate):
		return "That item or variant already exists."
	case errors.Is(err, ledger.ErrInvalidCatalog):
		return "Items need a name and variants need a code."
	case errors.Is(err, ledger.ErrNotFound):
		return "Item or transaction not found."
	case errors.Is(err, imaging.ErrUnsupported):
		return "The photo must be a JPEG or PNG."
	case errors.Is(err, imaging.ErrTooLarge):
		return "The photo is too large."
	default:
		return "The operation failed. Try again."
	}
}
