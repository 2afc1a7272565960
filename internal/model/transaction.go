package model

import "strings"

// TxType is the direction of a stock movement.
type TxType string

const (
	TxOut TxType = "OUT" // issue
	TxIn  TxType = "IN"  // return
)

// Valid reports whether t is a known transaction type.
func (t TxType) Valid() bool {
	return t == TxOut || t == TxIn
}

// Location is a geolocation fix captured with a proof photo.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ReturnEntry records one partial return against an issued transaction.
type ReturnEntry struct {
	ReturnedQuantity  int    `json:"returnedQuantity"`
	ReturnDate        string `json:"returnDate"`
	RemainingQuantity int    `json:"remainingQuantity"`
}

// Transaction is an immutable record of one issue or return. ItemID and
// VariantCode are the stable references; Item, Variant, Category and Brand
// are display copies taken at creation time.
type Transaction struct {
	ID          string    `json:"id"`
	Type        TxType    `json:"type"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Employee    string    `json:"employeeOrSite"` // employee name, or site when Superior is set
	Superior    string    `json:"superior,omitempty"`
	ItemID      int64     `json:"itemId"`
	VariantCode string    `json:"variantCode"`
	Category    string    `json:"category"`
	Item        string    `json:"item"`
	Brand       string    `json:"brand"`
	Variant     string    `json:"variant"`
	Quantity    int       `json:"quantity"`
	Location    *Location `json:"location,omitempty"`
	ProofRef    string    `json:"proofRef"`

	ReturnHistory []ReturnEntry `json:"returnHistory,omitempty"`
}

// Returned is the total quantity already returned against the transaction.
func (t *Transaction) Returned() int {
	n := 0
	for _, r := range t.ReturnHistory {
		n += r.ReturnedQuantity
	}
	return n
}

// Remaining is the issued quantity not yet returned.
func (t *Transaction) Remaining() int {
	return t.Quantity - t.Returned()
}

// FullyReturned reports whether an issue has been returned completely.
func (t *Transaction) FullyReturned() bool {
	return len(t.ReturnHistory) > 0 && t.Remaining() <= 0
}

// Actor is the acting party: the employee, or "site / superior" for site issues.
func (t *Transaction) Actor() string {
	if t.Superior == "" {
		return t.Employee
	}
	return strings.Join([]string{t.Employee, t.Superior}, " / ")
}

// Clone returns a deep copy of the transaction.
func (t Transaction) Clone() Transaction {
	out := t
	if t.Location != nil {
		loc := *t.Location
		out.Location = &loc
	}
	out.ReturnHistory = append([]ReturnEntry(nil), t.ReturnHistory...)
	return out
}

// CloneTransactions deep-copies a transaction slice.
func CloneTransactions(txs []Transaction) []Transaction {
	if txs == nil {
		return nil
	}
	out := make([]Transaction, len(txs))
	for i, t := range txs {
		out[i] = t.Clone()
	}
	return out
}
