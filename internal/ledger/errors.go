package ledger

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Typed errors below match them with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrDuplicate         = errors.New("already exists")
	ErrInvalidCatalog    = errors.New("invalid catalog")
	ErrInUse             = errors.New("in use")
)

// NotFoundError reports a missing item or variant.
type NotFoundError struct {
	ItemID      int64
	VariantCode string
}

func (e *NotFoundError) Error() string {
	if e.VariantCode == "" {
		return fmt.Sprintf("item %d not found", e.ItemID)
	}
	return fmt.Sprintf("variant %q of item %d not found", e.VariantCode, e.ItemID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError reports an issue larger than the current balance.
type InsufficientStockError struct {
	ItemID      int64
	VariantCode string
	Current     int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: have %d, need %d", e.Current, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidQuantityError reports a non-positive quantity, a return larger
// than what remains issued, or an issue above the per-issue limit.
// Remaining is -1 and Max is 0 when not applicable.
type InvalidQuantityError struct {
	Field     string
	Quantity  int
	Remaining int
	Max       int
}

func (e *InvalidQuantityError) Error() string {
	if e.Remaining >= 0 {
		return fmt.Sprintf("%s %d exceeds remaining issued quantity %d", e.Field, e.Quantity, e.Remaining)
	}
	if e.Max > 0 {
		return fmt.Sprintf("%s %d exceeds the per-issue limit of %d", e.Field, e.Quantity, e.Max)
	}
	return fmt.Sprintf("%s must be a positive integer, got %d", e.Field, e.Quantity)
}

func (e *InvalidQuantityError) Is(target error) bool { return target == ErrInvalidQuantity }

// checkQuantity rejects non-positive quantities.
func checkQuantity(qty int) error {
	if qty <= 0 {
		return &InvalidQuantityError{Field: "quantity", Quantity: qty, Remaining: -1}
	}
	return nil
}
