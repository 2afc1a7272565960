// Package ledger holds the PPE catalog and applies issue and return
// operations to variant balances.
//
// A Ledger is not safe for concurrent use. Callers that share one across
// goroutines serialize access themselves (see package tracker).
package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erazemk/ppestock/internal/model"
)

// DefaultLowStockThreshold is the balance below which a variant counts as low.
const DefaultLowStockThreshold = 10

// Ledger owns the item catalog and its balances.
type Ledger struct {
	items []model.Item
	index map[int64]int
}

// Result is the outcome of a successful balance change.
type Result struct {
	ItemID      int64  `json:"itemId"`
	VariantCode string `json:"variantCode"`
	Balance     int    `json:"balance"`
	Message     string `json:"message"`
}

// New builds a ledger from a catalog after validating it.
func New(items []model.Item) (*Ledger, error) {
	l := &Ledger{index: make(map[int64]int, len(items))}
	for _, it := range items {
		if _, err := l.AddItem(it); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Ledger) lookup(itemID int64, code string) (*model.Item, *model.Variant, error) {
	i, ok := l.index[itemID]
	if !ok {
		return nil, nil, &NotFoundError{ItemID: itemID}
	}
	item := &l.items[i]
	v, ok := item.Variant(code)
	if !ok {
		return nil, nil, &NotFoundError{ItemID: itemID, VariantCode: code}
	}
	return item, v, nil
}

// Issue removes quantity units from a variant. The balance check and the
// decrement happen together; a rejected issue leaves the balance unchanged.
func (l *Ledger) Issue(itemID int64, code string, quantity int) (Result, error) {
	if err := checkQuantity(quantity); err != nil {
		return Result{}, err
	}
	item, v, err := l.lookup(itemID, code)
	if err != nil {
		return Result{}, err
	}
	if v.Balance < quantity {
		return Result{}, &InsufficientStockError{
			ItemID:      itemID,
			VariantCode: code,
			Current:     v.Balance,
			Requested:   quantity,
		}
	}

	v.Balance -= quantity
	return Result{
		ItemID:      itemID,
		VariantCode: code,
		Balance:     v.Balance,
		Message:     fmt.Sprintf("Stock reduced: %s (%s) - %d units", item.Name, v.Label, quantity),
	}, nil
}

// Return adds quantity units back to a variant. There is no upper bound.
func (l *Ledger) Return(itemID int64, code string, quantity int) (Result, error) {
	if err := checkQuantity(quantity); err != nil {
		return Result{}, err
	}
	item, v, err := l.lookup(itemID, code)
	if err != nil {
		return Result{}, err
	}

	v.Balance += quantity
	return Result{
		ItemID:      itemID,
		VariantCode: code,
		Balance:     v.Balance,
		Message:     fmt.Sprintf("Stock increased: %s (%s) + %d units", item.Name, v.Label, quantity),
	}, nil
}

// Balance returns the current balance of a variant.
func (l *Ledger) Balance(itemID int64, code string) (int, error) {
	_, v, err := l.lookup(itemID, code)
	if err != nil {
		return 0, err
	}
	return v.Balance, nil
}

// Item returns a copy of one item.
func (l *Ledger) Item(itemID int64) (model.Item, error) {
	i, ok := l.index[itemID]
	if !ok {
		return model.Item{}, &NotFoundError{ItemID: itemID}
	}
	return l.items[i].Clone(), nil
}

// Items returns a copy of the catalog in insertion order.
func (l *Ledger) Items() []model.Item {
	return model.CloneItems(l.items)
}

// Categories returns the distinct categories in catalog order.
func (l *Ledger) Categories() []string {
	var out []string
	for _, it := range l.items {
		if !slices.Contains(out, it.Category) {
			out = append(out, it.Category)
		}
	}
	return out
}

// AddItem adds a new item. A zero ID is replaced with the next free one.
// Re-submitting an existing ID fails rather than overwriting its balances.
func (l *Ledger) AddItem(item model.Item) (model.Item, error) {
	if strings.TrimSpace(item.Name) == "" {
		return model.Item{}, fmt.Errorf("%w: item name required", ErrInvalidCatalog)
	}
	if item.ID == 0 {
		item.ID = l.nextID()
	}
	if _, exists := l.index[item.ID]; exists {
		return model.Item{}, fmt.Errorf("item %d: %w", item.ID, ErrDuplicate)
	}

	seen := make(map[string]bool, len(item.Variants))
	for _, v := range item.Variants {
		if err := checkVariant(v); err != nil {
			return model.Item{}, fmt.Errorf("item %d: %w", item.ID, err)
		}
		if seen[v.Code] {
			return model.Item{}, fmt.Errorf("item %d variant %q: %w", item.ID, v.Code, ErrDuplicate)
		}
		seen[v.Code] = true
	}

	item = item.Clone()
	l.index[item.ID] = len(l.items)
	l.items = append(l.items, item)
	return item.Clone(), nil
}

// AddVariant adds a variant to an existing item.
func (l *Ledger) AddVariant(itemID int64, v model.Variant) error {
	i, ok := l.index[itemID]
	if !ok {
		return &NotFoundError{ItemID: itemID}
	}
	if err := checkVariant(v); err != nil {
		return err
	}
	item := &l.items[i]
	if _, exists := item.Variant(v.Code); exists {
		return fmt.Errorf("item %d variant %q: %w", itemID, v.Code, ErrDuplicate)
	}
	item.Variants = append(item.Variants, v)
	return nil
}

// RemoveVariant drops a variant that no longer holds stock.
func (l *Ledger) RemoveVariant(itemID int64, code string) error {
	item, v, err := l.lookup(itemID, code)
	if err != nil {
		return err
	}
	if v.Balance > 0 {
		return fmt.Errorf("variant %q still holds %d units: %w", code, v.Balance, ErrInUse)
	}
	item.Variants = slices.DeleteFunc(item.Variants, func(x model.Variant) bool { return x.Code == code })
	return nil
}

// RenameItem changes an item's display name. Transactions keep referring to
// the item by ID, so history is not orphaned.
func (l *Ledger) RenameItem(itemID int64, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: item name required", ErrInvalidCatalog)
	}
	i, ok := l.index[itemID]
	if !ok {
		return &NotFoundError{ItemID: itemID}
	}
	l.items[i].Name = name
	return nil
}

// RenameVariant changes a variant's display label.
func (l *Ledger) RenameVariant(itemID int64, code, label string) error {
	_, v, err := l.lookup(itemID, code)
	if err != nil {
		return err
	}
	v.Label = label
	return nil
}

// UpdateItem edits descriptive fields. Variants and balances are untouched.
func (l *Ledger) UpdateItem(itemID int64, category, name, brand, imageRef string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: item name required", ErrInvalidCatalog)
	}
	i, ok := l.index[itemID]
	if !ok {
		return &NotFoundError{ItemID: itemID}
	}
	it := &l.items[i]
	it.Category = category
	it.Name = name
	it.Brand = brand
	it.ImageRef = imageRef
	return nil
}

func (l *Ledger) nextID() int64 {
	var last int64
	for id := range l.index {
		if id > last {
			last = id
		}
	}
	return last + 1
}

func checkVariant(v model.Variant) error {
	if strings.TrimSpace(v.Code) == "" {
		return fmt.Errorf("%w: variant code required", ErrInvalidCatalog)
	}
	if v.Balance < 0 {
		return fmt.Errorf("%w: variant %q has negative balance %d", ErrInvalidCatalog, v.Code, v.Balance)
	}
	return nil
}
