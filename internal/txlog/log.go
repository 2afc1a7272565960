// Package txlog is the append-only history of completed issue and return
// transactions.
package txlog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/erazemk/ppestock/internal/ledger"
	"github.com/erazemk/ppestock/internal/model"
)

var (
	ErrNotFound     = errors.New("transaction not found")
	ErrNotConfirmed = errors.New("reset requires explicit confirmation")
	ErrDuplicateID  = errors.New("duplicate transaction id")
	ErrNotAnIssue   = errors.New("returns can only be recorded against an issue")
	ErrInvalidType  = errors.New("unknown transaction type")
)

// Log holds transactions in the order they were appended.
type Log struct {
	txs   []model.Transaction
	index map[string]int
}

// New builds a log from previously persisted transactions. Each one is
// checked like an append, history included.
func New(txs []model.Transaction) (*Log, error) {
	l := &Log{index: make(map[string]int, len(txs))}
	for _, t := range txs {
		if err := l.Append(t); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Append adds one transaction. Transactions are never merged or overwritten.
func (l *Log) Append(t model.Transaction) error {
	if t.ID == "" {
		return fmt.Errorf("appending transaction: id required")
	}
	if _, exists := l.index[t.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	if err := checkRecord(&t); err != nil {
		return fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	l.index[t.ID] = len(l.txs)
	l.txs = append(l.txs, t.Clone())
	return nil
}

// Get returns a copy of a transaction by ID.
func (l *Log) Get(id string) (model.Transaction, error) {
	i, ok := l.index[id]
	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l.txs[i].Clone(), nil
}

// AppendReturn records a partial return against an issued transaction. The
// quantity is checked against what remains, not the original quantity, so
// a chain of partial returns can never exceed the issue.
func (l *Log) AppendReturn(id string, quantity int, date string) (model.ReturnEntry, error) {
	i, ok := l.index[id]
	if !ok {
		return model.ReturnEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t := &l.txs[i]
	if t.Type != model.TxOut {
		return model.ReturnEntry{}, ErrNotAnIssue
	}
	if err := CheckReturn(t, quantity); err != nil {
		return model.ReturnEntry{}, err
	}

	entry := model.ReturnEntry{
		ReturnedQuantity:  quantity,
		ReturnDate:        date,
		RemainingQuantity: t.Remaining() - quantity,
	}
	t.ReturnHistory = append(t.ReturnHistory, entry)
	return entry, nil
}

// CheckReturn validates 0 < quantity <= remaining for a transaction.
func CheckReturn(t *model.Transaction, quantity int) error {
	return checkReturnAmount(quantity, t.Remaining())
}

func checkReturnAmount(quantity, remaining int) error {
	if quantity <= 0 {
		return &ledger.InvalidQuantityError{Field: "returned quantity", Quantity: quantity, Remaining: -1}
	}
	if quantity > remaining {
		return &ledger.InvalidQuantityError{Field: "returned quantity", Quantity: quantity, Remaining: remaining}
	}
	return nil
}

// checkRecord validates a transaction and replays its return history: every
// entry returns a positive amount no larger than what was still out, and
// records what is left after it.
func checkRecord(t *model.Transaction) error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if t.Quantity <= 0 {
		return &ledger.InvalidQuantityError{Field: "quantity", Quantity: t.Quantity, Remaining: -1}
	}
	if len(t.ReturnHistory) > 0 && t.Type != model.TxOut {
		return ErrNotAnIssue
	}

	remaining := t.Quantity
	for i, e := range t.ReturnHistory {
		if err := checkReturnAmount(e.ReturnedQuantity, remaining); err != nil {
			return err
		}
		remaining -= e.ReturnedQuantity
		if e.RemainingQuantity != remaining {
			return fmt.Errorf("return %d records %d remaining, want %d: %w",
				i+1, e.RemainingQuantity, remaining, ledger.ErrInvalidQuantity)
		}
	}
	return nil
}

// All returns a copy of every transaction.
func (l *Log) All() []model.Transaction {
	return model.CloneTransactions(l.txs)
}

// Len is the number of transactions.
func (l *Log) Len() int {
	return len(l.txs)
}

// Open returns issues that have not been fully returned.
func (l *Log) Open() []model.Transaction {
	return l.filter(isOpen)
}

// Today returns transactions dated date (YYYY-MM-DD).
func (l *Log) Today(date string) []model.Transaction {
	return l.FilterByDateRange(date, date)
}

// FilterByDateRange returns transactions whose date falls in [start, end].
// Dates are ISO strings, so lexical order is chronological. An empty bound
// is open.
func (l *Log) FilterByDateRange(start, end string) []model.Transaction {
	return l.filter(inDateRange(start, end))
}

// FilterByActor matches employee, site or superior, case-insensitively.
func (l *Log) FilterByActor(name string) []model.Transaction {
	return l.filter(byActor(name))
}

// FilterByItem matches item name, variant, category or brand.
func (l *Log) FilterByItem(text string) []model.Transaction {
	return l.filter(byItem(text))
}

// Query combines the filters. Zero fields match everything.
type Query struct {
	From     string
	To       string
	Actor    string
	Item     string
	OpenOnly bool
}

// Find applies every filter in q.
func (l *Log) Find(q Query) []model.Transaction {
	return l.FindResolved(q, nil)
}

// FindResolved is Find with resolve applied to each copy before the filters
// run, so they see the display fields resolve sets.
func (l *Log) FindResolved(q Query, resolve func(*model.Transaction)) []model.Transaction {
	preds := []func(*model.Transaction) bool{
		inDateRange(q.From, q.To),
		byActor(q.Actor),
		byItem(q.Item),
	}
	if q.OpenOnly {
		preds = append(preds, isOpen)
	}

	out := []model.Transaction{}
	for i := range l.txs {
		t := l.txs[i].Clone()
		if resolve != nil {
			resolve(&t)
		}
		if !slices.ContainsFunc(preds, func(p func(*model.Transaction) bool) bool { return !p(&t) }) {
			out = append(out, t)
		}
	}
	return out
}

func inDateRange(start, end string) func(*model.Transaction) bool {
	return func(t *model.Transaction) bool {
		if start != "" && t.Date < start {
			return false
		}
		if end != "" && t.Date > end {
			return false
		}
		return true
	}
}

func byActor(name string) func(*model.Transaction) bool {
	q := strings.ToUpper(strings.TrimSpace(name))
	return func(t *model.Transaction) bool {
		return q == "" ||
			strings.Contains(strings.ToUpper(t.Employee), q) ||
			strings.Contains(strings.ToUpper(t.Superior), q)
	}
}

func byItem(text string) func(*model.Transaction) bool {
	q := strings.ToUpper(strings.TrimSpace(text))
	return func(t *model.Transaction) bool {
		if q == "" {
			return true
		}
		return slices.ContainsFunc([]string{t.Item, t.Variant, t.Category, t.Brand}, func(f string) bool {
			return strings.Contains(strings.ToUpper(f), q)
		})
	}
}

func isOpen(t *model.Transaction) bool {
	return t.Type == model.TxOut && !t.FullyReturned()
}

// ResetAll clears the log. The caller must have obtained confirmation.
func (l *Log) ResetAll(confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	l.txs = nil
	l.index = make(map[string]int)
	return nil
}

func (l *Log) filter(keep func(*model.Transaction) bool) []model.Transaction {
	out := []model.Transaction{}
	for i := range l.txs {
		if keep(&l.txs[i]) {
			out = append(out, l.txs[i].Clone())
		}
	}
	return out
}
