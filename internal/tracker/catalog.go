package tracker

import (
	"context"
	"fmt"

	"github.com/erazemk/ppestock/internal/ledger"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/txlog"
)

// AddItem adds a catalog item. A zero ID gets the next free one.
func (t *Tracker) AddItem(ctx context.Context, item model.Item) (model.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var added model.Item
	err := t.mutate(ctx, func() error {
		var err error
		added, err = t.ledger.AddItem(item)
		return err
	})
	if err != nil {
		return model.Item{}, err
	}
	t.logger.Info("item added", "item", added.ID, "name", added.Name, "variants", len(added.Variants))
	return added, nil
}

// AddVariant adds a variant to an existing item.
func (t *Tracker) AddVariant(ctx context.Context, itemID int64, v model.Variant) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.mutate(ctx, func() error { return t.ledger.AddVariant(itemID, v) }); err != nil {
		return err
	}
	t.logger.Info("variant added", "item", itemID, "variant", v.Code, "balance", v.Balance)
	return nil
}

// RemoveVariant drops an empty variant with no issue still out against it.
func (t *Tracker) RemoveVariant(ctx context.Context, itemID int64, code string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, tx := range t.log.Open() {
		if tx.ItemID == itemID && tx.VariantCode == code {
			return fmt.Errorf("variant %q has %d units still out on %s: %w", code, tx.Remaining(), tx.ID, ledger.ErrInUse)
		}
	}

	if err := t.mutate(ctx, func() error { return t.ledger.RemoveVariant(itemID, code) }); err != nil {
		return err
	}
	t.logger.Info("variant removed", "item", itemID, "variant", code)
	return nil
}

// RenameItem changes an item's display name.
func (t *Tracker) RenameItem(ctx context.Context, itemID int64, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.mutate(ctx, func() error { return t.ledger.RenameItem(itemID, name) }); err != nil {
		return err
	}
	t.logger.Info("item renamed", "item", itemID, "name", name)
	return nil
}

// RenameVariant changes a variant's display label.
func (t *Tracker) RenameVariant(ctx context.Context, itemID int64, code, label string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.mutate(ctx, func() error { return t.ledger.RenameVariant(itemID, code, label) })
}

// UpdateItem edits an item's descriptive fields.
func (t *Tracker) UpdateItem(ctx context.Context, item model.Item) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.mutate(ctx, func() error {
		return t.ledger.UpdateItem(item.ID, item.Category, item.Name, item.Brand, item.ImageRef)
	})
	if err != nil {
		return err
	}
	t.logger.Info("item updated", "item", item.ID)
	return nil
}

// Items returns a copy of the catalog.
func (t *Tracker) Items() []model.Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Items()
}

// Item returns one catalog item.
func (t *Tracker) Item(itemID int64) (model.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Item(itemID)
}

// Balance returns a variant's balance.
func (t *Tracker) Balance(itemID int64, code string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Balance(itemID, code)
}

// LowStock lists variants under threshold; zero uses the configured default.
func (t *Tracker) LowStock(threshold int) []ledger.LowStockEntry {
	if threshold <= 0 {
		threshold = t.opts.LowStockThreshold
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.LowStock(threshold)
}

// Summary aggregates the catalog.
func (t *Tracker) Summary() ledger.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.Summary(t.opts.LowStockThreshold)
}

// Transactions returns the transactions matching q.
func (t *Tracker) Transactions(q txlog.Query) []model.Transaction {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.log.FindResolved(q, t.relabel)
}

// Transaction returns one transaction by ID.
func (t *Tracker) Transaction(id string) (model.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tx, err := t.log.Get(id)
	if err != nil {
		return tx, err
	}
	t.relabel(&tx)
	return tx, nil
}

// OpenIssues lists issues that have not been fully returned.
func (t *Tracker) OpenIssues() []model.Transaction {
	t.mu.Lock()
	defer t.mu.Unlock()
	txs := t.log.Open()
	for i := range txs {
		t.relabel(&txs[i])
	}
	return txs
}

// relabel refreshes the display copies on tx from the current catalog, so a
// renamed item shows its new name in history. Transactions whose item was
// removed keep the names they were recorded with.
func (t *Tracker) relabel(tx *model.Transaction) {
	item, err := t.ledger.Item(tx.ItemID)
	if err != nil {
		return
	}
	tx.Category, tx.Item, tx.Brand = item.Category, item.Name, item.Brand
}
