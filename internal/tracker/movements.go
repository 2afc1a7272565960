package tracker

import (
	"context"
	"fmt"

	"github.com/erazemk/ppestock/internal/ledger"
	"github.com/erazemk/ppestock/internal/model"
	"github.com/erazemk/ppestock/internal/validate"
)

// MovementRequest describes an issue or a return. The acting party is either
// an employee, or a site together with the superior responsible for it.
type MovementRequest struct {
	ItemID      int64           `json:"itemId" validate:"required"`
	VariantCode string          `json:"variantCode" validate:"notblank"`
	Quantity    int             `json:"quantity"`
	Employee    string          `json:"employee" validate:"required_without=Site,excluded_with=Site"`
	Site        string          `json:"site" validate:"required_without=Employee"`
	Superior    string          `json:"superior" validate:"required_with=Site"`
	Location    *model.Location `json:"location"`
	ProofRef    string          `json:"proofRef" validate:"notblank"`
}

// Receipt is the outcome of an accepted issue or return.
type Receipt struct {
	Transaction model.Transaction `json:"transaction"`
	Result      ledger.Result     `json:"result"`
}

// Issue removes stock and records an OUT transaction. A rejected issue
// changes neither the balance nor the log.
func (t *Tracker) Issue(ctx context.Context, req MovementRequest) (Receipt, error) {
	if t.opts.MaxPerIssue > 0 && req.Quantity > t.opts.MaxPerIssue {
		return Receipt{}, &ledger.InvalidQuantityError{
			Field: "quantity", Quantity: req.Quantity, Remaining: -1, Max: t.opts.MaxPerIssue,
		}
	}
	return t.move(ctx, model.TxOut, req)
}

// Return adds stock back and records an IN transaction. There is no upper
// bound; returns against a specific issue go through PartialReturn.
func (t *Tracker) Return(ctx context.Context, req MovementRequest) (Receipt, error) {
	return t.move(ctx, model.TxIn, req)
}

func (t *Tracker) move(ctx context.Context, typ model.TxType, req MovementRequest) (Receipt, error) {
	if err := validate.Struct(req); err != nil {
		return Receipt{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if req.Employee != "" && len(t.roster.Employees) > 0 && !t.isEmployee(req.Employee) {
		return Receipt{}, fmt.Errorf("%w: %s", ErrUnknownActor, req.Employee)
	}

	var rec Receipt
	err := t.mutate(ctx, func() error {
		item, err := t.ledger.Item(req.ItemID)
		if err != nil {
			return err
		}

		var res ledger.Result
		if typ == model.TxOut {
			res, err = t.ledger.Issue(req.ItemID, req.VariantCode, req.Quantity)
		} else {
			res, err = t.ledger.Return(req.ItemID, req.VariantCode, req.Quantity)
		}
		if err != nil {
			return err
		}

		date, stamp := t.today()
		tx := model.Transaction{
			ID:          newID(),
			Type:        typ,
			Date:        date,
			Time:        stamp,
			Employee:    req.Employee,
			ItemID:      item.ID,
			VariantCode: req.VariantCode,
			Category:    item.Category,
			Item:        item.Name,
			Brand:       item.Brand,
			Variant:     req.VariantCode,
			Quantity:    req.Quantity,
			Location:    req.Location,
			ProofRef:    req.ProofRef,
		}
		if req.Site != "" {
			tx.Employee = req.Site
			tx.Superior = req.Superior
		}
		if err := t.log.Append(tx); err != nil {
			return err
		}
		rec = Receipt{Transaction: tx.Clone(), Result: res}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	t.logger.Info(rec.Result.Message,
		"transaction", rec.Transaction.ID,
		"type", string(typ),
		"actor", rec.Transaction.Actor(),
		"balance", rec.Result.Balance,
	)
	return rec, nil
}

// ReturnReceipt is the outcome of a partial return.
type ReturnReceipt struct {
	Transaction model.Transaction `json:"transaction"`
	Entry       model.ReturnEntry `json:"entry"`
	Result      ledger.Result     `json:"result"`
}

// PartialReturn returns part of an earlier issue. The quantity is bounded by
// what remains unreturned on that transaction; the entry and the balance
// change are saved together.
func (t *Tracker) PartialReturn(ctx context.Context, txID string, quantity int) (ReturnReceipt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var rec ReturnReceipt
	err := t.mutate(ctx, func() error {
		date, _ := t.today()
		entry, err := t.log.AppendReturn(txID, quantity, date)
		if err != nil {
			return err
		}
		tx, err := t.log.Get(txID)
		if err != nil {
			return err
		}
		res, err := t.ledger.Return(tx.ItemID, tx.VariantCode, quantity)
		if err != nil {
			return err
		}
		rec = ReturnReceipt{Transaction: tx, Entry: entry, Result: res}
		return nil
	})
	if err != nil {
		return ReturnReceipt{}, err
	}

	t.logger.Info(rec.Result.Message,
		"transaction", txID,
		"returned", quantity,
		"remaining", rec.Entry.RemainingQuantity,
	)
	return rec, nil
}

// Restock tops up a variant without recording an actor transaction.
func (t *Tracker) Restock(ctx context.Context, itemID int64, code string, quantity int) (ledger.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var res ledger.Result
	err := t.mutate(ctx, func() error {
		var err error
		res, err = t.ledger.Return(itemID, code, quantity)
		return err
	})
	if err != nil {
		return ledger.Result{}, err
	}
	t.logger.Info(res.Message, "restock", true, "balance", res.Balance)
	return res, nil
}
