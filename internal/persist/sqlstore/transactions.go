package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"slices"

	"github.com/erazemk/ppestock/internal/model"
)

func queryTransactions(ctx context.Context, q queryer, where string, args []any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, type, date, time, employee, superior, item_id, variant_code,
		        category, item, brand, variant, quantity, latitude, longitude, proof_ref
		 FROM transactions `+where+` ORDER BY seq`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}

	txs := []model.Transaction{}
	index := make(map[string]int)
	for rows.Next() {
		var t model.Transaction
		var lat, lng sql.NullFloat64
		if err := rows.Scan(&t.ID, &t.Type, &t.Date, &t.Time, &t.Employee, &t.Superior,
			&t.ItemID, &t.VariantCode, &t.Category, &t.Item, &t.Brand, &t.Variant,
			&t.Quantity, &lat, &lng, &t.ProofRef); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if lat.Valid && lng.Valid {
			t.Location = &model.Location{Lat: lat.Float64, Lng: lng.Float64}
		}
		index[t.ID] = len(txs)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = q.QueryContext(ctx,
		`SELECT transaction_id, returned_quantity, return_date, remaining_quantity
		 FROM return_history
		 WHERE transaction_id IN (SELECT id FROM transactions `+where+`)
		 ORDER BY transaction_id, seq`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying return history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var r model.ReturnEntry
		if err := rows.Scan(&id, &r.ReturnedQuantity, &r.ReturnDate, &r.RemainingQuantity); err != nil {
			return nil, fmt.Errorf("scanning return entry: %w", err)
		}
		if i, ok := index[id]; ok {
			txs[i].ReturnHistory = append(txs[i].ReturnHistory, r)
		}
	}
	return txs, rows.Err()
}

// saveTransactions writes new and changed transactions and their return
// history. Ones missing from txs were cleared by a reset and are deleted.
func saveTransactions(ctx context.Context, tx *sql.Tx, txs []model.Transaction) error {
	current, err := queryTransactions(ctx, tx, "", nil)
	if err != nil {
		return err
	}
	stored := make(map[string]model.Transaction, len(current))
	for _, t := range current {
		stored[t.ID] = t
	}
	seqs, err := storedSeqs(ctx, tx)
	if err != nil {
		return err
	}

	for seq, t := range txs {
		old, ok := stored[t.ID]
		delete(stored, t.ID)

		if !ok || seqs[t.ID] != seq || !sameRow(old, t) {
			if err := upsertTransaction(ctx, tx, seq, t); err != nil {
				return err
			}
		}

		from := len(old.ReturnHistory)
		if !isPrefix(old.ReturnHistory, t.ReturnHistory) {
			if _, err := tx.ExecContext(ctx, `DELETE FROM return_history WHERE transaction_id = ?`, t.ID); err != nil {
				return fmt.Errorf("clearing return history for %s: %w", t.ID, err)
			}
			from = 0
		}
		for i := from; i < len(t.ReturnHistory); i++ {
			r := t.ReturnHistory[i]
			_, err := tx.ExecContext(ctx,
				`INSERT INTO return_history (transaction_id, seq, returned_quantity, return_date, remaining_quantity)
				 VALUES (?, ?, ?, ?, ?)`,
				t.ID, i, r.ReturnedQuantity, r.ReturnDate, r.RemainingQuantity,
			)
			if err != nil {
				return fmt.Errorf("inserting return entry for %s: %w", t.ID, err)
			}
		}
	}

	for id := range stored {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting transaction %s: %w", id, err)
		}
	}
	return nil
}

func storedSeqs(ctx context.Context, tx *sql.Tx) (map[string]int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, seq FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("listing transaction order: %w", err)
	}
	defer rows.Close()

	seqs := make(map[string]int)
	for rows.Next() {
		var id string
		var seq int
		if err := rows.Scan(&id, &seq); err != nil {
			return nil, fmt.Errorf("scanning transaction order: %w", err)
		}
		seqs[id] = seq
	}
	return seqs, rows.Err()
}

func upsertTransaction(ctx context.Context, tx *sql.Tx, seq int, t model.Transaction) error {
	var lat, lng sql.NullFloat64
	if t.Location != nil {
		lat = sql.NullFloat64{Float64: t.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: t.Location.Lng, Valid: true}
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, seq, type, date, time, employee, superior,
		     item_id, variant_code, category, item, brand, variant, quantity,
		     latitude, longitude, proof_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     seq = excluded.seq, type = excluded.type, date = excluded.date,
		     time = excluded.time, employee = excluded.employee, superior = excluded.superior,
		     item_id = excluded.item_id, variant_code = excluded.variant_code,
		     category = excluded.category, item = excluded.item, brand = excluded.brand,
		     variant = excluded.variant, quantity = excluded.quantity,
		     latitude = excluded.latitude, longitude = excluded.longitude,
		     proof_ref = excluded.proof_ref`,
		t.ID, seq, string(t.Type), t.Date, t.Time, t.Employee, t.Superior,
		t.ItemID, t.VariantCode, t.Category, t.Item, t.Brand, t.Variant, t.Quantity,
		lat, lng, t.ProofRef,
	)
	if err != nil {
		return fmt.Errorf("writing transaction %s: %w", t.ID, err)
	}
	return nil
}

// sameRow compares the columns of the transactions table.
func sameRow(a, b model.Transaction) bool {
	if (a.Location == nil) != (b.Location == nil) {
		return false
	}
	if a.Location != nil && *a.Location != *b.Location {
		return false
	}
	a.Location, b.Location = nil, nil
	a.ReturnHistory, b.ReturnHistory = nil, nil
	return reflect.DeepEqual(a, b)
}

func isPrefix(prefix, full []model.ReturnEntry) bool {
	return len(prefix) <= len(full) && slices.Equal(prefix, full[:len(prefix)])
}
