package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/ppestock/internal/model"
)

func queryItems(ctx context.Context, q queryer, where string, args []any) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, category, name, brand, image_ref FROM items `+where+` ORDER BY position, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}

	items := []model.Item{}
	index := make(map[int64]int)
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Category, &it.Name, &it.Brand, &it.ImageRef); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		index[it.ID] = len(items)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = q.QueryContext(ctx,
		`SELECT item_id, code, label, balance FROM variants
		 WHERE item_id IN (SELECT id FROM items `+where+`)
		 ORDER BY item_id, position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID int64
		var v model.Variant
		if err := rows.Scan(&itemID, &v.Code, &v.Label, &v.Balance); err != nil {
			return nil, fmt.Errorf("scanning variant: %w", err)
		}
		if i, ok := index[itemID]; ok {
			items[i].Variants = append(items[i].Variants, v)
		}
	}
	return items, rows.Err()
}

func saveItems(ctx context.Context, tx *sql.Tx, items []model.Item) error {
	type variantKey struct {
		itemID int64
		code   string
	}

	existingItems := make(map[int64]bool)
	existingVariants := make(map[variantKey]bool)

	rows, err := tx.QueryContext(ctx, `SELECT item_id, code FROM variants`)
	if err != nil {
		return fmt.Errorf("listing variants: %w", err)
	}
	for rows.Next() {
		var k variantKey
		if err := rows.Scan(&k.itemID, &k.code); err != nil {
			rows.Close()
			return fmt.Errorf("scanning variant key: %w", err)
		}
		existingVariants[k] = true
	}
	rows.Close()

	rows, err = tx.QueryContext(ctx, `SELECT id FROM items`)
	if err != nil {
		return fmt.Errorf("listing items: %w", err)
	}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scanning item id: %w", err)
		}
		existingItems[id] = true
	}
	rows.Close()

	for pos, it := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (id, position, category, name, brand, image_ref)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			     position = excluded.position, category = excluded.category,
			     name = excluded.name, brand = excluded.brand, image_ref = excluded.image_ref`,
			it.ID, pos, it.Category, it.Name, it.Brand, it.ImageRef,
		)
		if err != nil {
			return fmt.Errorf("upserting item %d: %w", it.ID, err)
		}
		delete(existingItems, it.ID)

		for vpos, v := range it.Variants {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO variants (item_id, code, position, label, balance)
				 VALUES (?, ?, ?, ?, ?)
				 ON CONFLICT(item_id, code) DO UPDATE SET
				     position = excluded.position, label = excluded.label, balance = excluded.balance`,
				it.ID, v.Code, vpos, v.Label, v.Balance,
			)
			if err != nil {
				return fmt.Errorf("upserting variant %d/%s: %w", it.ID, v.Code, err)
			}
			delete(existingVariants, variantKey{it.ID, v.Code})
		}
	}

	for k := range existingVariants {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM variants WHERE item_id = ? AND code = ?`, k.itemID, k.code,
		); err != nil {
			return fmt.Errorf("deleting variant %d/%s: %w", k.itemID, k.code, err)
		}
	}
	for id := range existingItems {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting item %d: %w", id, err)
		}
	}
	return nil
}
