package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/ppestock/internal/model"
)

func queryRoster(ctx context.Context, tx *sql.Tx) (model.Roster, error) {
	var r model.Roster

	rows, err := tx.QueryContext(ctx,
		`SELECT name, department, shoe_size, shirt_size, pant_size, helmet_size
		 FROM employees ORDER BY position`,
	)
	if err != nil {
		return r, fmt.Errorf("querying employees: %w", err)
	}
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.Name, &e.Department, &e.ShoeSize, &e.ShirtSize, &e.PantSize, &e.HelmetSize); err != nil {
			rows.Close()
			return r, fmt.Errorf("scanning employee: %w", err)
		}
		r.Employees = append(r.Employees, e)
	}
	rows.Close()

	if r.Sites, err = queryNames(ctx, tx, "sites"); err != nil {
		return r, err
	}
	if r.Superiors, err = queryNames(ctx, tx, "superiors"); err != nil {
		return r, err
	}
	return r, nil
}

func queryNames(ctx context.Context, tx *sql.Tx, table string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT name FROM `+table+` ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// saveRoster replaces the roster tables; they are small and edited rarely.
func saveRoster(ctx context.Context, tx *sql.Tx, r model.Roster) error {
	for _, table := range []string{"employees", "sites", "superiors"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for pos, e := range r.Employees {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO employees (name, position, department, shoe_size, shirt_size, pant_size, helmet_size)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.Name, pos, e.Department, e.ShoeSize, e.ShirtSize, e.PantSize, e.HelmetSize,
		)
		if err != nil {
			return fmt.Errorf("inserting employee %q: %w", e.Name, err)
		}
	}
	for pos, n := range r.Sites {
		if _, err := tx.ExecContext(ctx, `INSERT INTO sites (name, position) VALUES (?, ?)`, n, pos); err != nil {
			return fmt.Errorf("inserting site %q: %w", n, err)
		}
	}
	for pos, n := range r.Superiors {
		if _, err := tx.ExecContext(ctx, `INSERT INTO superiors (name, position) VALUES (?, ?)`, n, pos); err != nil {
			return fmt.Errorf("inserting superior %q: %w", n, err)
		}
	}
	return nil
}
