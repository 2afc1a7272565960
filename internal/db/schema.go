package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. The kv table backs the key-value
// store, the remaining tables back the structured store and proof images.
const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id        INTEGER PRIMARY KEY,
    position  INTEGER NOT NULL,
    category  TEXT NOT NULL DEFAULT '',
    name      TEXT NOT NULL,
    brand     TEXT NOT NULL DEFAULT '',
    image_ref TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);

CREATE TABLE IF NOT EXISTS variants (
    item_id  INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    code     TEXT NOT NULL,
    position INTEGER NOT NULL,
    label    TEXT NOT NULL DEFAULT '',
    balance  INTEGER NOT NULL CHECK (balance >= 0),
    PRIMARY KEY (item_id, code)
);

CREATE TABLE IF NOT EXISTS transactions (
    id           TEXT PRIMARY KEY,
    seq          INTEGER NOT NULL,
    type         TEXT NOT NULL CHECK (type IN ('OUT', 'IN')),
    date         TEXT NOT NULL,
    time         TEXT NOT NULL,
    employee     TEXT NOT NULL,
    superior     TEXT NOT NULL DEFAULT '',
    item_id      INTEGER NOT NULL,
    variant_code TEXT NOT NULL,
    category     TEXT NOT NULL DEFAULT '',
    item         TEXT NOT NULL DEFAULT '',
    brand        TEXT NOT NULL DEFAULT '',
    variant      TEXT NOT NULL DEFAULT '',
    quantity     INTEGER NOT NULL CHECK (quantity > 0),
    latitude     REAL,
    longitude    REAL,
    proof_ref    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_employee ON transactions(employee);
CREATE INDEX IF NOT EXISTS idx_transactions_item ON transactions(item_id, variant_code);

CREATE TABLE IF NOT EXISTS return_history (
    transaction_id     TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    seq                INTEGER NOT NULL,
    returned_quantity  INTEGER NOT NULL CHECK (returned_quantity > 0),
    return_date        TEXT NOT NULL,
    remaining_quantity INTEGER NOT NULL CHECK (remaining_quantity >= 0),
    PRIMARY KEY (transaction_id, seq)
);

CREATE TABLE IF NOT EXISTS employees (
    name        TEXT PRIMARY KEY,
    position    INTEGER NOT NULL,
    department  TEXT NOT NULL DEFAULT '',
    shoe_size   TEXT NOT NULL DEFAULT '',
    shirt_size  TEXT NOT NULL DEFAULT '',
    pant_size   TEXT NOT NULL DEFAULT '',
    helmet_size TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sites (
    name     TEXT PRIMARY KEY,
    position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS superiors (
    name     TEXT PRIMARY KEY,
    position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS proofs (
    ref         TEXT PRIMARY KEY,
    file_name   TEXT NOT NULL,
    mime        TEXT NOT NULL,
    data        BLOB NOT NULL,
    latitude    REAL,
    longitude   REAL,
    captured_at DATETIME NOT NULL,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
