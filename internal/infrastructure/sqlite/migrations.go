package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id          TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		status      TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_lines (
		order_id     TEXT    NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL,
		product_id   TEXT    NOT NULL,
		product_name TEXT    NOT NULL,
		unit_price   TEXT    NOT NULL,
		currency     TEXT    NOT NULL,
		quantity     INTEGER NOT NULL CHECK (quantity > 0),
		PRIMARY KEY (order_id, product_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_lines_position ON order_lines(order_id, position)`,
}

// ApplyMigrations creates the schema. Every statement is idempotent.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migration %d: %w", i, err)
		}
	}
	return nil
}
