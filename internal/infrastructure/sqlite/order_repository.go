// Package sqlite persists orders in SQLite through the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const timeLayout = time.RFC3339Nano

// OrderRepository implements order.Repository on SQLite. Every Get rebuilds the
// aggregate from rows, so callers never share instances.
type OrderRepository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*OrderRepository, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// One connection: SQLite has a single writer, and ":memory:" databases
	// live and die with their connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &OrderRepository{db: db}, nil
}

func (r *OrderRepository) Close() error {
	return r.db.Close()
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	var (
		snap               domain.Snapshot
		status             string
		createdAt, updated string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, status, created_at, updated_at FROM orders WHERE id = ?`, id,
	).Scan(&snap.ID, &snap.CustomerID, &status, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order: %w", err)
	}

	snap.Status = domain.Status(status)
	if snap.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("sqlite: order %s: created_at: %w", id, err)
	}
	if snap.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("sqlite: order %s: updated_at: %w", id, err)
	}

	snap.Lines, err = r.lines(ctx, id)
	if err != nil {
		return nil, err
	}

	order, err := domain.Rehydrate(snap)
	if err != nil {
		return nil, fmt.Errorf("sqlite: rehydrate: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) lines(ctx context.Context, orderID string) ([]domain.LineSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, product_name, unit_price, currency, quantity
		   FROM order_lines WHERE order_id = ? ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list lines: %w", err)
	}
	defer rows.Close()

	var out []domain.LineSnapshot
	for rows.Next() {
		var (
			ls    domain.LineSnapshot
			price string
		)
		if err := rows.Scan(&ls.ProductID, &ls.ProductName, &price, &ls.Currency, &ls.Quantity); err != nil {
			return nil, fmt.Errorf("sqlite: scan line: %w", err)
		}
		if ls.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sqlite: line %s: unit_price: %w", ls.ProductID, err)
		}
		out = append(out, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list lines: %w", err)
	}
	return out, nil
}

// Save upserts the order row and replaces its lines in one transaction.
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) (err error) {
	if order == nil || order.ID() == "" {
		return fmt.Errorf("sqlite: save order: %w", domain.ErrInvalidID)
	}
	snap := order.Snapshot()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer_id = excluded.customer_id,
			status      = excluded.status,
			created_at  = excluded.created_at,
			updated_at  = excluded.updated_at`,
		snap.ID, snap.CustomerID, string(snap.Status),
		snap.CreatedAt.UTC().Format(timeLayout), snap.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save order: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = ?`, snap.ID); err != nil {
		return fmt.Errorf("sqlite: clear lines: %w", err)
	}
	for i, l := range snap.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, position, product_id, product_name, unit_price, currency, quantity)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			snap.ID, i, l.ProductID, l.ProductName, l.UnitPrice.String(), l.Currency, l.Quantity,
		)
		if err != nil {
			return fmt.Errorf("sqlite: save line %s: %w", l.ProductID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}
