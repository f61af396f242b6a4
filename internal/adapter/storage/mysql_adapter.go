package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) GetQuantity(ctx context.Context, productID int64) (int, bool, error) {
	var quantity int
	err := m.db.QueryRowContext(ctx, `
		SELECT quantity FROM inventories WHERE product_id = ?`, productID,
	).Scan(&quantity)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query inventory: %w", err)
	}

	return quantity, true, nil
}

// Upsert relies on the primary key on product_id so concurrent first writes
// for the same product converge on one row.
func (m *MySQLAdapter) Upsert(ctx context.Context, inv domain.Inventory) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO inventories (product_id, quantity) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE quantity = VALUES(quantity)`,
		inv.ProductID, inv.Quantity,
	)
	if err != nil {
		return fmt.Errorf("upsert inventory: %w", err)
	}

	return nil
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}
