package port

import (
	"context"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

type InventoryRepository interface {
	// GetQuantity returns the stored quantity, found is false when no record exists
	GetQuantity(ctx context.Context, productID int64) (quantity int, found bool, err error)

	// Upsert creates the record or overwrites its quantity in a single statement
	Upsert(ctx context.Context, inventory domain.Inventory) error

	// Ping checks the store is reachable
	Ping(ctx context.Context) error
}
