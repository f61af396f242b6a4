package port

import (
	"context"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

type ProductDirectory interface {
	// GetProduct fetches product metadata from the remote directory
	GetProduct(ctx context.Context, productID int64) (*domain.ProductSummary, error)
}
