package port

import (
	"context"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

type EventPublisher interface {
	// PublishInventoryChanged hands the event to the configured sink
	PublishInventoryChanged(ctx context.Context, event domain.InventoryChanged) error

	Close() error
}
