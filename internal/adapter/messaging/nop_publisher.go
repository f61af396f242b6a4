package messaging

import (
	"context"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

// NopPublisher is used when no event sink is configured.
type NopPublisher struct{}

func (NopPublisher) PublishInventoryChanged(context.Context, domain.InventoryChanged) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
