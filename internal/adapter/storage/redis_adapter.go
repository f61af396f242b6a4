package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

const streamMaxLen = 100000

// RedisAdapter appends inventory change events to a Redis stream.
type RedisAdapter struct {
	client *redis.Client
	stream string
}

func NewRedisAdapter(client *redis.Client, stream string) *RedisAdapter {
	return &RedisAdapter{client: client, stream: stream}
}

func (r *RedisAdapter) PublishInventoryChanged(ctx context.Context, event domain.InventoryChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"product_id": event.ProductID,
			"quantity":   event.Quantity,
			"payload":    string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", r.stream, err)
	}

	return nil
}

func (r *RedisAdapter) Close() error {
	return r.client.Close()
}
