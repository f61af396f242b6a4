package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/rl1809/inventory-service/internal/core/domain"
	"github.com/rl1809/inventory-service/internal/platform/observability"
	"github.com/rl1809/inventory-service/internal/port"
)

var (
	// ErrNotFound covers every read failure, upstream or store.
	ErrNotFound        = errors.New("product or inventory not found")
	ErrPersistence     = errors.New("failed to update inventory")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

type InventoryService struct {
	store     port.InventoryRepository
	directory port.ProductDirectory
	publisher port.EventPublisher
	logger    *zap.Logger
	tracer    observability.Tracer
	now       func() time.Time
}

func NewInventoryService(
	store port.InventoryRepository,
	directory port.ProductDirectory,
	publisher port.EventPublisher,
	logger *zap.Logger,
	tracer observability.Tracer,
) *InventoryService {
	return &InventoryService{
		store:     store,
		directory: directory,
		publisher: publisher,
		logger:    logger,
		tracer:    tracer,
		now:       time.Now,
	}
}

// GetInventory joins the directory's product name with the stored quantity.
// A product without a stored record reports quantity 0.
func (s *InventoryService) GetInventory(ctx context.Context, productID int64) (*domain.InventoryDocument, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.get")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", productID))

	log := s.logger.With(
		zap.Int64("product_id", productID),
		zap.String("request_id", observability.RequestIDFrom(ctx)),
	)

	product, err := s.directory.GetProduct(ctx, productID)
	if err != nil {
		log.Warn("Product lookup failed", zap.String("cause", "upstream"), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "product lookup failed")
		return nil, ErrNotFound
	}

	quantity, found, err := s.store.GetQuantity(ctx, productID)
	if err != nil {
		log.Error("Inventory read failed", zap.String("cause", "store"), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "inventory read failed")
		return nil, ErrNotFound
	}
	if !found {
		log.Debug("No inventory record, reporting zero quantity")
		quantity = 0
	}

	span.SetAttributes(
		attribute.Bool("inventory.found", found),
		attribute.Int("inventory.quantity", quantity),
	)

	doc := domain.NewInventoryDocument(product, domain.Inventory{
		ProductID: productID,
		Quantity:  quantity,
	})
	return &doc, nil
}

// UpdateInventory stores quantity for productID, creating the record if needed.
// Publishing the change event is best effort once the write is durable.
func (s *InventoryService) UpdateInventory(ctx context.Context, productID int64, quantity int) error {
	ctx, span := s.tracer.Start(ctx, "inventory.update")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int("inventory.quantity", quantity),
	)

	if quantity < 0 {
		span.SetStatus(codes.Error, "negative quantity")
		return ErrInvalidQuantity
	}

	requestID := observability.RequestIDFrom(ctx)

	err := s.store.Upsert(ctx, domain.Inventory{ProductID: productID, Quantity: quantity})
	if err != nil {
		s.logger.Error("Inventory write failed",
			zap.Int64("product_id", productID),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "inventory write failed")
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.logger.Info("Inventory changed",
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
		zap.String("request_id", requestID),
	)

	event := domain.InventoryChanged{
		ProductID:  productID,
		Quantity:   quantity,
		RequestID:  requestID,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishInventoryChanged(ctx, event); err != nil {
		s.logger.Warn("Failed to publish inventory change",
			zap.Int64("product_id", productID),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		span.RecordError(err)
	}

	span.SetStatus(codes.Ok, "inventory updated")
	return nil
}
