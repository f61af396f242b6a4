package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/inventory-service/internal/config"
	"github.com/rl1809/inventory-service/internal/port"
)

const probeTimeout = 2 * time.Second

// GRPCHealthHandler reports store reachability over the standard gRPC health protocol.
type GRPCHealthHandler struct {
	server *health.Server
	store  port.InventoryRepository
	logger *zap.Logger
}

func NewGRPCHealthHandler(store port.InventoryRepository, logger *zap.Logger) *GRPCHealthHandler {
	h := &GRPCHealthHandler{
		server: health.NewServer(),
		store:  store,
		logger: logger,
	}
	h.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *GRPCHealthHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Probe pings the store once and publishes the result.
func (h *GRPCHealthHandler) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Store health probe failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.setStatus(status)
	return status
}

// Watch probes every interval until ctx is done, then marks the service as shutting down.
func (h *GRPCHealthHandler) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

func (h *GRPCHealthHandler) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(config.ServiceName, status)
}
