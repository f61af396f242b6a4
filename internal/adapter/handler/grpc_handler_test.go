package handler

import (
	"context"
	"errors"
	"net"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func newHealthClient(t *testing.T, h *GRPCHealthHandler) healthpb.HealthClient {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	h.Register(srv)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func TestGRPCHealth_ServingWhenStoreReachable(t *testing.T) {
	store := newMockStore(nil)
	h := NewGRPCHealthHandler(store, zap.NewNop())
	client := newHealthClient(t, h)
	ctx := context.Background()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "inventory-service"})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING before first probe, got %s", resp.GetStatus())
	}

	if status := h.Probe(ctx); status != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected probe SERVING, got %s", status)
	}

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %s", resp.GetStatus())
	}
}

func TestGRPCHealth_NotServingWhenStoreDown(t *testing.T) {
	store := newMockStore(nil)
	store.pingErr = errors.New("connection refused")
	h := NewGRPCHealthHandler(store, zap.NewNop())
	client := newHealthClient(t, h)
	ctx := context.Background()

	h.Probe(ctx)

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "inventory-service"})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING, got %s", resp.GetStatus())
	}
}
