package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/inventory-service/internal/adapter/auth"
	"github.com/rl1809/inventory-service/internal/adapter/handler"
	"github.com/rl1809/inventory-service/internal/adapter/messaging"
	"github.com/rl1809/inventory-service/internal/adapter/productclient"
	"github.com/rl1809/inventory-service/internal/adapter/storage"
	"github.com/rl1809/inventory-service/internal/config"
	"github.com/rl1809/inventory-service/internal/core/service"
	"github.com/rl1809/inventory-service/internal/platform/observability"
	"github.com/rl1809/inventory-service/internal/port"
)

const readHeaderTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		stdlog.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Inventory service stopped", zap.Error(err))
	}
	logger.Info("Inventory service stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracingSDK(ctx, cfg)
	if err != nil {
		logger.Error("Failed to setup OpenTelemetry tracing", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry tracing", zap.Error(err))
		}
	}()

	// Initialize MySQL
	db, err := storage.OpenMySQL(cfg.DatabaseURL, storage.DefaultPoolConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.ConnectWithRetry(ctx, db, cfg.DBConnectAttempts, cfg.DBConnectDelay, logger); err != nil {
		return err
	}

	publisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", zap.Error(err))
		}
	}()

	// Initialize adapters and service
	mysqlAdapter := storage.NewMySQLAdapter(db)
	directory := productclient.NewHTTPClient(cfg.ProductServiceURL, cfg.ProductServiceAPIKey, cfg.ProductServiceTimeout)
	inventoryService := service.NewInventoryService(
		mysqlAdapter,
		directory,
		publisher,
		logger,
		otel.Tracer(config.ServiceName),
	)

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(inventoryService, auth.NewStaticKeyAuthorizer(cfg.APIKey), logger)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpHandler.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Initialize gRPC health server
	grpcServer := grpc.NewServer()
	healthHandler := handler.NewGRPCHealthHandler(mysqlAdapter, logger)
	healthHandler.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("gRPC health server listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		healthHandler.Watch(gctx, config.StoreHealthCheckInterval)
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)
		logger.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")

		if err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (port.EventPublisher, error) {
	switch cfg.EventSink {
	case config.EventSinkRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 20,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			// events are best effort; the service still serves without them
			logger.Warn("Redis not reachable at startup", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		logger.Info("Publishing inventory events to redis", zap.String("stream", cfg.RedisStream))
		return storage.NewRedisAdapter(rdb, cfg.RedisStream), nil

	case config.EventSinkKafka:
		logger.Info("Publishing inventory events to kafka", zap.String("topic", cfg.KafkaTopic))
		return messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.KafkaBroker, cfg.KafkaTopic)), nil

	case config.EventSinkNone:
		return messaging.NopPublisher{}, nil
	}

	return nil, fmt.Errorf("unknown event sink %q", cfg.EventSink)
}
