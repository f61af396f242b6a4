package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ServiceName    = "inventory-service"
	ServiceVersion = "1.0.0"
)

const (
	EventSinkNone  = "none"
	EventSinkRedis = "redis"
	EventSinkKafka = "kafka"
)

const (
	defaultPort              = "3000"
	defaultGRPCPort          = "50051"
	defaultProductServiceURL = "http://product-service:8080/api/v1/products"
	defaultProductTimeout    = 5 * time.Second
	defaultDBConnectAttempts = 5
	defaultDBConnectDelay    = 5 * time.Second
	defaultRedisStream       = "inventory:changed"
	defaultKafkaTopic        = "InventoryChanged"
	defaultLogLevel          = "info"
)

const (
	TracesPath               = "/v1/traces"
	ExportTimeout            = 30 * time.Second
	MaxQueueSize             = 2048
	KafkaBatchTimeout        = 10 * time.Millisecond
	StoreHealthCheckInterval = 10 * time.Second
	ShutdownTimeout          = 20 * time.Second
)

var ErrMissingVariable = errors.New("required environment variable is not set")

type Config struct {
	DatabaseURL string
	Port        string
	GRPCPort    string

	ProductServiceURL     string
	ProductServiceAPIKey  string
	ProductServiceTimeout time.Duration

	// APIKey is the shared secret expected in the x-api-key header on writes.
	APIKey string

	DBConnectAttempts int
	DBConnectDelay    time.Duration

	EventSink   string
	RedisAddr   string
	RedisStream string
	KafkaBroker string
	KafkaTopic  string

	OtelEndpoint   string
	OtelAuthHeader string
	LogLevel       string
}

// LoadConfig reads a .env file when present and then the process environment.
func LoadConfig() (*Config, error) {
	// a missing .env is normal in containers
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		DatabaseURL:       get("DATABASE_URL", ""),
		Port:              get("PORT", defaultPort),
		GRPCPort:          get("GRPC_PORT", defaultGRPCPort),
		ProductServiceURL: get("PRODUCT_SERVICE_URL", defaultProductServiceURL),
		APIKey:            get("INVENTORY_API_KEY", ""),
		EventSink:         get("EVENT_SINK", EventSinkNone),
		RedisAddr:         get("REDIS_ADDR", ""),
		RedisStream:       get("REDIS_STREAM", defaultRedisStream),
		KafkaBroker:       get("KAFKA_BROKER", ""),
		KafkaTopic:        get("KAFKA_TOPIC", defaultKafkaTopic),
		OtelEndpoint:      get("OTEL_ENDPOINT", ""),
		OtelAuthHeader:    get("OTEL_AUTH_HEADER", ""),
		LogLevel:          get("LOG_LEVEL", defaultLogLevel),
	}
	cfg.ProductServiceAPIKey = get("PRODUCT_SERVICE_API_KEY", cfg.APIKey)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL: %w", ErrMissingVariable)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("INVENTORY_API_KEY: %w", ErrMissingVariable)
	}

	var err error
	if cfg.ProductServiceTimeout, err = parseDuration(get("PRODUCT_SERVICE_TIMEOUT", ""), defaultProductTimeout); err != nil {
		return nil, fmt.Errorf("PRODUCT_SERVICE_TIMEOUT: %w", err)
	}
	if cfg.DBConnectDelay, err = parseDuration(get("DB_CONNECT_DELAY", ""), defaultDBConnectDelay); err != nil {
		return nil, fmt.Errorf("DB_CONNECT_DELAY: %w", err)
	}
	if cfg.DBConnectAttempts, err = parsePositiveInt(get("DB_CONNECT_ATTEMPTS", ""), defaultDBConnectAttempts); err != nil {
		return nil, fmt.Errorf("DB_CONNECT_ATTEMPTS: %w", err)
	}

	switch cfg.EventSink {
	case EventSinkNone:
	case EventSinkRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR: %w", ErrMissingVariable)
		}
	case EventSinkKafka:
		if cfg.KafkaBroker == "" {
			return nil, fmt.Errorf("KAFKA_BROKER: %w", ErrMissingVariable)
		}
	default:
		return nil, fmt.Errorf("EVENT_SINK: unknown sink %q", cfg.EventSink)
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", raw)
	}
	return d, nil
}

func parsePositiveInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
