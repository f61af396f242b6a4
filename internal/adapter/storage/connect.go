package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var ErrStoreUnavailable = errors.New("inventory store unavailable")

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    50,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// OpenMySQL creates the process-wide pool. It does not dial; use ConnectWithRetry.
func OpenMySQL(dsn string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return db, nil
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnectWithRetry blocks until the store answers a ping or attempts run out.
// The wait between attempts starts at delay and grows up to four times delay.
func ConnectWithRetry(ctx context.Context, p Pinger, attempts int, delay time.Duration, logger *zap.Logger) error {
	if attempts < 1 {
		attempts = 1
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = delay
	expBackoff.MaxInterval = 4 * delay
	expBackoff.Multiplier = 1.5
	expBackoff.RandomizationFactor = 0
	expBackoff.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(attempts-1)), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		if err := p.PingContext(ctx); err != nil {
			logger.Warn("Failed to connect to the database",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Error(err),
			)
			return err
		}
		return nil
	}, policy)
	if err != nil {
		return fmt.Errorf("%w after %d attempts: %v", ErrStoreUnavailable, attempt, err)
	}

	logger.Info("Successfully connected to the database", zap.Int("attempt", attempt))
	return nil
}
