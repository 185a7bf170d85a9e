package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/taskmaster/dayplanner/internal/infrastructure/config"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
)

const (
	maxConnectAttempts = 5
	initialRetryDelay  = 2 * time.Second
)

// Connect opens a Redis client and pings it, retrying with exponential
// backoff until the server answers or the attempts run out.
func Connect(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	retryDelay := initialRetryDelay

	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.GetAddr(),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 3,
		})

		err := client.Ping(ctx).Err()
		if err == nil {
			log.Infow("Redis connected", "address", cfg.GetAddr(), "attempt", attempt)
			return client, nil
		}
		client.Close()

		log.Warnw("Redis connection failed", "address", cfg.GetAddr(), "attempt", attempt, "error", err)

		if attempt < maxConnectAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
			retryDelay *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d attempts", maxConnectAttempts)
}
