package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

const maxTxRetries = 10

// RedisDocumentRepository keeps each document under
// <prefix>:<kind>:<deviceID>.
type RedisDocumentRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisDocumentRepository creates a new redis-backed repository
func NewRedisDocumentRepository(client *redis.Client, prefix string) *RedisDocumentRepository {
	if prefix == "" {
		prefix = "dayplanner"
	}
	return &RedisDocumentRepository{client: client, prefix: prefix}
}

func (r *RedisDocumentRepository) key(kind entities.EntityKind, deviceID string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, kind, deviceID)
}

func (r *RedisDocumentRepository) Get(ctx context.Context, kind entities.EntityKind, deviceID string) ([]byte, error) {
	body, err := r.client.Get(ctx, r.key(kind, deviceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s document: %w", kind, err)
	}
	return body, nil
}

// Update runs fn inside an optimistic WATCH transaction and retries when
// another writer touched the key in between.
func (r *RedisDocumentRepository) Update(ctx context.Context, kind entities.EntityKind, deviceID string, fn func(current []byte) ([]byte, error)) error {
	key := r.key(kind, deviceID)

	var fnErr error
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			fnErr = err
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		fnErr = nil
		err := r.client.Watch(ctx, txf, key)
		if fnErr != nil {
			return fnErr
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("update %s document: %w", kind, err)
		}
		return nil
	}

	return fmt.Errorf("update %s document: gave up after %d concurrent write conflicts", kind, maxTxRetries)
}

func (r *RedisDocumentRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
