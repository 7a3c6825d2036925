package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/core"
)

// RedisCache stores prediction results in Redis. Expiry is delegated to
// key TTLs, so there is no cleanup task.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(addr, password string, db int, prefix string, logger *zap.Logger) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCacheFromClient(rdb, prefix, logger), nil
}

// NewRedisCacheFromClient wraps an existing Redis client
func NewRedisCacheFromClient(rdb *redis.Client, prefix string, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		rdb:    rdb,
		prefix: prefix,
		logger: logger,
	}
}

func (c *RedisCache) key(id string) string {
	return c.prefix + id
}

// Get retrieves a stored prediction result
func (c *RedisCache) Get(ctx context.Context, id string) (*core.StoredResult, error) {
	data, err := c.rdb.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to query result cache: %w", err)
	}

	var result core.StoredResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}
	return &result, nil
}

// Set stores a prediction result until its expiry time
func (c *RedisCache) Set(ctx context.Context, result *core.StoredResult) error {
	ttl := time.Until(result.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("result %s already expired", result.ID)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key(result.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// Delete removes a stored result
func (c *RedisCache) Delete(ctx context.Context, id string) error {
	if err := c.rdb.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}

// Cleanup is a no-op, Redis expires keys itself
func (c *RedisCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis connection
func (c *RedisCache) Stop() {
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
	}
}
