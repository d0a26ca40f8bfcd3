package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "ledgerly:session:"

// RedisCache stores session lookups in Redis with per-entry expiry.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

func NewRedisCache(options *redis.Options, prefix string, logger *slog.Logger) *RedisCache {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: redis.NewClient(options), prefix: prefix, logger: logger}
}

// Ping verifies the server is reachable.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) key(tokenHash string) string {
	return r.prefix + tokenHash
}

func (r *RedisCache) Get(ctx context.Context, tokenHash string) (uint, bool, error) {
	value, err := r.client.Get(ctx, r.key(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	userID, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		r.logger.Warn("redis session cache holds a malformed entry", "key", r.key(tokenHash))
		return 0, false, fmt.Errorf("parse cached user id: %w", err)
	}
	return uint(userID), true, nil
}

func (r *RedisCache) Set(ctx context.Context, tokenHash string, userID uint, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.key(tokenHash), strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, tokenHashes ...string) error {
	if len(tokenHashes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tokenHashes))
	for _, tokenHash := range tokenHashes {
		keys = append(keys, r.key(tokenHash))
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
