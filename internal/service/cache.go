package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/membership-portal-api/internal/observability"
)

func resultsCachePrefix(userID uint) string {
	return fmt.Sprintf("results:mine:v2:%d:", userID)
}

func resultsCacheKey(userID uint, page, pageSize int) string {
	return fmt.Sprintf("%s%d:%d", resultsCachePrefix(userID), page, pageSize)
}

func dashboardCacheKey(userID uint) string {
	return fmt.Sprintf("dashboard:v1:%d", userID)
}

// cacheGet decodes a cached JSON value into target and reports whether it was found.
func cacheGet(ctx context.Context, cache *redis.Client, name, key string, target interface{}) bool {
	if cache == nil {
		return false
	}
	cached, err := cache.Get(ctx, key).Result()
	if err != nil || cached == "" {
		observability.CacheRequests().WithLabelValues(name, "miss").Inc()
		return false
	}
	if err := json.Unmarshal([]byte(cached), target); err != nil {
		observability.CacheRequests().WithLabelValues(name, "miss").Inc()
		return false
	}
	observability.CacheRequests().WithLabelValues(name, "hit").Inc()
	return true
}

func cacheSet(ctx context.Context, cache *redis.Client, logger zerolog.Logger, key string, value interface{}, ttl time.Duration) {
	if cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := cache.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("failed to write cache")
	}
}

func cacheInvalidate(ctx context.Context, cache *redis.Client, logger zerolog.Logger, keys ...string) {
	if cache == nil || len(keys) == 0 {
		return
	}
	if err := cache.Del(ctx, keys...).Err(); err != nil {
		logger.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate cache")
	}
}

// cacheInvalidatePrefix removes every key that starts with prefix.
func cacheInvalidatePrefix(ctx context.Context, cache *redis.Client, logger zerolog.Logger, prefix string) {
	if cache == nil {
		return
	}
	iter := cache.Scan(ctx, 0, prefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warn().Err(err).Str("prefix", prefix).Msg("failed to scan cache keys")
		return
	}
	cacheInvalidate(ctx, cache, logger, keys...)
}
