package cache

import (
	"assignmentgateway/internal/logging"
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const tagPrefix = "assignmentgateway:tag:"

// RedisCache shares entries and the tag registry between gateway instances.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logRedisError(ctx, "get", key, err)
		}
		return nil, false
	}
	return val, true
}

func (r *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if ttl == KeepTTL {
		ttl = redis.KeepTTL
	}
	if err := r.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		logRedisError(ctx, "set", key, err)
	}
}

func (r *RedisCache) Delete(ctx context.Context, key string) {
	r.rdb.Del(ctx, key)
}

func (r *RedisCache) Tag(ctx context.Context, tag, key string) {
	if err := r.rdb.SAdd(ctx, tagPrefix+tag, key).Err(); err != nil {
		logRedisError(ctx, "tag", key, err)
	}
}

func (r *RedisCache) Untag(ctx context.Context, tag, key string) {
	if err := r.rdb.SRem(ctx, tagPrefix+tag, key).Err(); err != nil {
		logRedisError(ctx, "untag", key, err)
	}
}

func (r *RedisCache) Tagged(ctx context.Context, tag string) []string {
	keys, err := r.rdb.SMembers(ctx, tagPrefix+tag).Result()
	if err != nil {
		logRedisError(ctx, "tagged", tag, err)
		return nil
	}
	return keys
}

func logRedisError(ctx context.Context, op, key string, err error) {
	if logger, ok := logging.GetFromContext(ctx); ok {
		logger.Warn(ctx, "redis cache operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
	}
}
