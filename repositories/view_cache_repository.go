package repositories

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type RedisViewCacheRepository struct {
	redis *redis.Client
}

func NewRedisViewCacheRepository(redisClient *redis.Client) *RedisViewCacheRepository {
	return &RedisViewCacheRepository{redis: redisClient}
}

func (r *RedisViewCacheRepository) Invalidate(ctx context.Context, path string) error {
	return r.redis.Del(ctx, "view:"+path).Err()
}
