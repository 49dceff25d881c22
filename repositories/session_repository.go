package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisSessionRepository struct {
	redis *redis.Client
}

func NewRedisSessionRepository(redisClient *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{redis: redisClient}
}

func sessionKey(secret string) string {
	return "session:" + secret
}

func (r *RedisSessionRepository) Create(ctx context.Context, secret string, accountID string, ttl time.Duration) error {
	return r.redis.Set(ctx, sessionKey(secret), accountID, ttl).Err()
}

func (r *RedisSessionRepository) Resolve(ctx context.Context, secret string) (string, error) {
	accountID, err := r.redis.Get(ctx, sessionKey(secret)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return accountID, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, secret string) error {
	return r.redis.Del(ctx, sessionKey(secret)).Err()
}
