package repositories

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisOTPRepository struct {
	redis *redis.Client
}

func NewRedisOTPRepository(redisClient *redis.Client) *RedisOTPRepository {
	return &RedisOTPRepository{redis: redisClient}
}

func otpKey(accountID string) string {
	return "otp:" + accountID
}

// Save replaces any outstanding passcode for the account. Issuing a fresh
// code always invalidates the previous one.
func (r *RedisOTPRepository) Save(ctx context.Context, accountID string, codeHash string, ttl time.Duration) error {
	key := otpKey(accountID)
	pipe := r.redis.TxPipeline()
	pipe.HSet(ctx, key, "hash", codeHash, "attempts", 0)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisOTPRepository) Get(ctx context.Context, accountID string) (string, int64, error) {
	vals, err := r.redis.HGetAll(ctx, otpKey(accountID)).Result()
	if err != nil {
		return "", 0, err
	}
	hash, ok := vals["hash"]
	if !ok {
		return "", 0, ErrOTPNotFound
	}
	attempts, _ := strconv.ParseInt(vals["attempts"], 10, 64)
	return hash, attempts, nil
}

func (r *RedisOTPRepository) IncrAttempts(ctx context.Context, accountID string) (int64, error) {
	key := otpKey(accountID)
	n, err := r.redis.HIncrBy(ctx, key, "attempts", 1).Result()
	if err != nil {
		return 0, err
	}
	// HIncrBy recreates the hash without a TTL when the code expired in
	// between; drop the orphan instead of leaving a permanent key.
	ttl, err := r.redis.TTL(ctx, key).Result()
	if err == nil && ttl < 0 {
		r.redis.Del(ctx, key)
		return 0, ErrOTPNotFound
	}
	return n, nil
}

func (r *RedisOTPRepository) Delete(ctx context.Context, accountID string) error {
	return r.redis.Del(ctx, otpKey(accountID)).Err()
}
