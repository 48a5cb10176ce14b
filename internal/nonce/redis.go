package nonce

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "nonce:"

// RedisStore keeps nonces as keys with a TTL. Redis expires them itself.
type RedisStore struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{
		rdb:    rdb,
		logger: slog.With("component", "RedisNonceStore"),
	}
}

func (r *RedisStore) Put(ctx context.Context, nonce string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("ttl must be > 0")
	}
	return r.rdb.Set(ctx, redisKeyPrefix+nonce, 1, ttl).Err()
}

func (r *RedisStore) Consume(ctx context.Context, nonce string) (bool, error) {
	n, err := r.rdb.Del(ctx, redisKeyPrefix+nonce).Result()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, &NonceMissingError{Nonce: nonce}
	}
	return true, nil
}

func (r *RedisStore) Exists(ctx context.Context, nonce string) bool {
	n, err := r.rdb.Exists(ctx, redisKeyPrefix+nonce).Result()
	if err != nil {
		r.logger.Error("Failed to check nonce existence", "error", err)
		return false
	}
	return n > 0
}

func (r *RedisStore) ExpireNonces(ctx context.Context) error {
	return nil
}

// Close leaves the shared client open; its owner closes it.
func (r *RedisStore) Close() {}
