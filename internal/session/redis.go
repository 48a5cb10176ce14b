package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions as keys with a TTL.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (r *RedisStore) Load(ctx context.Context, id string) (Values, error) {
	data, err := r.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, err
	}
	return decode(data)
}

func (r *RedisStore) Save(ctx context.Context, id string, values Values, ttl time.Duration) error {
	data, err := encode(values)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, redisKeyPrefix+id, data, ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, redisKeyPrefix+id).Err()
}

// Close leaves the shared client open; its owner closes it.
func (r *RedisStore) Close() {}
