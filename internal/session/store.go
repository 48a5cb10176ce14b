// Package session keeps server-side state for anonymous visitors, keyed by a
// signed cookie. Students log in by storing their RUT and career here.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"room-reservation/internal/storage"
)

var ErrSessionNotFound = errors.New("session not found")

// How often janitors purge expired sessions
const DefaultPurgeInterval = 10 * time.Minute

// Values stored in a session. Must be JSON encodable.
type Values map[string]any

type Store interface {
	// Load returns the values of an unexpired session or ErrSessionNotFound.
	Load(ctx context.Context, id string) (Values, error)
	Save(ctx context.Context, id string, values Values, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Close()
}

func encode(values Values) ([]byte, error) {
	return json.Marshal(values)
}

func decode(data []byte) (Values, error) {
	values := Values{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return values, nil
}

// NewStore builds the configured backend: memory, sql or redis.
func NewStore(kind string, provider storage.Provider, rdb *redis.Client) (Store, error) {
	var store Store
	switch kind {
	case "", "memory":
		ms := NewMemoryStore()
		go ms.janitor(DefaultPurgeInterval)
		store = ms
	case "sql":
		if provider == nil {
			return nil, errors.New("sql session store requires a storage provider")
		}
		ss := NewSQLStore(provider)
		go ss.janitor(DefaultPurgeInterval)
		store = ss
	case "redis":
		if rdb == nil {
			return nil, errors.New("redis session store requires a redis client")
		}
		store = NewRedisStore(rdb)
	default:
		return nil, fmt.Errorf("unknown session store %q", kind)
	}
	slog.Info("Initialized session store", "type", kind)
	return store, nil
}
