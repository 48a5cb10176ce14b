package nonce

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"room-reservation/internal/storage"
)

// Number of random bytes. 16 → 128‑bit
const NONCE_SIZE = 16

// How often janitors purge expired nonces
const DefaultPurgeInterval = time.Minute

type NonceStoreType string

// Supported nonce stores.
const (
	Memory NonceStoreType = "memory"
	SQL    NonceStoreType = "sql"
	Redis  NonceStoreType = "redis"
)

type NonceMissingError struct {
	Nonce string
}

// Error implements the error interface.
func (e *NonceMissingError) Error() string {
	return fmt.Sprintf("nonce not found: %s", e.Nonce)
}

type NonceExpiredError struct {
	Nonce  string
	Expiry time.Time
}

// Error implements the error interface.
func (e *NonceExpiredError) Error() string {
	return fmt.Sprintf("nonce expired: %s (expiry: %s)", e.Nonce, e.Expiry)
}

type NonceStoreInterface interface {
	// stores a nonce with a TTL.
	Put(ctx context.Context, nonce string, ttl time.Duration) error
	// verifies and deletes the nonce.
	// Returns true if the nonce existed (valid request), false otherwise.
	Consume(ctx context.Context, nonce string) (bool, error)

	Exists(ctx context.Context, nonce string) bool

	ExpireNonces(ctx context.Context) error

	// Close stops background work
	Close()
}

func generateNonceToken() (string, error) {
	b := make([]byte, NONCE_SIZE)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a nonce, stores it with ttl and returns it.
func New(ctx context.Context, store NonceStoreInterface, ttl time.Duration) (string, error) {
	nonce, err := generateNonceToken()
	if err != nil {
		return "", err
	}
	if err := store.Put(ctx, nonce, ttl); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}
	return nonce, nil
}

// NewStore builds the configured store and starts its janitor.
// The SQL store uses provider, the redis store uses rdb.
func NewStore(kind string, provider storage.Provider, rdb *redis.Client) (NonceStoreInterface, error) {
	var store NonceStoreInterface
	switch NonceStoreType(kind) {
	case "", Memory:
		ms := NewMemoryStore()
		go ms.janitor(DefaultPurgeInterval)
		store = ms
	case SQL:
		if provider == nil {
			return nil, fmt.Errorf("sql nonce store requires a storage provider")
		}
		ss := NewSQLNonceStore(provider)
		go ss.janitor(DefaultPurgeInterval)
		store = ss
	case Redis:
		if rdb == nil {
			return nil, fmt.Errorf("redis nonce store requires a redis client")
		}
		store = NewRedisStore(rdb)
	default:
		return nil, fmt.Errorf("unknown store type %q", kind)
	}

	slog.Info("Initialized nonce store", "type", kind)
	return store, nil
}
