package nonce

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ---------------------------------------------------------------------------
// / In-memory implementation
// ---------------------------------------------------------------------------

// MemoryStore holds nonces in a map protected by a RWMutex.
// Expiration is handled by a background janitor goroutine.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[string]time.Time // value = expiry timestamp
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		stop:    make(chan struct{}),
	}
}

func (m *MemoryStore) Put(ctx context.Context, nonce string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("ttl must be > 0")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[nonce] = time.Now().Add(ttl)
	return nil
}

func (m *MemoryStore) Consume(ctx context.Context, nonce string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.entries[nonce]
	if !ok {
		return false, &NonceMissingError{Nonce: nonce}
	}
	delete(m.entries, nonce)
	if time.Now().After(exp) {
		return false, &NonceExpiredError{Nonce: nonce, Expiry: exp}
	}
	return true, nil
}

func (m *MemoryStore) Exists(ctx context.Context, nonce string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exp, ok := m.entries[nonce]
	return ok && !time.Now().After(exp)
}

func (m *MemoryStore) ExpireNonces(ctx context.Context) error {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, exp := range m.entries {
		if now.After(exp) {
			slog.Debug("Pruning expired nonce", "nonce", k)
			delete(m.entries, k)
		}
	}
	return nil
}

// janitor purges expired keys every interval until Close.
func (m *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.ExpireNonces(context.Background())
		case <-m.stop:
			return
		}
	}
}

// Close stops the janitor
func (m *MemoryStore) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}
