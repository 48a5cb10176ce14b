package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps encoded sessions in a map. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		stop:    make(chan struct{}),
	}
}

func (m *MemoryStore) Load(ctx context.Context, id string) (Values, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return nil, ErrSessionNotFound
	}
	return decode(entry.data)
}

func (m *MemoryStore) Save(ctx context.Context, id string, values Values, ttl time.Duration) error {
	data, err := encode(values)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{data: data, expires: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *MemoryStore) purge() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, entry := range m.entries {
		if now.After(entry.expires) {
			delete(m.entries, id)
		}
	}
}

func (m *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.purge()
		case <-m.stop:
			return
		}
	}
}

func (m *MemoryStore) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}
