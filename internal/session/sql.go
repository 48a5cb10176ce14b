package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"room-reservation/internal/storage"
)

// SQLStore persists sessions in the sessions table of the storage provider.
type SQLStore struct {
	storage storage.Provider
	logger  *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

func NewSQLStore(provider storage.Provider) *SQLStore {
	return &SQLStore{
		storage: provider,
		logger:  slog.With("component", "SQLSessionStore"),
		stop:    make(chan struct{}),
	}
}

func (s *SQLStore) Load(ctx context.Context, id string) (Values, error) {
	row, err := s.storage.GetSession(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, err
	}
	return decode([]byte(row.Data))
}

func (s *SQLStore) Save(ctx context.Context, id string, values Values, ttl time.Duration) error {
	data, err := encode(values)
	if err != nil {
		return err
	}
	return s.storage.SaveSession(ctx, storage.Session{
		ID:        id,
		Data:      string(data),
		ExpiresAt: time.Now().Add(ttl),
	})
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	return s.storage.DeleteSession(ctx, id)
}

func (s *SQLStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.storage.ExpireSessions(context.Background(), time.Now()); err != nil {
				s.logger.Error("Failed to expire sessions", "error", err)
			}
		case <-s.stop:
			return
		}
	}
}

func (s *SQLStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}
