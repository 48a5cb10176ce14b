package storage

import (
	"context"
	"time"
)

// GetSession returns an unexpired session or ErrNotFound.
func (p *SQLProvider) GetSession(ctx context.Context, id string) (*Session, error) {
	var session Session
	err := p.get(ctx, &session,
		`SELECT id, data, expires_at FROM sessions WHERE id = ? AND expires_at > ?`, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (p *SQLProvider) SaveSession(ctx context.Context, session Session) error {
	_, err := p.exec(ctx, `INSERT INTO sessions (id, data, expires_at) VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		session.ID, session.Data, session.ExpiresAt.UTC())
	return err
}

func (p *SQLProvider) DeleteSession(ctx context.Context, id string) error {
	_, err := p.exec(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (p *SQLProvider) ExpireSessions(ctx context.Context, now time.Time) error {
	_, err := p.exec(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UTC())
	return err
}
