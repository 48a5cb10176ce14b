package storage

import (
	"context"
	"time"
)

func (p *SQLProvider) CreateNonce(ctx context.Context, nonce string, expiresAt time.Time) error {
	_, err := p.exec(ctx, `INSERT INTO nonces (nonce, expires_at) VALUES (?, ?)`, nonce, expiresAt.UTC())
	return err
}

func (p *SQLProvider) ExistsNonce(ctx context.Context, nonce string) (bool, error) {
	var count int
	err := p.get(ctx, &count, `SELECT COUNT(*) FROM nonces WHERE nonce = ? AND expires_at > ?`, nonce, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ConsumeNonce deletes an unexpired nonce, reporting whether it existed.
func (p *SQLProvider) ConsumeNonce(ctx context.Context, nonce string) (bool, error) {
	res, err := p.exec(ctx, `DELETE FROM nonces WHERE nonce = ? AND expires_at > ?`, nonce, time.Now().UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *SQLProvider) ExpireNonces(ctx context.Context, now time.Time) error {
	_, err := p.exec(ctx, `DELETE FROM nonces WHERE expires_at <= ?`, now.UTC())
	return err
}
