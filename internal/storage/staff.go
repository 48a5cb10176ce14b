package storage

import (
	"context"
	"fmt"
	"time"
)

func (p *SQLProvider) CreateStaffUser(ctx context.Context, user *StaffUser) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	id, err := p.insert(ctx,
		`INSERT INTO staff_users (username, password_hash, is_staff, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		user.Username, user.PasswordHash, user.IsStaff, user.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("create staff user: %w", err)
	}
	user.ID = id
	return nil
}

func (p *SQLProvider) GetStaffUser(ctx context.Context, username string) (*StaffUser, error) {
	var user StaffUser
	err := p.get(ctx, &user,
		`SELECT id, username, password_hash, is_staff, created_at FROM staff_users WHERE username = ?`, username)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *SQLProvider) ListStaffUsers(ctx context.Context) ([]StaffUser, error) {
	users := []StaffUser{}
	err := p.selectAll(ctx, &users,
		`SELECT id, username, password_hash, is_staff, created_at FROM staff_users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list staff users: %w", err)
	}
	return users, nil
}

func (p *SQLProvider) UpdateStaffPassword(ctx context.Context, username string, passwordHash string) error {
	return p.execOne(ctx, `UPDATE staff_users SET password_hash = ? WHERE username = ?`, passwordHash, username)
}
