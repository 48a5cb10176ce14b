package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CreateAccessLogEntry appends an entry. CreatedAt defaults to the current time.
func (p *SQLProvider) CreateAccessLogEntry(ctx context.Context, entry *AccessLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	id, err := p.insert(ctx, `INSERT INTO access_log (actor_type, action, username, rut, career, detail, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		entry.ActorType, entry.Action, entry.Username, entry.RUT, entry.Career, entry.Detail, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create access log entry: %w", err)
	}
	entry.ID = id
	return nil
}

// ListAccessLog returns entries newest first.
func (p *SQLProvider) ListAccessLog(ctx context.Context, filter AccessLogFilter) ([]AccessLogEntry, error) {
	var where []string
	var args []any

	if filter.ActorType != "" {
		where = append(where, "actor_type = ?")
		args = append(args, filter.ActorType)
	}
	if filter.Action != "" {
		where = append(where, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.Search != "" {
		where = append(where, `(LOWER(COALESCE(username, '')) LIKE ? OR LOWER(COALESCE(rut, '')) LIKE ?
 OR LOWER(COALESCE(career, '')) LIKE ? OR LOWER(COALESCE(detail, '')) LIKE ?)`)
		pattern := likePattern(filter.Search)
		args = append(args, pattern, pattern, pattern, pattern)
	}

	query := `SELECT id, actor_type, action, username, rut, career, detail, created_at FROM access_log`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	entries := []AccessLogEntry{}
	if err := p.selectAll(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list access log: %w", err)
	}
	return entries, nil
}
