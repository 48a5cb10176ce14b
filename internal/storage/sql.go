package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// SQLProvider implements Provider on top of any sqlx-compatible driver.
// Queries are written with '?' placeholders and rebound for the driver.
type SQLProvider struct {
	db *sqlx.DB

	// Name of the migrations directory for this dialect
	dialect string

	logger *slog.Logger
}

func NewSQLProvider(driverName string, dataSource string, dialect string) (*SQLProvider, error) {
	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}

	logger := slog.With("component", "storage", "driver", driverName)

	return &SQLProvider{
		db:      db,
		dialect: dialect,
		logger:  logger,
	}, nil
}

func (p *SQLProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// DB exposes the underlying handle, mostly for tests and maintenance commands.
func (p *SQLProvider) DB() *sqlx.DB {
	return p.db
}

func (p *SQLProvider) get(ctx context.Context, dest any, query string, args ...any) error {
	err := p.db.GetContext(ctx, dest, p.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (p *SQLProvider) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return p.db.SelectContext(ctx, dest, p.db.Rebind(query), args...)
}

func (p *SQLProvider) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return p.db.ExecContext(ctx, p.db.Rebind(query), args...)
}

// execOne runs a statement that must touch exactly one row.
func (p *SQLProvider) execOne(ctx context.Context, query string, args ...any) error {
	res, err := p.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// insert runs an INSERT ... RETURNING id statement.
func (p *SQLProvider) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := p.db.QueryRowxContext(ctx, p.db.Rebind(query), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
