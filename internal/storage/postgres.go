package storage

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// NewPostgresProvider connects through the pgx database/sql driver.
func NewPostgresProvider(dsn string) (*SQLProvider, error) {
	provider, err := NewSQLProvider("pgx", dsn, "postgres")
	if err != nil {
		return nil, err
	}

	provider.db.SetMaxOpenConns(10)
	provider.db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := provider.db.PingContext(ctx); err != nil {
		provider.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return provider, nil
}
