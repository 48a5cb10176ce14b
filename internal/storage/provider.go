package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"room-reservation/internal/config"
)

type Provider interface {
	Close() error
	GetSchemaVersion(ctx context.Context) (int, error)
	Migrate(ctx context.Context, target int) error

	// Room methods
	ListRooms(ctx context.Context, filter RoomFilter) ([]Room, error)
	GetRoom(ctx context.Context, id int64) (*Room, error)
	CreateRoom(ctx context.Context, room *Room) error
	UpdateRoomAvailability(ctx context.Context, id int64, available bool) error
	DeleteRoom(ctx context.Context, id int64) error

	// Reservation methods
	CreateReservation(ctx context.Context, reservation *Reservation) error
	UpdateReservation(ctx context.Context, reservation *Reservation) error
	GetReservation(ctx context.Context, id int64) (*Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	HasReservationEndingAfter(ctx context.Context, roomID int64, t time.Time) (bool, error)
	LatestReservationEndingAfter(ctx context.Context, roomID int64, t time.Time) (*Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error

	// Access log methods
	CreateAccessLogEntry(ctx context.Context, entry *AccessLogEntry) error
	ListAccessLog(ctx context.Context, filter AccessLogFilter) ([]AccessLogEntry, error)

	// Staff credential methods
	CreateStaffUser(ctx context.Context, user *StaffUser) error
	GetStaffUser(ctx context.Context, username string) (*StaffUser, error)
	ListStaffUsers(ctx context.Context) ([]StaffUser, error)
	UpdateStaffPassword(ctx context.Context, username string, passwordHash string) error

	// Nonce-related methods
	CreateNonce(ctx context.Context, nonce string, expiresAt time.Time) error
	ExistsNonce(ctx context.Context, nonce string) (bool, error)
	ConsumeNonce(ctx context.Context, nonce string) (bool, error)
	ExpireNonces(ctx context.Context, now time.Time) error

	// Session methods
	GetSession(ctx context.Context, id string) (*Session, error)
	SaveSession(ctx context.Context, session Session) error
	DeleteSession(ctx context.Context, id string) error
	ExpireSessions(ctx context.Context, now time.Time) error
}

// Open connects to the configured database without touching the schema.
func Open(cfg *config.Storage) (Provider, error) {
	switch cfg.Type {
	case "", "sqlite":
		if cfg.SQLite == nil {
			return nil, fmt.Errorf("%w: sqlite selected without storage.local settings", ErrUnsupportedDriver)
		}
		return NewSQLiteProvider(cfg.SQLite.Path)
	case "postgres":
		if cfg.Postgres == nil || cfg.Postgres.DSN == "" {
			return nil, fmt.Errorf("%w: postgres selected without storage.postgres.dsn", ErrUnsupportedDriver)
		}
		return NewPostgresProvider(cfg.Postgres.DSN)
	default:
		slog.Error("Unsupported storage configuration", "type", cfg.Type)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, cfg.Type)
	}
}

// NewProvider opens the configured database and brings the schema to the latest version.
func NewProvider(ctx context.Context, cfg *config.Storage) (Provider, error) {
	provider, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := provider.Migrate(ctx, -1); err != nil {
		provider.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return provider, nil
}
