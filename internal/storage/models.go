package storage

import "time"

type Room struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	MaxCapacity int    `db:"max_capacity"`
	// Cached result of the availability rule, refreshed whenever rooms are viewed.
	Available bool `db:"available"`
}

type Reservation struct {
	ID        int64     `db:"id"`
	RUT       string    `db:"rut"`
	RoomID    int64     `db:"room_id"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`

	// Populated by listing queries joining rooms
	RoomName string `db:"room_name"`
}

type ActorType string

const (
	ActorAdmin   ActorType = "ADMIN"
	ActorStudent ActorType = "STUDENT"
	ActorGuest   ActorType = "GUEST"
)

type Action string

const (
	ActionLogin       Action = "LOGIN"
	ActionLogout      Action = "LOGOUT"
	ActionReservation Action = "RESERVATION"
)

type AccessLogEntry struct {
	ID        int64     `db:"id"`
	ActorType ActorType `db:"actor_type"`
	Action    Action    `db:"action"`
	Username  *string   `db:"username"`
	RUT       *string   `db:"rut"`
	Career    *string   `db:"career"`
	Detail    *string   `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}

type StaffUser struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	IsStaff      bool      `db:"is_staff"`
	CreatedAt    time.Time `db:"created_at"`
}

type Session struct {
	ID        string    `db:"id"`
	Data      string    `db:"data"` // JSON encoded values
	ExpiresAt time.Time `db:"expires_at"`
}

// Listing filters used by the admin browser and CLI.

type RoomFilter struct {
	Search    string
	Available *bool
}

type ReservationFilter struct {
	Search string
	RoomID int64
}

type AccessLogFilter struct {
	ActorType ActorType
	Action    Action
	Search    string
	Limit     int
}
