package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const reservationColumns = `r.id, r.rut, r.room_id, r.start_time, r.end_time, s.name AS room_name`

func (p *SQLProvider) CreateReservation(ctx context.Context, reservation *Reservation) error {
	id, err := p.insert(ctx,
		`INSERT INTO reservations (rut, room_id, start_time, end_time) VALUES (?, ?, ?, ?) RETURNING id`,
		reservation.RUT, reservation.RoomID, reservation.StartTime.UTC(), reservation.EndTime.UTC())
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	reservation.ID = id
	return nil
}

// UpdateReservation writes the record as given; it derives nothing.
func (p *SQLProvider) UpdateReservation(ctx context.Context, reservation *Reservation) error {
	return p.execOne(ctx,
		`UPDATE reservations SET rut = ?, room_id = ?, start_time = ?, end_time = ? WHERE id = ?`,
		reservation.RUT, reservation.RoomID, reservation.StartTime.UTC(), reservation.EndTime.UTC(), reservation.ID)
}

func (p *SQLProvider) GetReservation(ctx context.Context, id int64) (*Reservation, error) {
	var reservation Reservation
	err := p.get(ctx, &reservation,
		`SELECT `+reservationColumns+` FROM reservations r JOIN rooms s ON s.id = r.room_id WHERE r.id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListReservations returns reservations newest first.
func (p *SQLProvider) ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error) {
	var where []string
	var args []any

	if filter.Search != "" {
		where = append(where, "(LOWER(r.rut) LIKE ? OR LOWER(s.name) LIKE ?)")
		pattern := likePattern(filter.Search)
		args = append(args, pattern, pattern)
	}
	if filter.RoomID != 0 {
		where = append(where, "r.room_id = ?")
		args = append(args, filter.RoomID)
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations r JOIN rooms s ON s.id = r.room_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.start_time DESC, r.id DESC"

	reservations := []Reservation{}
	if err := p.selectAll(ctx, &reservations, query, args...); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return reservations, nil
}

// HasReservationEndingAfter reports whether any reservation of the room ends strictly after t.
func (p *SQLProvider) HasReservationEndingAfter(ctx context.Context, roomID int64, t time.Time) (bool, error) {
	var count int
	err := p.get(ctx, &count,
		`SELECT COUNT(*) FROM reservations WHERE room_id = ? AND end_time > ?`, roomID, t.UTC())
	if err != nil {
		return false, fmt.Errorf("check active reservations: %w", err)
	}
	return count > 0, nil
}

// LatestReservationEndingAfter returns the reservation with the latest start among
// those of the room ending strictly after t, or ErrNotFound.
func (p *SQLProvider) LatestReservationEndingAfter(ctx context.Context, roomID int64, t time.Time) (*Reservation, error) {
	var reservation Reservation
	err := p.get(ctx, &reservation,
		`SELECT `+reservationColumns+` FROM reservations r JOIN rooms s ON s.id = r.room_id
WHERE r.room_id = ? AND r.end_time > ?
ORDER BY r.start_time DESC, r.id DESC LIMIT 1`, roomID, t.UTC())
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (p *SQLProvider) DeleteReservation(ctx context.Context, id int64) error {
	return p.execOne(ctx, `DELETE FROM reservations WHERE id = ?`, id)
}
