// Package booking holds the reservation rules: the fixed two-hour window and
// the availability check that flags rooms with an active reservation.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"room-reservation/internal/storage"
)

// Duration is the length of every reservation.
const Duration = 2 * time.Hour

// Clock returns the current time. Tests replace it with a fixed value.
type Clock func() time.Time

// Store is the subset of storage.Provider the booking rules need.
type Store interface {
	ListRooms(ctx context.Context, filter storage.RoomFilter) ([]storage.Room, error)
	GetRoom(ctx context.Context, id int64) (*storage.Room, error)
	UpdateRoomAvailability(ctx context.Context, id int64, available bool) error
	CreateReservation(ctx context.Context, reservation *storage.Reservation) error
	UpdateReservation(ctx context.Context, reservation *storage.Reservation) error
	HasReservationEndingAfter(ctx context.Context, roomID int64, t time.Time) (bool, error)
	LatestReservationEndingAfter(ctx context.Context, roomID int64, t time.Time) (*storage.Reservation, error)
}

// Prepare applies the window rule to a reservation that has not been stored yet.
// Start defaults to now and end is always start plus Duration. Stored
// reservations are left untouched.
func Prepare(r *storage.Reservation, now time.Time) {
	if r.ID != 0 {
		return
	}
	if r.StartTime.IsZero() {
		r.StartTime = now
	}
	r.EndTime = r.StartTime.Add(Duration)
}

type Service struct {
	store  Store
	now    Clock
	logger *slog.Logger
}

func NewService(store Store, clock Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:  store,
		now:    clock,
		logger: slog.With("component", "booking"),
	}
}

// IsAvailable reports whether no reservation of the room ends after now.
func (s *Service) IsAvailable(ctx context.Context, roomID int64) (bool, error) {
	active, err := s.store.HasReservationEndingAfter(ctx, roomID, s.now())
	if err != nil {
		return false, err
	}
	return !active, nil
}

// refresh recomputes the cached flag of a room and writes it back when it changed.
func (s *Service) refresh(ctx context.Context, room *storage.Room) error {
	available, err := s.IsAvailable(ctx, room.ID)
	if err != nil {
		return fmt.Errorf("availability of room %d: %w", room.ID, err)
	}
	if available != room.Available {
		if err := s.store.UpdateRoomAvailability(ctx, room.ID, available); err != nil {
			return fmt.Errorf("update availability of room %d: %w", room.ID, err)
		}
		s.logger.Debug("Room availability changed", "room", room.ID, "available", available)
	}
	room.Available = available
	return nil
}

// RefreshRooms lists every room ordered by name with a freshly computed availability flag.
func (s *Service) RefreshRooms(ctx context.Context) ([]storage.Room, error) {
	rooms, err := s.store.ListRooms(ctx, storage.RoomFilter{})
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if err := s.refresh(ctx, &rooms[i]); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

// RefreshRoom loads one room and recomputes its availability.
func (s *Service) RefreshRoom(ctx context.Context, id int64) (*storage.Room, error) {
	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// ActiveReservation returns the latest-starting reservation of the room that
// is still running, or nil when there is none.
func (s *Service) ActiveReservation(ctx context.Context, roomID int64) (*storage.Reservation, error) {
	r, err := s.store.LatestReservationEndingAfter(ctx, roomID, s.now())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Book stores a new reservation starting now. Overlapping reservations are accepted.
func (s *Service) Book(ctx context.Context, rut string, roomID int64) (*storage.Reservation, error) {
	r := &storage.Reservation{RUT: rut, RoomID: roomID}
	if err := s.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Save inserts a new reservation through the window rule or updates an
// existing one as given.
func (s *Service) Save(ctx context.Context, r *storage.Reservation) error {
	if r.ID != 0 {
		return s.store.UpdateReservation(ctx, r)
	}
	Prepare(r, s.now())
	if err := s.store.CreateReservation(ctx, r); err != nil {
		return err
	}
	s.logger.Info("Reservation created", "id", r.ID, "room", r.RoomID, "start", r.StartTime, "end", r.EndTime)
	return nil
}
