package storage

import (
	"context"
	"fmt"
	"strings"
)

// ListRooms returns rooms ordered by name.
func (p *SQLProvider) ListRooms(ctx context.Context, filter RoomFilter) ([]Room, error) {
	var where []string
	var args []any

	if filter.Search != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, likePattern(filter.Search))
	}
	if filter.Available != nil {
		where = append(where, "available = ?")
		args = append(args, *filter.Available)
	}

	query := `SELECT id, name, max_capacity, available FROM rooms`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name, id"

	rooms := []Room{}
	if err := p.selectAll(ctx, &rooms, query, args...); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

func (p *SQLProvider) GetRoom(ctx context.Context, id int64) (*Room, error) {
	var room Room
	err := p.get(ctx, &room, `SELECT id, name, max_capacity, available FROM rooms WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (p *SQLProvider) CreateRoom(ctx context.Context, room *Room) error {
	id, err := p.insert(ctx,
		`INSERT INTO rooms (name, max_capacity, available) VALUES (?, ?, ?) RETURNING id`,
		room.Name, room.MaxCapacity, room.Available)
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	room.ID = id
	p.logger.Debug("Room created", "id", id, "name", room.Name)
	return nil
}

func (p *SQLProvider) UpdateRoomAvailability(ctx context.Context, id int64, available bool) error {
	return p.execOne(ctx, `UPDATE rooms SET available = ? WHERE id = ?`, available, id)
}

// DeleteRoom removes a room. Its reservations go with it through the foreign key.
func (p *SQLProvider) DeleteRoom(ctx context.Context, id int64) error {
	return p.execOne(ctx, `DELETE FROM rooms WHERE id = ?`, id)
}

// likePattern builds a case-insensitive substring pattern
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
