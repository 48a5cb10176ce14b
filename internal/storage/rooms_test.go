package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRoomsCRUD(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	b := mustCreateRoom(t, p, "Sala B", 10)
	a := mustCreateRoom(t, p, "Lab 1", 4)

	rooms, err := p.ListRooms(ctx, RoomFilter{})
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(rooms) != 2 || rooms[0].ID != a.ID || rooms[1].ID != b.ID {
		t.Fatalf("rooms not ordered by name: %+v", rooms)
	}

	if err := p.UpdateRoomAvailability(ctx, b.ID, false); err != nil {
		t.Fatalf("update availability: %v", err)
	}
	got, err := p.GetRoom(ctx, b.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if got.Available {
		t.Error("expected room to be unavailable")
	}
	if got.MaxCapacity != 10 {
		t.Errorf("capacity = %d, want 10", got.MaxCapacity)
	}

	if _, err := p.GetRoom(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("get unknown room: got %v, want ErrNotFound", err)
	}
	if err := p.UpdateRoomAvailability(ctx, 9999, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("update unknown room: got %v, want ErrNotFound", err)
	}
}

func TestListRoomsFilter(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	mustCreateRoom(t, p, "Lab 1", 4)
	lab2 := mustCreateRoom(t, p, "LAB 2", 4)
	mustCreateRoom(t, p, "Auditorio", 80)
	if err := p.UpdateRoomAvailability(ctx, lab2.ID, false); err != nil {
		t.Fatal(err)
	}

	rooms, err := p.ListRooms(ctx, RoomFilter{Search: "lab"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 2 {
		t.Errorf("search lab: got %d rooms, want 2", len(rooms))
	}

	available := true
	rooms, err = p.ListRooms(ctx, RoomFilter{Search: "lab", Available: &available})
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 1 || rooms[0].Name != "Lab 1" {
		t.Errorf("available lab rooms = %+v", rooms)
	}
}

func TestDeleteRoomCascadesReservations(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	room := mustCreateRoom(t, p, "Lab 1", 4)
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	r := &Reservation{RUT: "11111111-1", RoomID: room.ID, StartTime: start, EndTime: start.Add(2 * time.Hour)}
	if err := p.CreateReservation(ctx, r); err != nil {
		t.Fatalf("create reservation: %v", err)
	}

	if err := p.DeleteRoom(ctx, room.ID); err != nil {
		t.Fatalf("delete room: %v", err)
	}
	if _, err := p.GetReservation(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("reservation survived room deletion: %v", err)
	}
	if err := p.DeleteRoom(ctx, room.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}
