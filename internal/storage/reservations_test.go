package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestReservationRoundTrip(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	room := mustCreateRoom(t, p, "Lab 1", 4)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := &Reservation{RUT: "12345678-9", RoomID: room.ID, StartTime: start, EndTime: start.Add(2 * time.Hour)}
	if err := p.CreateReservation(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.ID == 0 {
		t.Fatal("expected id to be assigned")
	}

	got, err := p.GetReservation(ctx, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.StartTime.Equal(start) || !got.EndTime.Equal(start.Add(2*time.Hour)) {
		t.Errorf("times = %v..%v", got.StartTime, got.EndTime)
	}
	if got.RoomName != "Lab 1" {
		t.Errorf("room name = %q", got.RoomName)
	}

	got.RUT = "98765432-1"
	if err := p.UpdateReservation(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, _ := p.GetReservation(ctx, r.ID)
	if again.RUT != "98765432-1" || !again.EndTime.Equal(got.EndTime) {
		t.Errorf("update not persisted: %+v", again)
	}

	if err := p.DeleteReservation(ctx, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := p.DeleteReservation(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func TestReservationsEndingAfter(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	room := mustCreateRoom(t, p, "Lab 1", 4)
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	first := &Reservation{RUT: "1", RoomID: room.ID, StartTime: t0, EndTime: t0.Add(2 * time.Hour)}
	second := &Reservation{RUT: "2", RoomID: room.ID, StartTime: t0.Add(time.Hour), EndTime: t0.Add(3 * time.Hour)}
	for _, r := range []*Reservation{first, second} {
		if err := p.CreateReservation(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		at         time.Time
		wantActive bool
		wantID     int64
	}{
		{t0.Add(90 * time.Minute), true, second.ID},
		{t0.Add(2*time.Hour + 30*time.Minute), true, second.ID},
		// End bound is exclusive
		{t0.Add(3 * time.Hour), false, 0},
		{t0.Add(5 * time.Hour), false, 0},
	}
	for _, tt := range tests {
		active, err := p.HasReservationEndingAfter(ctx, room.ID, tt.at)
		if err != nil {
			t.Fatal(err)
		}
		if active != tt.wantActive {
			t.Errorf("at %v: active = %v, want %v", tt.at, active, tt.wantActive)
		}

		latest, err := p.LatestReservationEndingAfter(ctx, room.ID, tt.at)
		if tt.wantActive {
			if err != nil || latest.ID != tt.wantID {
				t.Errorf("at %v: latest = %+v, %v; want id %d", tt.at, latest, err, tt.wantID)
			}
		} else if !errors.Is(err, ErrNotFound) {
			t.Errorf("at %v: expected ErrNotFound, got %v", tt.at, err)
		}
	}
}

func TestListReservationsFilter(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	lab := mustCreateRoom(t, p, "Lab 1", 4)
	aud := mustCreateRoom(t, p, "Auditorio", 80)
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	for i, roomID := range []int64{lab.ID, aud.ID, lab.ID} {
		r := &Reservation{RUT: "11-1", RoomID: roomID, StartTime: t0.Add(time.Duration(i) * time.Hour), EndTime: t0.Add(time.Duration(i+2) * time.Hour)}
		if err := p.CreateReservation(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := p.ListReservations(ctx, ReservationFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || !all[0].StartTime.After(all[2].StartTime) {
		t.Errorf("expected newest first, got %+v", all)
	}

	byRoom, _ := p.ListReservations(ctx, ReservationFilter{RoomID: lab.ID})
	if len(byRoom) != 2 {
		t.Errorf("room filter: got %d, want 2", len(byRoom))
	}

	byName, _ := p.ListReservations(ctx, ReservationFilter{Search: "audit"})
	if len(byName) != 1 || byName[0].RoomName != "Auditorio" {
		t.Errorf("search filter: got %+v", byName)
	}
}
