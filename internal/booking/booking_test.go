package booking

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"room-reservation/internal/storage"
)

func newStore(t *testing.T) *storage.SQLProvider {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	p, err := storage.NewSQLiteProvider(fmt.Sprintf("file:booking_%s?mode=memory&cache=shared&_foreign_keys=on", name))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })
	if err := p.Migrate(context.Background(), -1); err != nil {
		t.Fatal(err)
	}
	return p
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPrepareSetsWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	r := &storage.Reservation{EndTime: now.Add(10 * time.Hour)}
	Prepare(r, now)
	if !r.StartTime.Equal(now) {
		t.Errorf("start = %v, want %v", r.StartTime, now)
	}
	if !r.EndTime.Equal(now.Add(Duration)) {
		t.Errorf("caller supplied end not overridden: %v", r.EndTime)
	}

	start := now.Add(-time.Hour)
	r = &storage.Reservation{StartTime: start}
	Prepare(r, now)
	if !r.EndTime.Equal(start.Add(Duration)) {
		t.Errorf("end = %v, want start+2h", r.EndTime)
	}
}

func TestPrepareKeepsStoredReservation(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	end := now.Add(30 * time.Minute)
	r := &storage.Reservation{ID: 7, StartTime: now, EndTime: end}
	Prepare(r, now.Add(time.Hour))
	if !r.EndTime.Equal(end) || !r.StartTime.Equal(now) {
		t.Errorf("stored reservation was modified: %+v", r)
	}
}

// A room booked at 10:00 is unavailable until exactly 12:00.
func TestAvailabilityTimeline(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewService(store, clock.Now)

	room := &storage.Room{Name: "Lab 1", MaxCapacity: 4, Available: true}
	if err := store.CreateRoom(ctx, room); err != nil {
		t.Fatal(err)
	}

	r, err := svc.Book(ctx, "11111111-1", room.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if !r.EndTime.Equal(r.StartTime.Add(2 * time.Hour)) {
		t.Errorf("end = %v, want start+2h", r.EndTime)
	}

	steps := []struct {
		advance   time.Duration
		available bool
	}{
		{0, false},
		{90 * time.Minute, false},
		{30*time.Minute - time.Nanosecond, false},
		{time.Nanosecond, true},
		{time.Hour, true},
	}
	for _, step := range steps {
		clock.Advance(step.advance)
		got, err := svc.RefreshRoom(ctx, room.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Available != step.available {
			t.Errorf("at %s: available = %v, want %v", clock.t.Format(time.TimeOnly), got.Available, step.available)
		}
		stored, _ := store.GetRoom(ctx, room.ID)
		if stored.Available != step.available {
			t.Errorf("at %s: cached flag not written back", clock.t.Format(time.TimeOnly))
		}
	}
}

func TestRefreshRoomsCountsAvailable(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewService(store, clock.Now)

	var ids []int64
	for _, name := range []string{"C", "A", "B"} {
		room := &storage.Room{Name: name, MaxCapacity: 2, Available: true}
		if err := store.CreateRoom(ctx, room); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, room.ID)
	}
	if _, err := svc.Book(ctx, "1", ids[0]); err != nil {
		t.Fatal(err)
	}

	rooms, err := svc.RefreshRooms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rooms[0].Name != "A" || rooms[2].Name != "C" {
		t.Errorf("rooms not ordered by name")
	}
	available := 0
	for _, room := range rooms {
		if room.Available {
			available++
		}
	}
	if available != 2 {
		t.Errorf("available = %d, want 2", available)
	}
}

func TestOverlappingBookingsAccepted(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewService(store, clock.Now)

	room := &storage.Room{Name: "Lab 1", MaxCapacity: 4, Available: true}
	if err := store.CreateRoom(ctx, room); err != nil {
		t.Fatal(err)
	}

	first, err := svc.Book(ctx, "1", room.ID)
	if err != nil {
		t.Fatal(err)
	}
	clock.Advance(30 * time.Minute)
	second, err := svc.Book(ctx, "2", room.ID)
	if err != nil {
		t.Fatalf("overlapping booking rejected: %v", err)
	}

	all, _ := store.ListReservations(ctx, storage.ReservationFilter{RoomID: room.ID})
	if len(all) != 2 {
		t.Fatalf("got %d reservations, want 2", len(all))
	}

	active, err := svc.ActiveReservation(ctx, room.ID)
	if err != nil {
		t.Fatal(err)
	}
	if active == nil || active.ID != second.ID {
		t.Errorf("active reservation = %+v, want latest start %d (first %d)", active, second.ID, first.ID)
	}
}

func TestSaveExistingDoesNotRecomputeEnd(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewService(store, clock.Now)

	room := &storage.Room{Name: "Lab 1", MaxCapacity: 4, Available: true}
	if err := store.CreateRoom(ctx, room); err != nil {
		t.Fatal(err)
	}
	r, err := svc.Book(ctx, "1", room.ID)
	if err != nil {
		t.Fatal(err)
	}

	r.StartTime = r.StartTime.Add(time.Hour)
	end := r.EndTime
	if err := svc.Save(ctx, r); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetReservation(ctx, r.ID)
	if !got.EndTime.Equal(end) {
		t.Errorf("end recomputed on update: %v, want %v", got.EndTime, end)
	}
}

func TestActiveReservationNone(t *testing.T) {
	store := newStore(t)
	svc := NewService(store, nil)

	room := &storage.Room{Name: "Lab 1", MaxCapacity: 4, Available: true}
	if err := store.CreateRoom(context.Background(), room); err != nil {
		t.Fatal(err)
	}
	active, err := svc.ActiveReservation(context.Background(), room.ID)
	if err != nil || active != nil {
		t.Errorf("expected no active reservation, got %+v, %v", active, err)
	}
}
