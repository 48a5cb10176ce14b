package storage

import (
	"context"
	"testing"
	"time"
)

func TestAccessLogAppendAndList(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	entries := []*AccessLogEntry{
		{ActorType: ActorStudent, Action: ActionLogin, RUT: strPtr("11111111-1"), Career: strPtr("Informática"), Detail: strPtr("Inicio de sesión estudiante"), CreatedAt: t0},
		{ActorType: ActorAdmin, Action: ActionLogin, Username: strPtr("admin"), CreatedAt: t0.Add(time.Minute)},
		{ActorType: ActorGuest, Action: ActionReservation, RUT: strPtr("22"), Detail: strPtr("Reserva sala: Lab 1"), CreatedAt: t0.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := p.CreateAccessLogEntry(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := p.ListAccessLog(ctx, AccessLogFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	if all[0].ActorType != ActorGuest || all[2].ActorType != ActorStudent {
		t.Errorf("entries not newest first: %+v", all)
	}
	if all[1].RUT != nil || all[1].Career != nil {
		t.Errorf("absent fields should stay NULL: %+v", all[1])
	}

	admins, _ := p.ListAccessLog(ctx, AccessLogFilter{ActorType: ActorAdmin})
	if len(admins) != 1 || *admins[0].Username != "admin" {
		t.Errorf("actor filter: %+v", admins)
	}

	reservations, _ := p.ListAccessLog(ctx, AccessLogFilter{Action: ActionReservation})
	if len(reservations) != 1 {
		t.Errorf("action filter: got %d", len(reservations))
	}

	search, _ := p.ListAccessLog(ctx, AccessLogFilter{Search: "informát"})
	if len(search) != 1 || search[0].ActorType != ActorStudent {
		t.Errorf("search filter: %+v", search)
	}

	limited, _ := p.ListAccessLog(ctx, AccessLogFilter{Limit: 2})
	if len(limited) != 2 {
		t.Errorf("limit: got %d", len(limited))
	}
}

func TestAccessLogTimestampDefaultsToNow(t *testing.T) {
	p := newTestProvider(t)

	before := time.Now().Add(-time.Second)
	entry := &AccessLogEntry{ActorType: ActorGuest, Action: ActionReservation}
	if err := p.CreateAccessLogEntry(context.Background(), entry); err != nil {
		t.Fatal(err)
	}
	if entry.CreatedAt.Before(before) {
		t.Errorf("created_at = %v, expected current time", entry.CreatedAt)
	}
}
