package storage

import (
	"context"
	"testing"
)

func TestMigrateLatestVersion(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	latest, err := NewMigrationRunner(p.DB(), "sqlite3").GetLatestMigrationVersion()
	if err != nil {
		t.Fatalf("latest version: %v", err)
	}
	if latest < 2 {
		t.Fatalf("expected at least two migrations, got %d", latest)
	}

	version, err := p.GetSchemaVersion(ctx)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != latest {
		t.Errorf("schema version = %d, want %d", version, latest)
	}

	// Running again is a no-op
	if err := p.Migrate(ctx, -1); err != nil {
		t.Errorf("second migrate: %v", err)
	}
}

func TestMigrateDownAndUp(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	if err := p.Migrate(ctx, 0); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	version, _ := p.GetSchemaVersion(ctx)
	if version != 0 {
		t.Fatalf("version after rollback = %d, want 0", version)
	}
	if _, err := p.ListRooms(ctx, RoomFilter{}); err == nil {
		t.Fatal("expected rooms table to be gone")
	}

	if err := p.Migrate(ctx, -1); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if _, err := p.ListRooms(ctx, RoomFilter{}); err != nil {
		t.Fatalf("rooms table missing after re-migrate: %v", err)
	}
}

func TestSkipMigration(t *testing.T) {
	up := SchemaMigration{Version: 2, Up: true}
	down := SchemaMigration{Version: 2, Up: false}

	tests := []struct {
		name     string
		m        SchemaMigration
		current  int
		target   int
		wantSkip bool
	}{
		{"up in range", up, 1, 2, false},
		{"up already applied", up, 2, 3, true},
		{"up beyond target", up, 0, 1, true},
		{"down when going up", down, 1, 2, true},
		{"down in range", down, 2, 1, false},
		{"down below target", down, 2, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := skipMigration(tt.m, tt.current, tt.target); got != tt.wantSkip {
				t.Errorf("skipMigration() = %v, want %v", got, tt.wantSkip)
			}
		})
	}
}
