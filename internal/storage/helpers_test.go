package storage

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// newTestProvider opens a private in-memory database migrated to the latest schema.
func newTestProvider(t *testing.T) *SQLProvider {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	p, err := NewSQLiteProvider(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { p.Close() })

	if err := p.Migrate(context.Background(), -1); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return p
}

func mustCreateRoom(t *testing.T, p *SQLProvider, name string, capacity int) *Room {
	t.Helper()
	room := &Room{Name: name, MaxCapacity: capacity, Available: true}
	if err := p.CreateRoom(context.Background(), room); err != nil {
		t.Fatalf("create room %q: %v", name, err)
	}
	return room
}

func strPtr(s string) *string { return &s }
