package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteProvider opens a SQLite database at path. Plain file paths get
// foreign keys, WAL and a busy timeout; "file:" DSNs are used as given.
func NewSQLiteProvider(path string) (*SQLProvider, error) {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:?_foreign_keys=on"
	} else if !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)
	}

	provider, err := NewSQLProvider("sqlite3", dsn, "sqlite3")
	if err != nil {
		return nil, err
	}

	// Single connection keeps SQLite writes serialized and in-memory databases alive.
	provider.db.SetMaxOpenConns(1)
	provider.db.SetMaxIdleConns(1)
	provider.db.SetConnMaxLifetime(0)

	if err := provider.db.Ping(); err != nil {
		provider.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return provider, nil
}
