// Package storage persists rooms, reservations, the access log and session state.
//
// Schema changes are embedded SQL migrations under migrations/<dialect>/.
//
// Migration file naming and format
//   - Filenames must match the pattern: NNNN_name.up.sql or NNNN_name.down.sql
//     (regex: ^(?P<Version>\d{4})\_(?P<Name>[^.]+)\.(?P<Direction>(up|down))\.sql$).
//   - Version is a four-digit integer (e.g. 0001, 0002).
//   - Direction is either "up" (apply) or "down" (rollback).
//   - Applied versions are recorded in the schema_migrations table.
package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/**/*.sql
var migrationsFS embed.FS

var reMigrationFilename = regexp.MustCompile(`^(?P<Version>\d{4})\_(?P<Name>[^.]+)\.(?P<Direction>(up|down))\.sql$`)

var (
	ErrMigrateCurrentVersionSameAsTarget = errors.New("current version is the same as target version")
)

// SchemaMigration represents a single database migration
type SchemaMigration struct {
	Version int
	Name    string
	Up      bool
	SQL     string
}

// MigrationRunner handles database migrations
type MigrationRunner struct {
	db      *sqlx.DB
	dialect string
	logger  *slog.Logger
}

// NewMigrationRunner creates a new migration runner
func NewMigrationRunner(db *sqlx.DB, dialect string) *MigrationRunner {
	return &MigrationRunner{
		db:      db,
		dialect: dialect,
		logger:  slog.With("component", "migrations", "dialect", dialect),
	}
}

func (mr *MigrationRunner) dir() string {
	return path.Join("migrations", mr.dialect)
}

// readMigrations parses every migration file of the runner's dialect
func (mr *MigrationRunner) readMigrations() ([]SchemaMigration, error) {
	entries, err := migrationsFS.ReadDir(mr.dir())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, mr.dialect)
	}

	var migrations []SchemaMigration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		migration, err := parseMigrationFile(path.Join(mr.dir(), entry.Name()))
		if err != nil {
			mr.logger.Warn("Failed to parse migration file", "file", entry.Name(), "error", err)
			continue
		}
		migrations = append(migrations, migration)
	}
	return migrations, nil
}

// GetLatestMigrationVersion returns the highest "up" version available
func (mr *MigrationRunner) GetLatestMigrationVersion() (int, error) {
	migrations, err := mr.readMigrations()
	if err != nil {
		return -1, err
	}

	latestVersion := 0
	for _, migration := range migrations {
		if migration.Up && migration.Version > latestVersion {
			latestVersion = migration.Version
		}
	}
	return latestVersion, nil
}

// LoadMigrations returns the ordered migrations needed to move from prior to target.
// A target of -1 means the latest version, 0 the empty database.
func (mr *MigrationRunner) LoadMigrations(prior int, target int) ([]SchemaMigration, error) {
	if target == -1 {
		latestVersion, err := mr.GetLatestMigrationVersion()
		if err != nil {
			return nil, fmt.Errorf("failed to get latest migration version: %w", err)
		}
		target = latestVersion
	}

	if prior == target {
		return nil, ErrMigrateCurrentVersionSameAsTarget
	}

	all, err := mr.readMigrations()
	if err != nil {
		return nil, err
	}

	var selected []SchemaMigration
	for _, migration := range all {
		if skipMigration(migration, prior, target) {
			continue
		}
		selected = append(selected, migration)
	}

	if prior < target {
		sort.Slice(selected, func(i, j int) bool {
			return selected[i].Version < selected[j].Version
		})
	} else {
		sort.Slice(selected, func(i, j int) bool {
			return selected[i].Version > selected[j].Version
		})
	}

	mr.logger.Info("Loaded migrations", "count", len(selected), "from_version", prior, "to_version", target)
	return selected, nil
}

func skipMigration(migration SchemaMigration, currentVersion int, targetVersion int) bool {
	if targetVersion > currentVersion {
		// Going up: only up migrations in (current, target]
		return !migration.Up || migration.Version > targetVersion || migration.Version <= currentVersion
	}
	// Going down: only down migrations in (target, current]
	return migration.Up || migration.Version <= targetVersion || migration.Version > currentVersion
}

// parseMigrationFile parses a migration filename and reads its content
func parseMigrationFile(filePath string) (SchemaMigration, error) {
	filename := path.Base(filePath)
	filenameParts := reMigrationFilename.FindStringSubmatch(filename)
	if filenameParts == nil {
		return SchemaMigration{}, fmt.Errorf("invalid migration filename: %s", filename)
	}

	sql, err := migrationsFS.ReadFile(filePath)
	if err != nil {
		return SchemaMigration{}, fmt.Errorf("failed to read migration file: %w", err)
	}

	version, _ := strconv.Atoi(filenameParts[reMigrationFilename.SubexpIndex("Version")])
	return SchemaMigration{
		Version: version,
		Name:    filenameParts[reMigrationFilename.SubexpIndex("Name")],
		Up:      filenameParts[reMigrationFilename.SubexpIndex("Direction")] == "up",
		SQL:     string(sql),
	}, nil
}

func (mr *MigrationRunner) ensureVersionTable(ctx context.Context) error {
	_, err := mr.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at TIMESTAMP NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

// CurrentVersion returns the highest applied version, 0 for a fresh database.
func (mr *MigrationRunner) CurrentVersion(ctx context.Context) (int, error) {
	if err := mr.ensureVersionTable(ctx); err != nil {
		return -1, err
	}
	var version int
	err := mr.db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err != nil {
		return -1, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Run applies or rolls back migrations until target is reached.
func (mr *MigrationRunner) Run(ctx context.Context, target int) error {
	current, err := mr.CurrentVersion(ctx)
	if err != nil {
		return err
	}

	migrations, err := mr.LoadMigrations(current, target)
	if errors.Is(err, ErrMigrateCurrentVersionSameAsTarget) {
		mr.logger.Debug("Schema is up to date", "version", current)
		return nil
	} else if err != nil {
		return err
	}

	for _, migration := range migrations {
		if err := mr.apply(ctx, migration); err != nil {
			return err
		}
	}
	return nil
}

func (mr *MigrationRunner) apply(ctx context.Context, migration SchemaMigration) error {
	tx, err := mr.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %04d: %w", migration.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		return fmt.Errorf("apply migration %04d_%s: %w", migration.Version, migration.Name, err)
	}

	if migration.Up {
		_, err = tx.ExecContext(ctx, mr.db.Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`),
			migration.Version, time.Now().UTC())
	} else {
		_, err = tx.ExecContext(ctx, mr.db.Rebind(`DELETE FROM schema_migrations WHERE version = ?`), migration.Version)
	}
	if err != nil {
		return fmt.Errorf("record migration %04d: %w", migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %04d: %w", migration.Version, err)
	}
	mr.logger.Info("Applied migration", "version", migration.Version, "name", migration.Name, "up", migration.Up)
	return nil
}

func (p *SQLProvider) GetSchemaVersion(ctx context.Context) (int, error) {
	return NewMigrationRunner(p.db, p.dialect).CurrentVersion(ctx)
}

// Migrate moves the schema to target. -1 means latest.
func (p *SQLProvider) Migrate(ctx context.Context, target int) error {
	return NewMigrationRunner(p.db, p.dialect).Run(ctx, target)
}
