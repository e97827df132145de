package db

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/colonyops/folio/internal/core/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrSchemaTooNew is returned when the database was migrated by a newer
// build than this one.
var ErrSchemaTooNew = errors.New("database schema is newer than this build")

// Migration is one schema step with its forward and reverse SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

type direction string

const (
	up   direction = "up"
	down direction = "down"
)

// loadMigrations reads NNNN_name.{up,down}.sql files from the root of fsys
// and returns them ordered by version. Every version needs both halves.
func loadMigrations(fsys fs.FS) ([]Migration, error) {
	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, fname := range files {
		version, name, dir, err := parseFilename(fname)
		if err != nil {
			return nil, fmt.Errorf("invalid migration filename %q: %w", fname, err)
		}

		body, err := fs.ReadFile(fsys, fname)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fname, err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}

		half := &m.UpSQL
		if dir == down {
			half = &m.DownSQL
		}
		if *half != "" {
			return nil, fmt.Errorf("duplicate %s migration for version %04d", dir, version)
		}
		*half = string(body)
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		switch {
		case m.UpSQL == "":
			return nil, fmt.Errorf("migration %04d has no up file", m.Version)
		case m.DownSQL == "":
			return nil, fmt.Errorf("migration %04d has no down file", m.Version)
		}
		migrations = append(migrations, *m)
	}

	slices.SortFunc(migrations, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return migrations, nil
}

// embeddedMigrations returns the migrations compiled into the binary.
func embeddedMigrations() ([]Migration, error) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	return loadMigrations(sub)
}

// parseFilename splits "NNNN_name.up.sql" into its version, name and direction.
func parseFilename(filename string) (int, string, direction, error) {
	base := path.Base(filename)

	var dir direction
	switch {
	case strings.HasSuffix(base, ".up.sql"):
		dir, base = up, strings.TrimSuffix(base, ".up.sql")
	case strings.HasSuffix(base, ".down.sql"):
		dir, base = down, strings.TrimSuffix(base, ".down.sql")
	default:
		return 0, "", "", fmt.Errorf("expected .up.sql or .down.sql suffix, got %q", filename)
	}

	num, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return 0, "", "", fmt.Errorf("expected format NNNN_name.{up,down}.sql")
	}

	version, err := strconv.Atoi(num)
	if err != nil {
		return 0, "", "", fmt.Errorf("version %q is not a valid integer: %w", num, err)
	}
	if version <= 0 {
		return 0, "", "", fmt.Errorf("version must be positive, got %d", version)
	}

	return version, name, dir, nil
}

// migrateUp applies every pending migration in version order. A database
// carrying versions this build does not know fails with ErrSchemaTooNew.
func migrateUp(ctx context.Context, conn *sql.DB) error {
	migrations, applied, err := migrationState(ctx, conn)
	if err != nil {
		return err
	}

	known := make(map[int]bool, len(migrations))
	for _, m := range migrations {
		known[m.Version] = true
	}
	for v := range applied {
		if !known[v] {
			return fmt.Errorf("%w: version %04d is applied", ErrSchemaTooNew, v)
		}
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := step(ctx, conn, m, up); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown reverts the last n applied migrations, newest first.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	if n <= 0 {
		return fmt.Errorf("n must be positive, got %d", n)
	}

	migrations, applied, err := migrationState(ctx, conn)
	if err != nil {
		return err
	}

	var revert []Migration
	for _, m := range slices.Backward(migrations) {
		if applied[m.Version] {
			revert = append(revert, m)
		}
	}
	if n > len(revert) {
		return fmt.Errorf("requested %d down migrations but only %d are applied", n, len(revert))
	}

	for _, m := range revert[:n] {
		if err := step(ctx, conn, m, down); err != nil {
			return err
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version, or 0 for an
// empty database.
func SchemaVersion(ctx context.Context, conn *sql.DB) (int, error) {
	if err := ensureMigrationsTable(ctx, conn); err != nil {
		return 0, err
	}

	var v sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	return int(v.Int64), nil
}

func migrationState(ctx context.Context, conn *sql.DB) ([]Migration, map[int]bool, error) {
	migrations, err := embeddedMigrations()
	if err != nil {
		return nil, nil, fmt.Errorf("load migrations: %w", err)
	}
	if err := ensureMigrationsTable(ctx, conn); err != nil {
		return nil, nil, err
	}
	applied, err := appliedVersions(ctx, conn)
	if err != nil {
		return nil, nil, err
	}
	return migrations, applied, nil
}

func ensureMigrationsTable(ctx context.Context, conn *sql.DB) error {
	_, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func appliedVersions(ctx context.Context, conn *sql.DB) (map[int]bool, error) {
	rows, err := conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query applied versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// step runs one migration in dir and updates schema_migrations in the same
// transaction.
func step(ctx context.Context, conn *sql.DB, m Migration, dir direction) error {
	logging.Component("db").Info().
		Int("version", m.Version).
		Str("name", m.Name).
		Str("direction", string(dir)).
		Msg("running migration")

	body := m.UpSQL
	record := "INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)"
	args := []any{m.Version, m.Name, time.Now().UnixNano()}
	if dir == down {
		body = m.DownSQL
		record = "DELETE FROM schema_migrations WHERE version = ?"
		args = []any{m.Version}
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %04d (%s) %s: begin: %w", m.Version, m.Name, dir, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("migration %04d (%s) %s: %w", m.Version, m.Name, dir, err)
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("migration %04d (%s) %s: record: %w", m.Version, m.Name, dir, err)
	}
	return tx.Commit()
}
