package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

var (
	// errSchemaTooNew is returned when a database was written by a newer binary.
	errSchemaTooNew = errors.New("schema version is newer than supported")
	// errSchemaOutdated is returned when a database needs migrations it does not have.
	errSchemaOutdated = errors.New("schema version is older than supported")
)

// migration is a single numbered up script.
type migration struct {
	version int
	name    string
}

// listMigrations returns the up migrations in fsys ordered by version.
func listMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var out []migration
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		out = append(out, migration{version: version, name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// schemaVersion returns the highest applied migration, or 0 when none ran.
func schemaVersion(db *sql.DB) (int, error) {
	var version int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("getting current version: %w", err)
	}
	return version, nil
}

func latestVersion(migrations []migration) int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].version
}

// checkSchema verifies db is at the latest version without writing to it.
func checkSchema(db *sql.DB, fsys fs.FS) error {
	var tables int
	row := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'")
	if err := row.Scan(&tables); err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}
	if tables == 0 {
		return fmt.Errorf("%w: no schema_migrations table", errSchemaOutdated)
	}

	current, err := schemaVersion(db)
	if err != nil {
		return err
	}
	migrations, err := listMigrations(fsys)
	if err != nil {
		return err
	}

	latest := latestVersion(migrations)
	switch {
	case current > latest:
		return fmt.Errorf("%w: database at %d, binary at %d", errSchemaTooNew, current, latest)
	case current < latest:
		return fmt.Errorf("%w: database at %d, binary at %d", errSchemaOutdated, current, latest)
	}
	return nil
}

// migrate runs all pending migrations, each in its own transaction.
func migrate(db *sql.DB, fsys fs.FS) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	current, err := schemaVersion(db)
	if err != nil {
		return err
	}

	migrations, err := listMigrations(fsys)
	if err != nil {
		return err
	}

	latest := latestVersion(migrations)
	if current > latest {
		return fmt.Errorf("%w: database at %d, binary at %d", errSchemaTooNew, current, latest)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, m.name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", m.name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", m.name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("executing migration %s: %w", m.name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("recording migration %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", m.name, err)
		}
	}

	return nil
}
