package db

import (
	"database/sql"
	"fmt"
)

// Migration is a single versioned schema change.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations lists all schema changes in order. Fresh installs get the
// full SchemaSQL and record every version as applied.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "add_version_column_to_solutions",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_claim_codes_table",
		Up:      migrationV2,
	},
}

// RunMigrations applies any migrations newer than the recorded version.
// Each migration runs in its own transaction.
func RunMigrations(conn *sql.DB) error {
	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	if err := conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 adds the optimistic-concurrency version column used by the
// conditional solution counter update.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec("ALTER TABLE solutions ADD COLUMN version INTEGER NOT NULL DEFAULT 0")
	return err
}

// migrationV2 adds claim codes for the twitter identity flow.
func migrationV2(tx *sql.Tx) error {
	_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS claim_codes (
		id TEXT PRIMARY KEY,
		contributor_id TEXT NOT NULL,
		code TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME NOT NULL,
		used_at DATETIME,
		FOREIGN KEY (contributor_id) REFERENCES contributors(id)
	)`)
	return err
}
