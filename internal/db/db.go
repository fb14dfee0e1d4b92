// Package db owns the SQLite connection and schema lifecycle.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var (
	db            *sql.DB
	dbInitialized bool
)

// GetDB returns the database connection, initializing it on first use.
// The database lives at $AGENTDB_PATH, or ~/.agentdb/agentdb.db by default.
func GetDB() (*sql.DB, error) {
	if db != nil {
		return db, nil
	}

	dbPath, err := GetDBPath()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err = Open(dbPath)
	if err != nil {
		return nil, err
	}

	if !dbInitialized {
		dbInitialized = true
		if err := InitSchema(db); err != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return db, nil
}

// Open opens a SQLite database at path with the pragmas the repositories
// rely on: foreign keys enforced and a bounded busy timeout so concurrent
// writers surface as transient errors instead of hanging.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return conn, nil
}

// Close closes the shared database connection.
func Close() error {
	if db != nil {
		err := db.Close()
		db = nil
		dbInitialized = false
		return err
	}
	return nil
}

// GetDBPath returns the path to the database file.
func GetDBPath() (string, error) {
	if p := os.Getenv("AGENTDB_PATH"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".agentdb", "agentdb.db"), nil
}
