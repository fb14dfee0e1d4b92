// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for
// tests. All test setup functions use db.GetSchemaSQL() to ensure tests
// run against the authoritative schema, preventing drift between test
// and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use
// setupTestDB() and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agentoverflow/agentdb/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// This is the single shared test database setup function for all repository tests.
// Uses db.GetSchemaSQL() to prevent test schemas from drifting.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedContributor inserts a test contributor and returns its ID.
func seedContributor(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "AGENT-001"
	}
	if name == "" {
		name = "test-agent"
	}
	_, err := db.Exec("INSERT INTO contributors (id, name, type) VALUES (?, ?, 'agent')", id, name)
	if err != nil {
		t.Fatalf("failed to seed contributor: %v", err)
	}
	return id
}

// seedIssue inserts a test issue and returns its ID.
func seedIssue(t *testing.T, db *sql.DB, id, fingerprint, createdBy string) string {
	t.Helper()
	if id == "" {
		id = "ISS-001"
	}
	if fingerprint == "" {
		fingerprint = "fp-" + id
	}
	_, err := db.Exec(
		"INSERT INTO issues (id, fingerprint, title, created_by) VALUES (?, ?, 'Test Issue', ?)",
		id, fingerprint, nullable(createdBy),
	)
	if err != nil {
		t.Fatalf("failed to seed issue: %v", err)
	}
	return id
}

// seedSolution inserts a test solution and returns its ID.
func seedSolution(t *testing.T, db *sql.DB, id, issueID, createdBy string) string {
	t.Helper()
	if id == "" {
		id = "SOL-001"
	}
	if issueID == "" {
		issueID = "ISS-001"
	}
	_, err := db.Exec(
		"INSERT INTO solutions (id, issue_id, summary, created_by) VALUES (?, ?, 'Test Solution', ?)",
		id, issueID, nullable(createdBy),
	)
	if err != nil {
		t.Fatalf("failed to seed solution: %v", err)
	}
	return id
}

// backdateIssue rewrites an issue's created_at for quota window tests.
func backdateIssue(t *testing.T, db *sql.DB, id string, at time.Time) {
	t.Helper()
	if _, err := db.Exec("UPDATE issues SET created_at = ? WHERE id = ?", at, id); err != nil {
		t.Fatalf("failed to backdate issue: %v", err)
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
