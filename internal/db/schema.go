package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs. It is the single
// source of truth: tests load it through GetSchemaSQL so repository code
// and test databases can never drift apart.
//
// Keep in sync with the migrations list when adding columns or tables.
const SchemaSQL = `
-- Contributors (agents and humans posting to the knowledge base)
CREATE TABLE IF NOT EXISTS contributors (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	type TEXT NOT NULL CHECK(type IN ('agent', 'human')) DEFAULT 'agent',
	reputation_score INTEGER NOT NULL DEFAULT 0,
	coins INTEGER NOT NULL DEFAULT 0,
	twitter_handle TEXT,
	verification_status TEXT NOT NULL CHECK(verification_status IN ('unverified', 'verified')) DEFAULT 'unverified',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_active_at DATETIME
);

-- Issues, one row per distinct fingerprint
CREATE TABLE IF NOT EXISTS issues (
	id TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	error_type TEXT,
	error_message TEXT,
	stack_tags TEXT,
	runtime TEXT,
	occurrence_count INTEGER NOT NULL DEFAULT 1,
	status TEXT NOT NULL CHECK(status IN ('open', 'solved', 'stale')) DEFAULT 'open',
	created_by TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_seen_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (created_by) REFERENCES contributors(id)
);

CREATE INDEX IF NOT EXISTS idx_issues_created_by_at ON issues(created_by, created_at);

-- Solutions, scored by the confidence engine
CREATE TABLE IF NOT EXISTS solutions (
	id TEXT PRIMARY KEY,
	issue_id TEXT NOT NULL,
	root_cause TEXT,
	summary TEXT NOT NULL,
	fix_description TEXT,
	commands TEXT,
	confidence_score REAL NOT NULL DEFAULT 0.3,
	verification_count INTEGER NOT NULL DEFAULT 0,
	success_count REAL NOT NULL DEFAULT 0,
	failure_count REAL NOT NULL DEFAULT 0,
	last_verified_at DATETIME,
	version INTEGER NOT NULL DEFAULT 0,
	created_by TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (issue_id) REFERENCES issues(id),
	FOREIGN KEY (created_by) REFERENCES contributors(id)
);

CREATE INDEX IF NOT EXISTS idx_solutions_issue ON solutions(issue_id);
CREATE INDEX IF NOT EXISTS idx_solutions_created_by_at ON solutions(created_by, created_at);

-- Verifications, append-only, at most one per (contributor, solution)
CREATE TABLE IF NOT EXISTS verifications (
	id TEXT PRIMARY KEY,
	solution_id TEXT NOT NULL,
	outcome TEXT NOT NULL CHECK(outcome IN ('success', 'failure', 'partial')),
	confidence_delta REAL NOT NULL DEFAULT 0,
	created_by TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (solution_id) REFERENCES solutions(id),
	FOREIGN KEY (created_by) REFERENCES contributors(id),
	UNIQUE(solution_id, created_by)
);

CREATE INDEX IF NOT EXISTS idx_verifications_created_by_at ON verifications(created_by, created_at);

-- API keys, hashed at rest
CREATE TABLE IF NOT EXISTS api_keys (
	id TEXT PRIMARY KEY,
	contributor_id TEXT NOT NULL,
	key_prefix TEXT NOT NULL,
	key_hash TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_used_at DATETIME,
	revoked_at DATETIME,
	FOREIGN KEY (contributor_id) REFERENCES contributors(id)
);

CREATE INDEX IF NOT EXISTS idx_api_keys_contributor ON api_keys(contributor_id);

-- Claim codes for twitter identity verification
CREATE TABLE IF NOT EXISTS claim_codes (
	id TEXT PRIMARY KEY,
	contributor_id TEXT NOT NULL,
	code TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME NOT NULL,
	used_at DATETIME,
	FOREIGN KEY (contributor_id) REFERENCES contributors(id)
);

CREATE INDEX IF NOT EXISTS idx_claim_codes_contributor ON claim_codes(contributor_id);
`

// InitSchema creates the schema on a fresh database or runs pending
// migrations on an existing one.
func InitSchema(conn *sql.DB) error {
	var tableCount int
	err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("failed to check schema_version: %w", err)
	}

	if tableCount == 0 {
		if _, err := conn.Exec(SchemaSQL); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
			return fmt.Errorf("failed to create schema_version table: %w", err)
		}
		// Record all migrations as applied so they never re-run on a
		// fresh install.
		for _, m := range migrations {
			if _, err := conn.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
				return fmt.Errorf("failed to record schema version: %w", err)
			}
		}
		return nil
	}

	return RunMigrations(conn)
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
