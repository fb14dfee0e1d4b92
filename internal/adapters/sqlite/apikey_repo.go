package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// APIKeyRepository implements secondary.APIKeyRepository with SQLite.
type APIKeyRepository struct {
	db *sql.DB
}

// NewAPIKeyRepository creates a new SQLite API key repository.
func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

const apiKeyColumns = "id, contributor_id, key_prefix, key_hash, created_at, last_used_at, revoked_at"

// Create persists a new key record.
func (r *APIKeyRepository) Create(ctx context.Context, k *secondary.APIKeyRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO api_keys (id, contributor_id, key_prefix, key_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		k.ID, k.ContributorID, k.KeyPrefix, k.KeyHash, k.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return secondary.ErrDuplicate
		}
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

// GetByHash retrieves a key by its hash, or ErrNotFound.
func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*secondary.APIKeyRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+apiKeyColumns+" FROM api_keys WHERE key_hash = ?", keyHash)
	return scanAPIKey(row)
}

// CountLive counts a contributor's unrevoked keys.
func (r *APIKeyRepository) CountLive(ctx context.Context, contributorID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM api_keys WHERE contributor_id = ? AND revoked_at IS NULL",
		contributorID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count live keys: %w", err)
	}
	return count, nil
}

// Revoke marks a key revoked at the given time. Revoking twice is a
// no-op on the original timestamp.
func (r *APIKeyRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE api_keys SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL",
		at, id,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM api_keys WHERE id = ?", id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to revoke api key: %w", err)
		}
		if exists == 0 {
			return secondary.ErrNotFound
		}
	}
	return nil
}

// TouchLastUsed updates the usage timestamp.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE api_keys SET last_used_at = ? WHERE id = ?",
		at, id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch api key: %w", err)
	}
	return nil
}

// ListByContributor lists a contributor's keys, newest first.
func (r *APIKeyRepository) ListByContributor(ctx context.Context, contributorID string) ([]*secondary.APIKeyRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+apiKeyColumns+" FROM api_keys WHERE contributor_id = ? ORDER BY created_at DESC, id DESC",
		contributorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*secondary.APIKeyRecord
	for rows.Next() {
		rec, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, rec)
	}

	return keys, rows.Err()
}

// GetNextID returns the next available key ID.
func (r *APIKeyRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM api_keys",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to generate api key ID: %w", err)
	}
	return fmt.Sprintf("KEY-%03d", maxID+1), nil
}

func scanAPIKey(row rowScanner) (*secondary.APIKeyRecord, error) {
	var lastUsedAt, revokedAt sql.NullTime

	rec := &secondary.APIKeyRecord{}
	err := row.Scan(&rec.ID, &rec.ContributorID, &rec.KeyPrefix, &rec.KeyHash,
		&rec.CreatedAt, &lastUsedAt, &revokedAt)
	if err == sql.ErrNoRows {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}

	if lastUsedAt.Valid {
		t := lastUsedAt.Time
		rec.LastUsedAt = &t
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		rec.RevokedAt = &t
	}

	return rec, nil
}
