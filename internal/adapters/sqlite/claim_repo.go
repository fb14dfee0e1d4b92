package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// ClaimCodeRepository implements secondary.ClaimCodeRepository with
// SQLite.
type ClaimCodeRepository struct {
	db *sql.DB
}

// NewClaimCodeRepository creates a new SQLite claim code repository.
func NewClaimCodeRepository(db *sql.DB) *ClaimCodeRepository {
	return &ClaimCodeRepository{db: db}
}

const claimCodeColumns = "id, contributor_id, code, created_at, expires_at, used_at"

// Create persists a new claim code.
func (r *ClaimCodeRepository) Create(ctx context.Context, c *secondary.ClaimCodeRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO claim_codes (id, contributor_id, code, created_at, expires_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.ContributorID, c.Code, c.CreatedAt, c.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create claim code: %w", err)
	}
	return nil
}

// GetActive retrieves the contributor's newest unused, unexpired code,
// or ErrNotFound.
func (r *ClaimCodeRepository) GetActive(ctx context.Context, contributorID string, now time.Time) (*secondary.ClaimCodeRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+claimCodeColumns+" FROM claim_codes WHERE contributor_id = ? AND used_at IS NULL AND expires_at > ? ORDER BY created_at DESC, id DESC LIMIT 1",
		contributorID, now,
	)
	return scanClaimCode(row)
}

// MarkUsed stamps a code as consumed.
func (r *ClaimCodeRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE claim_codes SET used_at = ? WHERE id = ? AND used_at IS NULL",
		at, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark claim code used: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return secondary.ErrNotFound
	}
	return nil
}

// GetNextID returns the next available claim code ID.
func (r *ClaimCodeRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 7) AS INTEGER)), 0) FROM claim_codes",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to generate claim code ID: %w", err)
	}
	return fmt.Sprintf("CLAIM-%03d", maxID+1), nil
}

func scanClaimCode(row rowScanner) (*secondary.ClaimCodeRecord, error) {
	var usedAt sql.NullTime

	rec := &secondary.ClaimCodeRecord{}
	err := row.Scan(&rec.ID, &rec.ContributorID, &rec.Code, &rec.CreatedAt, &rec.ExpiresAt, &usedAt)
	if err == sql.ErrNoRows {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim code: %w", err)
	}

	if usedAt.Valid {
		t := usedAt.Time
		rec.UsedAt = &t
	}

	return rec, nil
}
