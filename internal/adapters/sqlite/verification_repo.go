package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// VerificationRepository implements secondary.VerificationRepository with
// SQLite. Verification rows are append-only.
type VerificationRepository struct {
	db *sql.DB
}

// NewVerificationRepository creates a new SQLite verification repository.
func NewVerificationRepository(db *sql.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// NewVerificationID mints a random verification ID. Verifications are
// created concurrently, so sequential max-scan IDs would race; a random
// suffix keeps inserts conflict-free.
func NewVerificationID() string {
	buf := make([]byte, 6)
	rand.Read(buf)
	return "VER-" + hex.EncodeToString(buf)
}

// NewID mints a random verification ID.
func (r *VerificationRepository) NewID() string {
	return NewVerificationID()
}

// Create persists a verification. The UNIQUE(solution_id, created_by)
// index is the storage-level backstop for the one-verification-per-pair
// invariant; violations surface as secondary.ErrDuplicate.
func (r *VerificationRepository) Create(ctx context.Context, v *secondary.VerificationRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO verifications (id, solution_id, outcome, confidence_delta, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		v.ID, v.SolutionID, v.Outcome, v.ConfidenceDelta, v.CreatedBy, v.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return secondary.ErrDuplicate
		}
		return fmt.Errorf("failed to create verification: %w", err)
	}
	return nil
}

// SetConfidenceDelta backfills the confidence movement attributed to a
// verification.
func (r *VerificationRepository) SetConfidenceDelta(ctx context.Context, id string, delta float64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE verifications SET confidence_delta = ? WHERE id = ?",
		delta, id,
	)
	if err != nil {
		return fmt.Errorf("failed to record confidence delta: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return secondary.ErrNotFound
	}
	return nil
}

// ExistsForPair reports whether the contributor already verified the
// solution.
func (r *VerificationRepository) ExistsForPair(ctx context.Context, contributorID, solutionID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM verifications WHERE created_by = ? AND solution_id = ?",
		contributorID, solutionID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check verification pair: %w", err)
	}
	return count > 0, nil
}

// ListBySolution retrieves a solution's verifications, newest first.
func (r *VerificationRepository) ListBySolution(ctx context.Context, solutionID string) ([]*secondary.VerificationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, solution_id, outcome, confidence_delta, created_by, created_at FROM verifications WHERE solution_id = ? ORDER BY created_at DESC",
		solutionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}
	defer rows.Close()

	var verifications []*secondary.VerificationRecord
	for rows.Next() {
		rec := &secondary.VerificationRecord{}
		if err := rows.Scan(&rec.ID, &rec.SolutionID, &rec.Outcome, &rec.ConfidenceDelta, &rec.CreatedBy, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan verification: %w", err)
		}
		verifications = append(verifications, rec)
	}

	return verifications, rows.Err()
}

// CountCreatedSince counts a contributor's verifications created at or
// after the cutoff.
func (r *VerificationRepository) CountCreatedSince(ctx context.Context, contributorID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM verifications WHERE created_by = ? AND created_at >= ?",
		contributorID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count verifications: %w", err)
	}
	return count, nil
}

// LastCreatedAt returns the creation time of the contributor's most
// recent verification.
func (r *VerificationRepository) LastCreatedAt(ctx context.Context, contributorID string) (*time.Time, error) {
	var at time.Time
	err := r.db.QueryRowContext(ctx,
		"SELECT created_at FROM verifications WHERE created_by = ? ORDER BY created_at DESC LIMIT 1",
		contributorID,
	).Scan(&at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last verification time: %w", err)
	}
	return &at, nil
}
