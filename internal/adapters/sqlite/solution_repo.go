package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// SolutionRepository implements secondary.SolutionRepository with SQLite.
type SolutionRepository struct {
	db *sql.DB
}

// NewSolutionRepository creates a new SQLite solution repository.
func NewSolutionRepository(db *sql.DB) *SolutionRepository {
	return &SolutionRepository{db: db}
}

const solutionColumns = "id, issue_id, root_cause, summary, fix_description, commands, confidence_score, verification_count, success_count, failure_count, last_verified_at, version, created_by, created_at"

// Create persists a new solution.
func (r *SolutionRepository) Create(ctx context.Context, solution *secondary.SolutionRecord) error {
	var rootCause, fixDescription, commands, createdBy sql.NullString
	if solution.RootCause != "" {
		rootCause = sql.NullString{String: solution.RootCause, Valid: true}
	}
	if solution.FixDescription != "" {
		fixDescription = sql.NullString{String: solution.FixDescription, Valid: true}
	}
	if solution.Commands != "" {
		commands = sql.NullString{String: solution.Commands, Valid: true}
	}
	if solution.CreatedBy != "" {
		createdBy = sql.NullString{String: solution.CreatedBy, Valid: true}
	}

	// An unset score falls back to the schema's unproven prior.
	score := sql.NullFloat64{Float64: solution.ConfidenceScore, Valid: solution.ConfidenceScore != 0}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO solutions (id, issue_id, root_cause, summary, fix_description, commands, confidence_score, verification_count, success_count, failure_count, version, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?, COALESCE(?, 0.3), 0, 0, 0, 0, ?, ?)",
		solution.ID, solution.IssueID, rootCause, solution.Summary, fixDescription, commands, score, createdBy, solution.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create solution: %w", err)
	}

	return nil
}

// GetByID retrieves a solution by its ID.
func (r *SolutionRepository) GetByID(ctx context.Context, id string) (*secondary.SolutionRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+solutionColumns+" FROM solutions WHERE id = ?", id)
	return scanSolution(row)
}

// ListByIssue retrieves an issue's solutions, highest confidence first.
func (r *SolutionRepository) ListByIssue(ctx context.Context, issueID string) ([]*secondary.SolutionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+solutionColumns+" FROM solutions WHERE issue_id = ? ORDER BY confidence_score DESC, created_at ASC",
		issueID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list solutions: %w", err)
	}
	defer rows.Close()

	var solutions []*secondary.SolutionRecord
	for rows.Next() {
		rec, err := scanSolution(rows)
		if err != nil {
			return nil, err
		}
		solutions = append(solutions, rec)
	}

	return solutions, rows.Err()
}

// UpdateScore applies the post-verification counters only when the stored
// version still matches, bumping the version on success. This is the
// optimistic-concurrency half of the verification hot path; the caller
// retries with fresh counters when it returns false.
func (r *SolutionRepository) UpdateScore(ctx context.Context, id string, expectedVersion int64, upd secondary.ScoreUpdate) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE solutions SET
			verification_count = ?,
			success_count = ?,
			failure_count = ?,
			confidence_score = ?,
			last_verified_at = ?,
			version = version + 1
		WHERE id = ? AND version = ?`,
		upd.VerificationCount, upd.SuccessCount, upd.FailureCount, upd.ConfidenceScore, upd.LastVerifiedAt,
		id, expectedVersion,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update solution score: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	return n == 1, nil
}

// CountCreatedSince counts a contributor's solutions created at or after
// the cutoff.
func (r *SolutionRepository) CountCreatedSince(ctx context.Context, contributorID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM solutions WHERE created_by = ? AND created_at >= ?",
		contributorID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count solutions: %w", err)
	}
	return count, nil
}

// LastCreatedAt returns the creation time of the contributor's most
// recent solution.
func (r *SolutionRepository) LastCreatedAt(ctx context.Context, contributorID string) (*time.Time, error) {
	var at time.Time
	err := r.db.QueryRowContext(ctx,
		"SELECT created_at FROM solutions WHERE created_by = ? ORDER BY created_at DESC LIMIT 1",
		contributorID,
	).Scan(&at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last solution time: %w", err)
	}
	return &at, nil
}

// FindRecentBySummary returns the ID of a solution with an identical
// summary posted by the contributor since the cutoff, or "".
func (r *SolutionRepository) FindRecentBySummary(ctx context.Context, contributorID, summary string, since time.Time) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM solutions WHERE created_by = ? AND summary = ? AND created_at >= ? LIMIT 1",
		contributorID, summary, since,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check duplicate solution: %w", err)
	}
	return id, nil
}

// GetNextID returns the next available solution ID.
func (r *SolutionRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM solutions",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to generate solution ID: %w", err)
	}
	return fmt.Sprintf("SOL-%03d", maxID+1), nil
}

func scanSolution(row rowScanner) (*secondary.SolutionRecord, error) {
	var (
		rootCause      sql.NullString
		fixDescription sql.NullString
		commands       sql.NullString
		lastVerifiedAt sql.NullTime
		createdBy      sql.NullString
	)

	rec := &secondary.SolutionRecord{}
	err := row.Scan(&rec.ID, &rec.IssueID, &rootCause, &rec.Summary, &fixDescription, &commands,
		&rec.ConfidenceScore, &rec.VerificationCount, &rec.SuccessCount, &rec.FailureCount,
		&lastVerifiedAt, &rec.Version, &createdBy, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get solution: %w", err)
	}

	rec.RootCause = rootCause.String
	rec.FixDescription = fixDescription.String
	rec.Commands = commands.String
	if lastVerifiedAt.Valid {
		t := lastVerifiedAt.Time
		rec.LastVerifiedAt = &t
	}
	rec.CreatedBy = createdBy.String

	return rec, nil
}
