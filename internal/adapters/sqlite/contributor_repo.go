package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// ContributorRepository implements secondary.ContributorRepository with
// SQLite.
type ContributorRepository struct {
	db *sql.DB
}

// NewContributorRepository creates a new SQLite contributor repository.
func NewContributorRepository(db *sql.DB) *ContributorRepository {
	return &ContributorRepository{db: db}
}

const contributorColumns = "id, name, type, reputation_score, coins, twitter_handle, verification_status, created_at, last_active_at"

// Create persists a new contributor.
func (r *ContributorRepository) Create(ctx context.Context, c *secondary.ContributorRecord) error {
	ctype := "agent"
	if c.Type != "" {
		ctype = c.Type
	}
	status := "unverified"
	if c.VerificationStatus != "" {
		status = c.VerificationStatus
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO contributors (id, name, type, reputation_score, coins, verification_status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.Name, ctype, c.ReputationScore, c.Coins, status, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return secondary.ErrDuplicate
		}
		return fmt.Errorf("failed to create contributor: %w", err)
	}

	return nil
}

// GetByID retrieves a contributor by ID.
func (r *ContributorRepository) GetByID(ctx context.Context, id string) (*secondary.ContributorRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+contributorColumns+" FROM contributors WHERE id = ?", id)
	return scanContributor(row)
}

// GetByName retrieves a contributor by unique name.
func (r *ContributorRepository) GetByName(ctx context.Context, name string) (*secondary.ContributorRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+contributorColumns+" FROM contributors WHERE name = ?", name)
	return scanContributor(row)
}

// IncrementCoins atomically adds amount to the balance and returns the
// new total.
func (r *ContributorRepository) IncrementCoins(ctx context.Context, id string, amount int) (int, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE contributors SET coins = coins + ? WHERE id = ?",
		amount, id,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to increment coins: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, secondary.ErrNotFound
	}

	var balance int
	if err := r.db.QueryRowContext(ctx, "SELECT coins FROM contributors WHERE id = ?", id).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to read coin balance: %w", err)
	}
	return balance, nil
}

// AddReputation atomically adjusts the reputation score, flooring at
// zero.
func (r *ContributorRepository) AddReputation(ctx context.Context, id string, delta int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE contributors SET reputation_score = MAX(0, reputation_score + ?) WHERE id = ?",
		delta, id,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust reputation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return secondary.ErrNotFound
	}
	return nil
}

// SetTwitterIdentity records a verified twitter handle.
func (r *ContributorRepository) SetTwitterIdentity(ctx context.Context, id, handle string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE contributors SET twitter_handle = ?, verification_status = 'verified' WHERE id = ?",
		handle, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set twitter identity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return secondary.ErrNotFound
	}
	return nil
}

// TouchLastActive updates the activity timestamp.
func (r *ContributorRepository) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE contributors SET last_active_at = ? WHERE id = ?",
		at, id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch contributor: %w", err)
	}
	return nil
}

// Leaderboard lists agent contributors by coins, richest first.
func (r *ContributorRepository) Leaderboard(ctx context.Context, limit int) ([]*secondary.ContributorRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+contributorColumns+" FROM contributors WHERE type = 'agent' ORDER BY coins DESC, name ASC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard: %w", err)
	}
	defer rows.Close()

	var contributors []*secondary.ContributorRecord
	for rows.Next() {
		rec, err := scanContributor(rows)
		if err != nil {
			return nil, err
		}
		contributors = append(contributors, rec)
	}

	return contributors, rows.Err()
}

// Count returns the number of contributors.
func (r *ContributorRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contributors").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count contributors: %w", err)
	}
	return count, nil
}

// GetNextID returns the next available contributor ID.
func (r *ContributorRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 7) AS INTEGER)), 0) FROM contributors",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to generate contributor ID: %w", err)
	}
	return fmt.Sprintf("AGENT-%03d", maxID+1), nil
}

func scanContributor(row rowScanner) (*secondary.ContributorRecord, error) {
	var (
		twitterHandle sql.NullString
		lastActiveAt  sql.NullTime
	)

	rec := &secondary.ContributorRecord{}
	err := row.Scan(&rec.ID, &rec.Name, &rec.Type, &rec.ReputationScore, &rec.Coins,
		&twitterHandle, &rec.VerificationStatus, &rec.CreatedAt, &lastActiveAt)
	if err == sql.ErrNoRows {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contributor: %w", err)
	}

	rec.TwitterHandle = twitterHandle.String
	if lastActiveAt.Valid {
		t := lastActiveAt.Time
		rec.LastActiveAt = &t
	}

	return rec, nil
}
