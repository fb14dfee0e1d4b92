// Package sqlite contains SQLite implementations of the repository
// interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// IssueRepository implements secondary.IssueRepository with SQLite.
type IssueRepository struct {
	db *sql.DB
}

// NewIssueRepository creates a new SQLite issue repository.
func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

const issueColumns = "id, fingerprint, title, error_type, error_message, stack_tags, runtime, occurrence_count, status, created_by, created_at, last_seen_at"

// Create persists a new issue.
func (r *IssueRepository) Create(ctx context.Context, issue *secondary.IssueRecord) error {
	var errorType, errorMessage, stackTags, runtime, createdBy sql.NullString
	if issue.ErrorType != "" {
		errorType = sql.NullString{String: issue.ErrorType, Valid: true}
	}
	if issue.ErrorMessage != "" {
		errorMessage = sql.NullString{String: issue.ErrorMessage, Valid: true}
	}
	if len(issue.StackTags) > 0 {
		stackTags = sql.NullString{String: strings.Join(issue.StackTags, ","), Valid: true}
	}
	if issue.Runtime != "" {
		runtime = sql.NullString{String: issue.Runtime, Valid: true}
	}
	if issue.CreatedBy != "" {
		createdBy = sql.NullString{String: issue.CreatedBy, Valid: true}
	}

	status := "open"
	if issue.Status != "" {
		status = issue.Status
	}
	occurrences := issue.OccurrenceCount
	if occurrences < 1 {
		occurrences = 1
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO issues (id, fingerprint, title, error_type, error_message, stack_tags, runtime, occurrence_count, status, created_by, created_at, last_seen_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		issue.ID, issue.Fingerprint, issue.Title, errorType, errorMessage, stackTags, runtime, occurrences, status, createdBy, issue.CreatedAt, issue.LastSeenAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return secondary.ErrDuplicate
		}
		return fmt.Errorf("failed to create issue: %w", err)
	}

	return nil
}

// GetByID retrieves an issue by its ID.
func (r *IssueRepository) GetByID(ctx context.Context, id string) (*secondary.IssueRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+issueColumns+", (SELECT COUNT(*) FROM solutions WHERE issue_id = issues.id) FROM issues WHERE id = ?",
		id,
	)
	return scanIssue(row)
}

// GetByFingerprint retrieves the unique issue for a fingerprint.
func (r *IssueRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*secondary.IssueRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+issueColumns+", (SELECT COUNT(*) FROM solutions WHERE issue_id = issues.id) FROM issues WHERE fingerprint = ?",
		fingerprint,
	)
	return scanIssue(row)
}

// RecordOccurrence increments the occurrence counter for a repeat report.
func (r *IssueRepository) RecordOccurrence(ctx context.Context, id string, seenAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE issues SET occurrence_count = occurrence_count + 1, last_seen_at = ? WHERE id = ?",
		seenAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to record occurrence: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return secondary.ErrNotFound
	}
	return nil
}

// MarkSolved transitions an open issue to solved. Solved and stale issues
// are left untouched, keeping the transition one-way.
func (r *IssueRepository) MarkSolved(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE issues SET status = 'solved' WHERE id = ? AND status = 'open'",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark issue solved: %w", err)
	}
	return nil
}

// List retrieves issues matching the filters, most recently seen first.
func (r *IssueRepository) List(ctx context.Context, filters secondary.IssueFilters) ([]*secondary.IssueRecord, error) {
	query := "SELECT " + issueColumns + ", (SELECT COUNT(*) FROM solutions WHERE issue_id = issues.id) FROM issues WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	} else {
		query += " AND status != 'stale'"
	}

	query += " ORDER BY last_seen_at DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []*secondary.IssueRecord
	for rows.Next() {
		rec, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, rec)
	}

	return issues, rows.Err()
}

// CountCreatedSince counts a contributor's issues created at or after the
// cutoff.
func (r *IssueRepository) CountCreatedSince(ctx context.Context, contributorID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM issues WHERE created_by = ? AND created_at >= ?",
		contributorID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count issues: %w", err)
	}
	return count, nil
}

// LastCreatedAt returns the creation time of the contributor's most
// recent issue.
func (r *IssueRepository) LastCreatedAt(ctx context.Context, contributorID string) (*time.Time, error) {
	var at time.Time
	err := r.db.QueryRowContext(ctx,
		"SELECT created_at FROM issues WHERE created_by = ? ORDER BY created_at DESC LIMIT 1",
		contributorID,
	).Scan(&at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last issue time: %w", err)
	}
	return &at, nil
}

// FindRecentByMessage returns the ID of an issue with an identical error
// message posted by the contributor since the cutoff, or "".
func (r *IssueRepository) FindRecentByMessage(ctx context.Context, contributorID, errorMessage string, since time.Time) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM issues WHERE created_by = ? AND error_message = ? AND created_at >= ? LIMIT 1",
		contributorID, errorMessage, since,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check duplicate issue: %w", err)
	}
	return id, nil
}

// GetNextID returns the next available issue ID.
func (r *IssueRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM issues",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to generate issue ID: %w", err)
	}
	return fmt.Sprintf("ISS-%03d", maxID+1), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*secondary.IssueRecord, error) {
	var (
		errorType    sql.NullString
		errorMessage sql.NullString
		stackTags    sql.NullString
		runtime      sql.NullString
		createdBy    sql.NullString
	)

	rec := &secondary.IssueRecord{}
	err := row.Scan(&rec.ID, &rec.Fingerprint, &rec.Title, &errorType, &errorMessage, &stackTags, &runtime,
		&rec.OccurrenceCount, &rec.Status, &createdBy, &rec.CreatedAt, &rec.LastSeenAt, &rec.SolutionCount)
	if err == sql.ErrNoRows {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}

	rec.ErrorType = errorType.String
	rec.ErrorMessage = errorMessage.String
	if stackTags.Valid && stackTags.String != "" {
		rec.StackTags = strings.Split(stackTags.String, ",")
	}
	rec.Runtime = runtime.String
	rec.CreatedBy = createdBy.String

	return rec, nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
