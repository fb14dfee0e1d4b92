// Package secondary defines the secondary ports (driven adapters): the
// interfaces through which the application reaches durable storage. All
// storage access takes a context and is expected to observe its deadline.
package secondary

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when no row matches. Services
// translate it to the caller-facing taxonomy.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a uniqueness constraint rejects an insert,
// such as a second verification for the same (solution, contributor) pair.
var ErrDuplicate = errors.New("duplicate record")

// IssueRecord represents an issue as stored in persistence.
type IssueRecord struct {
	ID              string
	Fingerprint     string
	Title           string
	ErrorType       string
	ErrorMessage    string
	StackTags       []string
	Runtime         string
	OccurrenceCount int
	Status          string
	SolutionCount   int
	CreatedBy       string
	CreatedAt       time.Time
	LastSeenAt      time.Time
}

// IssueFilters narrows issue listings.
type IssueFilters struct {
	Status string
	Limit  int
}

// IssueRepository is the secondary port for issue persistence.
type IssueRepository interface {
	// Create persists a new issue.
	Create(ctx context.Context, issue *IssueRecord) error

	// GetByID retrieves an issue by ID.
	GetByID(ctx context.Context, id string) (*IssueRecord, error)

	// GetByFingerprint retrieves the unique issue for a fingerprint, or
	// ErrNotFound.
	GetByFingerprint(ctx context.Context, fingerprint string) (*IssueRecord, error)

	// RecordOccurrence increments the occurrence counter and advances
	// last_seen_at for a repeat report.
	RecordOccurrence(ctx context.Context, id string, seenAt time.Time) error

	// MarkSolved transitions an open issue to solved. The transition is
	// one-way; solved issues are never reopened by this call.
	MarkSolved(ctx context.Context, id string) error

	// List retrieves issues matching the filters, most recently seen
	// first.
	List(ctx context.Context, filters IssueFilters) ([]*IssueRecord, error)

	// CountCreatedSince counts a contributor's issues created at or after
	// the cutoff. Used for daily quotas.
	CountCreatedSince(ctx context.Context, contributorID string, since time.Time) (int, error)

	// LastCreatedAt returns the creation time of the contributor's most
	// recent issue, or nil when none exists. Used for cooldowns.
	LastCreatedAt(ctx context.Context, contributorID string) (*time.Time, error)

	// FindRecentByMessage returns the ID of an issue with an identical
	// error message posted by the contributor since the cutoff, or "".
	FindRecentByMessage(ctx context.Context, contributorID, errorMessage string, since time.Time) (string, error)

	// GetNextID returns the next available issue ID.
	GetNextID(ctx context.Context) (string, error)
}

// SolutionRecord represents a solution as stored in persistence.
type SolutionRecord struct {
	ID                string
	IssueID           string
	RootCause         string
	Summary           string
	FixDescription    string
	Commands          string
	ConfidenceScore   float64
	VerificationCount int
	SuccessCount      float64
	FailureCount      float64
	LastVerifiedAt    *time.Time
	Version           int64
	CreatedBy         string
	CreatedAt         time.Time
}

// ScoreUpdate carries the post-verification counters for a conditional
// solution update.
type ScoreUpdate struct {
	VerificationCount int
	SuccessCount      float64
	FailureCount      float64
	ConfidenceScore   float64
	LastVerifiedAt    time.Time
}

// SolutionRepository is the secondary port for solution persistence.
type SolutionRepository interface {
	// Create persists a new solution.
	Create(ctx context.Context, solution *SolutionRecord) error

	// GetByID retrieves a solution by ID.
	GetByID(ctx context.Context, id string) (*SolutionRecord, error)

	// ListByIssue retrieves an issue's solutions, highest confidence
	// first.
	ListByIssue(ctx context.Context, issueID string) ([]*SolutionRecord, error)

	// UpdateScore applies a counter/score update only if the stored
	// version still equals expectedVersion, bumping the version on
	// success. Returns false when a concurrent writer got there first.
	UpdateScore(ctx context.Context, id string, expectedVersion int64, upd ScoreUpdate) (bool, error)

	// CountCreatedSince counts a contributor's solutions created at or
	// after the cutoff.
	CountCreatedSince(ctx context.Context, contributorID string, since time.Time) (int, error)

	// LastCreatedAt returns the creation time of the contributor's most
	// recent solution, or nil.
	LastCreatedAt(ctx context.Context, contributorID string) (*time.Time, error)

	// FindRecentBySummary returns the ID of a solution with an identical
	// summary posted by the contributor since the cutoff, or "".
	FindRecentBySummary(ctx context.Context, contributorID, summary string, since time.Time) (string, error)

	// GetNextID returns the next available solution ID.
	GetNextID(ctx context.Context) (string, error)
}

// VerificationRecord represents a verification as stored in persistence.
// Rows are append-only; only the confidence delta is backfilled after
// scoring.
type VerificationRecord struct {
	ID              string
	SolutionID      string
	Outcome         string
	ConfidenceDelta float64
	CreatedBy       string
	CreatedAt       time.Time
}

// VerificationRepository is the secondary port for verification
// persistence.
type VerificationRepository interface {
	// NewID mints a verification ID. Random rather than sequential
	// because verifications insert concurrently and a max-scan would
	// race.
	NewID() string

	// Create persists a verification. Returns ErrDuplicate when the
	// (solution, contributor) pair already has one — the storage-level
	// backstop for the one-verification-per-pair invariant.
	Create(ctx context.Context, v *VerificationRecord) error

	// SetConfidenceDelta backfills the confidence movement attributed to
	// a verification once the solution's score has been recomputed. The
	// only mutation ever applied to a verification row.
	SetConfidenceDelta(ctx context.Context, id string, delta float64) error

	// ExistsForPair reports whether the contributor already verified the
	// solution.
	ExistsForPair(ctx context.Context, contributorID, solutionID string) (bool, error)

	// ListBySolution retrieves a solution's verifications, newest first.
	ListBySolution(ctx context.Context, solutionID string) ([]*VerificationRecord, error)

	// CountCreatedSince counts a contributor's verifications created at
	// or after the cutoff.
	CountCreatedSince(ctx context.Context, contributorID string, since time.Time) (int, error)

	// LastCreatedAt returns the creation time of the contributor's most
	// recent verification, or nil.
	LastCreatedAt(ctx context.Context, contributorID string) (*time.Time, error)
}
