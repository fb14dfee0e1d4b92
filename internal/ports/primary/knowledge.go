// Package primary defines the primary ports (driving interfaces) of the
// knowledge base: the operations exposed to front ends such as a CLI or an
// HTTP layer, together with their request and response types.
package primary

import (
	"context"
	"time"
)

// Issue is a deduplicated error report. Exactly one issue exists per
// distinct fingerprint; repeat reports increment OccurrenceCount.
type Issue struct {
	ID              string
	Fingerprint     string
	Title           string
	ErrorType       string
	ErrorMessage    string
	StackTags       []string
	Runtime         string
	OccurrenceCount int
	Status          string // open, solved, stale
	SolutionCount   int
	CreatedBy       string
	CreatedAt       time.Time
	LastSeenAt      time.Time
}

// Solution is a proposed fix for an issue, scored by the confidence
// engine.
type Solution struct {
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
	CreatedBy         string
	CreatedAt         time.Time
}

// Verification is an immutable record of one contributor testing one
// solution.
type Verification struct {
	ID              string
	SolutionID      string
	Outcome         string // success, failure, partial
	ConfidenceDelta float64
	CreatedBy       string
	CreatedAt       time.Time
}

// SubmitIssueRequest carries an incoming error report.
type SubmitIssueRequest struct {
	IP            string
	ContributorID string
	Title         string
	ErrorType     string
	ErrorMessage  string
	StackTags     []string
	Runtime       string
}

// SubmitIssueResponse reports whether the issue was created or folded into
// an existing fingerprint.
type SubmitIssueResponse struct {
	Decision     Decision
	Action       string // "created" or "duplicate"
	IssueID      string
	Fingerprint  string
	CoinsAwarded int
}

// IssueFilters narrows issue listings.
type IssueFilters struct {
	Status string
	Limit  int
}

// IssueService manages deduplicated error reports.
type IssueService interface {
	// SubmitIssue gates, fingerprints and persists an error report.
	// A repeat fingerprint increments the existing issue instead of
	// creating a row.
	SubmitIssue(ctx context.Context, req SubmitIssueRequest) (*SubmitIssueResponse, error)

	// GetIssue retrieves an issue by ID.
	GetIssue(ctx context.Context, issueID string) (*Issue, error)

	// ListIssues lists issues with optional filters.
	ListIssues(ctx context.Context, filters IssueFilters) ([]*Issue, error)
}

// SubmitSolutionRequest carries a proposed fix.
type SubmitSolutionRequest struct {
	IP             string
	ContributorID  string
	IssueID        string
	RootCause      string
	Summary        string
	FixDescription string
	Commands       string
}

// SubmitSolutionResponse reports the created solution or the duplicate it
// collided with.
type SubmitSolutionResponse struct {
	Decision     Decision
	SolutionID   string
	CoinsAwarded int
}

// SolutionService manages proposed fixes.
type SolutionService interface {
	// SubmitSolution gates and persists a proposed fix with the unproven
	// prior confidence.
	SubmitSolution(ctx context.Context, req SubmitSolutionRequest) (*SubmitSolutionResponse, error)

	// GetSolution retrieves a solution by ID.
	GetSolution(ctx context.Context, solutionID string) (*Solution, error)

	// ListSolutions lists an issue's solutions ordered by confidence.
	ListSolutions(ctx context.Context, issueID string) ([]*Solution, error)
}

// RecordVerificationRequest carries a verification outcome.
type RecordVerificationRequest struct {
	IP            string
	ContributorID string
	SolutionID    string
	Outcome       string // success, failure, partial
}

// RecordVerificationResponse reports the confidence movement caused by a
// verification.
type RecordVerificationResponse struct {
	Decision           Decision
	VerificationID     string
	PreviousConfidence float64
	NewConfidence      float64
	ConfidenceDelta    float64
	IssueSolved        bool
	CoinsAwarded       int
}

// VerificationService records verification outcomes and recomputes
// solution confidence atomically.
type VerificationService interface {
	// RecordVerification gates the verification, then atomically applies
	// the trust-weighted outcome to the solution's counters and
	// recomputes its confidence.
	RecordVerification(ctx context.Context, req RecordVerificationRequest) (*RecordVerificationResponse, error)

	// ListVerifications lists a solution's verifications, newest first.
	ListVerifications(ctx context.Context, solutionID string) ([]*Verification, error)
}
