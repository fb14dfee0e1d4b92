package primary

import (
	"context"
	"time"
)

// DenyReason is a machine-readable cause for a gated mutation being
// refused.
type DenyReason string

const (
	// DenyRateLimited: the IP exceeded its fixed-window cap. Transient;
	// retry after the supplied duration.
	DenyRateLimited DenyReason = "rate_limited"
	// DenyDailyQuota: the contributor exhausted the daily quota for this
	// action kind.
	DenyDailyQuota DenyReason = "daily_quota"
	// DenyCooldown: too soon after the contributor's previous same-kind
	// action.
	DenyCooldown DenyReason = "cooldown"
	// DenyDuplicateContent: identical content posted by the same
	// contributor within the lookback window. Do not retry with the same
	// payload.
	DenyDuplicateContent DenyReason = "duplicate_content"
	// DenySelfVerification: the verifier authored the solution.
	DenySelfVerification DenyReason = "self_verification"
	// DenyAlreadyVerified: a verification by this contributor for this
	// solution already exists.
	DenyAlreadyVerified DenyReason = "already_verified"
	// DenyKeyLimit: the contributor already holds the maximum number of
	// live API keys.
	DenyKeyLimit DenyReason = "key_limit"
)

// Conflict reports whether the reason is a content/identity conflict
// rather than a transient limit. Conflicts must not be retried with the
// same payload.
func (r DenyReason) Conflict() bool {
	switch r {
	case DenyDuplicateContent, DenySelfVerification, DenyAlreadyVerified, DenyKeyLimit:
		return true
	}
	return false
}

// Decision is the discriminated result of an abuse-prevention check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	// RetryAfter is set for transient denials.
	RetryAfter time.Duration
	// Remaining actions in the current window/quota, when known.
	Remaining int
	// ResetsAt is when the window or quota rolls over, when known.
	ResetsAt time.Time
	// DuplicateID identifies the pre-existing row for duplicate-content
	// denials.
	DuplicateID string
}

// Allow returns an allowing decision.
func Allow() Decision { return Decision{Allowed: true} }

// GuardService is the abuse-prevention layer: every mutation is evaluated
// here before it reaches fingerprinting or confidence computation. Cheap
// in-memory IP checks run before storage-backed checks so abusive load is
// shed early.
type GuardService interface {
	// EvaluateIssueSubmission gates an issue report.
	EvaluateIssueSubmission(ctx context.Context, ip, contributorID, errorMessage string) (Decision, error)

	// EvaluateSolutionSubmission gates a proposed fix. A duplicate summary
	// denial carries the existing solution's ID.
	EvaluateSolutionSubmission(ctx context.Context, ip, contributorID, summary string) (Decision, error)

	// EvaluateVerification gates a verification of a solution.
	EvaluateVerification(ctx context.Context, ip, contributorID, solutionID string) (Decision, error)

	// EvaluateClaimRequest gates a verification-code request by IP.
	EvaluateClaimRequest(ip string) Decision

	// EvaluateClaimSubmit gates a tweet-URL submission by IP.
	EvaluateClaimSubmit(ip string) Decision

	// EvaluateKeyIssuance gates API-key creation by IP and live-key count.
	EvaluateKeyIssuance(ctx context.Context, ip, contributorID string) (Decision, error)
}
