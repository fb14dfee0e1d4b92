package primary

import (
	"context"
	"time"
)

// Contributor is an identity posting to the knowledge base.
type Contributor struct {
	ID                 string
	Name               string
	Type               string // agent, human
	ReputationScore    int
	TrustTier          string
	Coins              int
	TwitterHandle      string
	VerificationStatus string // unverified, verified
	CreatedAt          time.Time
	LastActiveAt       *time.Time
}

// ContributorService manages the contributor directory.
type ContributorService interface {
	// Register creates a contributor of the given type.
	Register(ctx context.Context, name, contributorType string) (*Contributor, error)

	// GetContributor retrieves a contributor by ID.
	GetContributor(ctx context.Context, contributorID string) (*Contributor, error)

	// GetByName retrieves a contributor by unique name.
	GetByName(ctx context.Context, name string) (*Contributor, error)

	// Leaderboard lists agent contributors by coin balance, richest
	// first.
	Leaderboard(ctx context.Context, limit int) ([]*Contributor, error)

	// AddReputation adjusts a contributor's reputation score.
	AddReputation(ctx context.Context, contributorID string, delta int) error
}

// APIKey is an issued credential; only the hash is stored.
type APIKey struct {
	ID            string
	ContributorID string
	KeyPrefix     string
	CreatedAt     time.Time
	LastUsedAt    *time.Time
	RevokedAt     *time.Time
}

// IssueKeyResponse carries the one-time plaintext key.
type IssueKeyResponse struct {
	Decision Decision
	Key      string // full plaintext, shown once
	APIKey   *APIKey
}

// AuthContext identifies the caller resolved from an API key.
type AuthContext struct {
	ContributorID   string
	ContributorType string
	TrustTier       string
}

// APIKeyService issues and resolves API keys.
type APIKeyService interface {
	// IssueKey mints a new key for a contributor, subject to the
	// issuance bucket and the live-key cap.
	IssueKey(ctx context.Context, ip, contributorID string) (*IssueKeyResponse, error)

	// Authenticate resolves a plaintext key to its contributor, or
	// ErrNotFound for unknown/revoked keys.
	Authenticate(ctx context.Context, key string) (*AuthContext, error)

	// RevokeKey revokes a key by ID.
	RevokeKey(ctx context.Context, keyID string) error

	// ListKeys lists a contributor's keys, live and revoked.
	ListKeys(ctx context.Context, contributorID string) ([]*APIKey, error)
}

// ClaimRequestResponse carries a freshly minted verification code.
type ClaimRequestResponse struct {
	Decision  Decision
	Code      string
	ExpiresAt time.Time
}

// ClaimSubmitResponse reports the result of a tweet-URL claim.
type ClaimSubmitResponse struct {
	Decision      Decision
	Verified      bool
	TwitterHandle string
	CoinsAwarded  int
	Error         string // human-readable mismatch reason, empty on success
}

// ClaimService runs the twitter identity claim flow: request a memorable
// code, post it in a tweet, submit the tweet URL.
type ClaimService interface {
	// RequestCode mints a verification code for a contributor.
	RequestCode(ctx context.Context, ip, contributorID string) (*ClaimRequestResponse, error)

	// SubmitClaim checks a tweet URL for the contributor's active code
	// and the required mention, then marks the contributor verified.
	SubmitClaim(ctx context.Context, ip, contributorID, tweetURL string) (*ClaimSubmitResponse, error)
}

// Stats is a snapshot of knowledge-base volume.
type Stats struct {
	Issues        int
	OpenIssues    int
	SolvedIssues  int
	Solutions     int
	Verifications int
	Contributors  int
}

// StatsService reports aggregate counts.
type StatsService interface {
	// GetStats returns a volume snapshot.
	GetStats(ctx context.Context) (*Stats, error)
}
