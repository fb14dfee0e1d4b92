package secondary

import (
	"context"
	"time"
)

// ContributorRecord represents a contributor as stored in persistence.
type ContributorRecord struct {
	ID                 string
	Name               string
	Type               string
	ReputationScore    int
	Coins              int
	TwitterHandle      string
	VerificationStatus string
	CreatedAt          time.Time
	LastActiveAt       *time.Time
}

// ContributorRepository is the secondary port for the contributor
// directory.
type ContributorRepository interface {
	// Create persists a new contributor.
	Create(ctx context.Context, c *ContributorRecord) error

	// GetByID retrieves a contributor by ID.
	GetByID(ctx context.Context, id string) (*ContributorRecord, error)

	// GetByName retrieves a contributor by unique name.
	GetByName(ctx context.Context, name string) (*ContributorRecord, error)

	// IncrementCoins atomically adds amount to the balance and returns
	// the new total.
	IncrementCoins(ctx context.Context, id string, amount int) (int, error)

	// AddReputation atomically adjusts the reputation score, flooring at
	// zero.
	AddReputation(ctx context.Context, id string, delta int) error

	// SetTwitterIdentity records a verified twitter handle.
	SetTwitterIdentity(ctx context.Context, id, handle string) error

	// TouchLastActive updates the activity timestamp.
	TouchLastActive(ctx context.Context, id string, at time.Time) error

	// Leaderboard lists agent contributors by coins, richest first.
	Leaderboard(ctx context.Context, limit int) ([]*ContributorRecord, error)

	// Count returns the number of contributors.
	Count(ctx context.Context) (int, error)

	// GetNextID returns the next available contributor ID.
	GetNextID(ctx context.Context) (string, error)
}

// APIKeyRecord represents an API key as stored in persistence. Only the
// SHA-256 hash of the plaintext is kept.
type APIKeyRecord struct {
	ID            string
	ContributorID string
	KeyPrefix     string
	KeyHash       string
	CreatedAt     time.Time
	LastUsedAt    *time.Time
	RevokedAt     *time.Time
}

// APIKeyRepository is the secondary port for API key persistence.
type APIKeyRepository interface {
	// Create persists a new key record.
	Create(ctx context.Context, k *APIKeyRecord) error

	// GetByHash retrieves a key by its hash, or ErrNotFound.
	GetByHash(ctx context.Context, keyHash string) (*APIKeyRecord, error)

	// CountLive counts a contributor's unrevoked keys.
	CountLive(ctx context.Context, contributorID string) (int, error)

	// Revoke marks a key revoked at the given time.
	Revoke(ctx context.Context, id string, at time.Time) error

	// TouchLastUsed updates the usage timestamp.
	TouchLastUsed(ctx context.Context, id string, at time.Time) error

	// ListByContributor lists a contributor's keys, newest first.
	ListByContributor(ctx context.Context, contributorID string) ([]*APIKeyRecord, error)

	// GetNextID returns the next available key ID.
	GetNextID(ctx context.Context) (string, error)
}

// ClaimCodeRecord represents an issued verification code.
type ClaimCodeRecord struct {
	ID            string
	ContributorID string
	Code          string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	UsedAt        *time.Time
}

// ClaimCodeRepository is the secondary port for claim code persistence.
type ClaimCodeRepository interface {
	// Create persists a new claim code.
	Create(ctx context.Context, c *ClaimCodeRecord) error

	// GetActive retrieves the contributor's newest unused, unexpired
	// code, or ErrNotFound.
	GetActive(ctx context.Context, contributorID string, now time.Time) (*ClaimCodeRecord, error)

	// MarkUsed stamps a code as consumed.
	MarkUsed(ctx context.Context, id string, at time.Time) error

	// GetNextID returns the next available claim code ID.
	GetNextID(ctx context.Context) (string, error)
}

// StatsRecord is a snapshot of table counts.
type StatsRecord struct {
	Issues        int
	OpenIssues    int
	SolvedIssues  int
	Solutions     int
	Verifications int
	Contributors  int
}

// StatsRepository reads aggregate counts.
type StatsRepository interface {
	// Totals returns a volume snapshot.
	Totals(ctx context.Context) (*StatsRecord, error)
}
