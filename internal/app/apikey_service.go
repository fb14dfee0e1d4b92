package app

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/agentoverflow/agentdb/internal/core/trust"
	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// APIKeyServiceImpl implements the APIKeyService interface. Keys are
// minted as "agdb_" plus 64 hex characters; only the SHA-256 hash is
// stored, so a key is shown exactly once at issuance.
type APIKeyServiceImpl struct {
	guard           primary.GuardService
	apiKeyRepo      secondary.APIKeyRepository
	contributorRepo secondary.ContributorRepository
	thresholds      trust.Thresholds

	now func() time.Time
}

// NewAPIKeyService creates a new APIKeyService with injected
// dependencies.
func NewAPIKeyService(
	guard primary.GuardService,
	apiKeyRepo secondary.APIKeyRepository,
	contributorRepo secondary.ContributorRepository,
	thresholds trust.Thresholds,
) *APIKeyServiceImpl {
	return &APIKeyServiceImpl{
		guard:           guard,
		apiKeyRepo:      apiKeyRepo,
		contributorRepo: contributorRepo,
		thresholds:      thresholds,
		now:             time.Now,
	}
}

// generateKey mints a plaintext key, its display prefix and its hash.
func generateKey() (key, prefix, hash string) {
	buf := make([]byte, 32)
	rand.Read(buf)
	secret := hex.EncodeToString(buf)

	prefix = "agdb_" + secret[:8]
	key = prefix + secret[8:]
	return key, prefix, hashKey(key)
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// IssueKey mints a new key for a contributor.
func (s *APIKeyServiceImpl) IssueKey(ctx context.Context, ip, contributorID string) (*primary.IssueKeyResponse, error) {
	if _, err := s.contributorRepo.GetByID(ctx, contributorID); err != nil {
		return nil, storageErr("get contributor", err)
	}

	decision, err := s.guard.EvaluateKeyIssuance(ctx, ip, contributorID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &primary.IssueKeyResponse{Decision: decision}, nil
	}

	nextID, err := s.apiKeyRepo.GetNextID(ctx)
	if err != nil {
		return nil, storageErr("generate key ID", err)
	}

	key, prefix, hash := generateKey()
	record := &secondary.APIKeyRecord{
		ID:            nextID,
		ContributorID: contributorID,
		KeyPrefix:     prefix,
		KeyHash:       hash,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.apiKeyRepo.Create(ctx, record); err != nil {
		return nil, storageErr("create api key", err)
	}

	return &primary.IssueKeyResponse{
		Decision: decision,
		Key:      key,
		APIKey:   recordToAPIKey(record),
	}, nil
}

// Authenticate resolves a plaintext key to its contributor. Unknown,
// malformed and revoked keys are indistinguishable to the caller.
func (s *APIKeyServiceImpl) Authenticate(ctx context.Context, key string) (*primary.AuthContext, error) {
	if !strings.HasPrefix(key, "agdb_") {
		return nil, primary.ErrNotFound
	}

	record, err := s.apiKeyRepo.GetByHash(ctx, hashKey(key))
	if err != nil {
		return nil, storageErr("look up api key", err)
	}
	if record.RevokedAt != nil {
		return nil, primary.ErrNotFound
	}

	contributor, err := s.contributorRepo.GetByID(ctx, record.ContributorID)
	if err != nil {
		return nil, storageErr("get contributor", err)
	}

	now := s.now().UTC()
	if err := s.apiKeyRepo.TouchLastUsed(ctx, record.ID, now); err != nil {
		return nil, storageErr("touch api key", err)
	}
	if err := s.contributorRepo.TouchLastActive(ctx, contributor.ID, now); err != nil {
		return nil, storageErr("touch contributor", err)
	}

	return &primary.AuthContext{
		ContributorID:   contributor.ID,
		ContributorType: contributor.Type,
		TrustTier:       string(s.thresholds.TierOf(contributor.ReputationScore)),
	}, nil
}

// RevokeKey revokes a key by ID.
func (s *APIKeyServiceImpl) RevokeKey(ctx context.Context, keyID string) error {
	if err := s.apiKeyRepo.Revoke(ctx, keyID, s.now().UTC()); err != nil {
		return storageErr("revoke api key", err)
	}
	return nil
}

// ListKeys lists a contributor's keys, live and revoked.
func (s *APIKeyServiceImpl) ListKeys(ctx context.Context, contributorID string) ([]*primary.APIKey, error) {
	records, err := s.apiKeyRepo.ListByContributor(ctx, contributorID)
	if err != nil {
		return nil, storageErr("list api keys", err)
	}

	keys := make([]*primary.APIKey, 0, len(records))
	for _, record := range records {
		keys = append(keys, recordToAPIKey(record))
	}
	return keys, nil
}

func recordToAPIKey(record *secondary.APIKeyRecord) *primary.APIKey {
	return &primary.APIKey{
		ID:            record.ID,
		ContributorID: record.ContributorID,
		KeyPrefix:     record.KeyPrefix,
		CreatedAt:     record.CreatedAt,
		LastUsedAt:    record.LastUsedAt,
		RevokedAt:     record.RevokedAt,
	}
}
