package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agentoverflow/agentdb/internal/core/trust"
	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// ContributorServiceImpl implements the ContributorService interface.
type ContributorServiceImpl struct {
	contributorRepo secondary.ContributorRepository
	thresholds      trust.Thresholds

	now func() time.Time
}

// NewContributorService creates a new ContributorService with injected
// dependencies.
func NewContributorService(
	contributorRepo secondary.ContributorRepository,
	thresholds trust.Thresholds,
) *ContributorServiceImpl {
	return &ContributorServiceImpl{
		contributorRepo: contributorRepo,
		thresholds:      thresholds,
		now:             time.Now,
	}
}

// Register creates a contributor of the given type.
func (s *ContributorServiceImpl) Register(ctx context.Context, name, contributorType string) (*primary.Contributor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, primary.Validationf("name", "name is required")
	}
	if contributorType == "" {
		contributorType = "agent"
	}
	if contributorType != "agent" && contributorType != "human" {
		return nil, primary.Validationf("type", "type must be agent or human")
	}

	nextID, err := s.contributorRepo.GetNextID(ctx)
	if err != nil {
		return nil, storageErr("generate contributor ID", err)
	}

	record := &secondary.ContributorRecord{
		ID:        nextID,
		Name:      name,
		Type:      contributorType,
		CreatedAt: s.now().UTC(),
	}
	if err := s.contributorRepo.Create(ctx, record); err != nil {
		if errors.Is(err, secondary.ErrDuplicate) {
			return nil, primary.Validationf("name", "name %q is already taken", name)
		}
		return nil, storageErr("create contributor", err)
	}

	created, err := s.contributorRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, storageErr("fetch created contributor", err)
	}

	return s.recordToContributor(created), nil
}

// GetContributor retrieves a contributor by ID.
func (s *ContributorServiceImpl) GetContributor(ctx context.Context, contributorID string) (*primary.Contributor, error) {
	record, err := s.contributorRepo.GetByID(ctx, contributorID)
	if err != nil {
		return nil, storageErr("get contributor", err)
	}
	return s.recordToContributor(record), nil
}

// GetByName retrieves a contributor by unique name.
func (s *ContributorServiceImpl) GetByName(ctx context.Context, name string) (*primary.Contributor, error) {
	record, err := s.contributorRepo.GetByName(ctx, name)
	if err != nil {
		return nil, storageErr("get contributor", err)
	}
	return s.recordToContributor(record), nil
}

// Leaderboard lists agent contributors by coin balance, richest first.
func (s *ContributorServiceImpl) Leaderboard(ctx context.Context, limit int) ([]*primary.Contributor, error) {
	records, err := s.contributorRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, storageErr("list leaderboard", err)
	}

	contributors := make([]*primary.Contributor, 0, len(records))
	for _, record := range records {
		contributors = append(contributors, s.recordToContributor(record))
	}
	return contributors, nil
}

// AddReputation adjusts a contributor's reputation score.
func (s *ContributorServiceImpl) AddReputation(ctx context.Context, contributorID string, delta int) error {
	if err := s.contributorRepo.AddReputation(ctx, contributorID, delta); err != nil {
		return storageErr("adjust reputation", err)
	}
	return nil
}

func (s *ContributorServiceImpl) recordToContributor(record *secondary.ContributorRecord) *primary.Contributor {
	return &primary.Contributor{
		ID:                 record.ID,
		Name:               record.Name,
		Type:               record.Type,
		ReputationScore:    record.ReputationScore,
		TrustTier:          string(s.thresholds.TierOf(record.ReputationScore)),
		Coins:              record.Coins,
		TwitterHandle:      record.TwitterHandle,
		VerificationStatus: record.VerificationStatus,
		CreatedAt:          record.CreatedAt,
		LastActiveAt:       record.LastActiveAt,
	}
}
