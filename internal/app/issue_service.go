package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agentoverflow/agentdb/internal/config"
	"github.com/agentoverflow/agentdb/internal/core/fingerprint"
	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// IssueServiceImpl implements the IssueService interface.
type IssueServiceImpl struct {
	guard           primary.GuardService
	issueRepo       secondary.IssueRepository
	contributorRepo secondary.ContributorRepository
	rewards         config.Rewards

	now func() time.Time
}

// NewIssueService creates a new IssueService with injected dependencies.
func NewIssueService(
	guard primary.GuardService,
	issueRepo secondary.IssueRepository,
	contributorRepo secondary.ContributorRepository,
	rewards config.Rewards,
) *IssueServiceImpl {
	return &IssueServiceImpl{
		guard:           guard,
		issueRepo:       issueRepo,
		contributorRepo: contributorRepo,
		rewards:         rewards,
		now:             time.Now,
	}
}

// SubmitIssue gates, fingerprints and persists an error report. A repeat
// fingerprint folds into the existing issue instead of creating a row.
func (s *IssueServiceImpl) SubmitIssue(ctx context.Context, req primary.SubmitIssueRequest) (*primary.SubmitIssueResponse, error) {
	if req.ContributorID == "" {
		return nil, primary.Validationf("contributor_id", "contributor is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, primary.Validationf("title", "title is required")
	}
	if strings.TrimSpace(req.ErrorMessage) == "" {
		return nil, primary.Validationf("error_message", "error message is required")
	}

	decision, err := s.guard.EvaluateIssueSubmission(ctx, req.IP, req.ContributorID, req.ErrorMessage)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &primary.SubmitIssueResponse{Decision: decision}, nil
	}

	fp := fingerprint.Generate(req.ErrorType, req.ErrorMessage, req.Runtime)
	now := s.now().UTC()

	existing, err := s.issueRepo.GetByFingerprint(ctx, fp)
	if err == nil {
		if err := s.issueRepo.RecordOccurrence(ctx, existing.ID, now); err != nil {
			return nil, storageErr("record occurrence", err)
		}
		return &primary.SubmitIssueResponse{
			Decision:    decision,
			Action:      "duplicate",
			IssueID:     existing.ID,
			Fingerprint: fp,
		}, nil
	}
	if !errors.Is(err, secondary.ErrNotFound) {
		return nil, storageErr("look up fingerprint", err)
	}

	nextID, err := s.issueRepo.GetNextID(ctx)
	if err != nil {
		return nil, storageErr("generate issue ID", err)
	}

	record := &secondary.IssueRecord{
		ID:           nextID,
		Fingerprint:  fp,
		Title:        req.Title,
		ErrorType:    req.ErrorType,
		ErrorMessage: req.ErrorMessage,
		StackTags:    req.StackTags,
		Runtime:      req.Runtime,
		CreatedBy:    req.ContributorID,
		CreatedAt:    now,
		LastSeenAt:   now,
	}
	if err := s.issueRepo.Create(ctx, record); err != nil {
		// A concurrent report of the same error won the insert race; fold
		// into the row it created.
		if errors.Is(err, secondary.ErrDuplicate) {
			winner, getErr := s.issueRepo.GetByFingerprint(ctx, fp)
			if getErr != nil {
				return nil, storageErr("look up fingerprint", getErr)
			}
			if err := s.issueRepo.RecordOccurrence(ctx, winner.ID, now); err != nil {
				return nil, storageErr("record occurrence", err)
			}
			return &primary.SubmitIssueResponse{
				Decision:    decision,
				Action:      "duplicate",
				IssueID:     winner.ID,
				Fingerprint: fp,
			}, nil
		}
		return nil, storageErr("create issue", err)
	}

	coins, err := s.awardCoins(ctx, req.ContributorID, s.rewards.PostIssue, now)
	if err != nil {
		return nil, err
	}

	return &primary.SubmitIssueResponse{
		Decision:     decision,
		Action:       "created",
		IssueID:      nextID,
		Fingerprint:  fp,
		CoinsAwarded: coins,
	}, nil
}

// GetIssue retrieves an issue by ID.
func (s *IssueServiceImpl) GetIssue(ctx context.Context, issueID string) (*primary.Issue, error) {
	record, err := s.issueRepo.GetByID(ctx, issueID)
	if err != nil {
		return nil, storageErr("get issue", err)
	}
	return recordToIssue(record), nil
}

// ListIssues lists issues with optional filters.
func (s *IssueServiceImpl) ListIssues(ctx context.Context, filters primary.IssueFilters) ([]*primary.Issue, error) {
	records, err := s.issueRepo.List(ctx, secondary.IssueFilters{Status: filters.Status, Limit: filters.Limit})
	if err != nil {
		return nil, storageErr("list issues", err)
	}

	issues := make([]*primary.Issue, 0, len(records))
	for _, record := range records {
		issues = append(issues, recordToIssue(record))
	}
	return issues, nil
}

// awardCoins credits an agent contributor and touches its activity
// timestamp. Human contributors never earn coins.
func (s *IssueServiceImpl) awardCoins(ctx context.Context, contributorID string, amount int, now time.Time) (int, error) {
	return awardCoins(ctx, s.contributorRepo, contributorID, amount, now)
}

func awardCoins(ctx context.Context, repo secondary.ContributorRepository, contributorID string, amount int, now time.Time) (int, error) {
	contributor, err := repo.GetByID(ctx, contributorID)
	if err != nil {
		return 0, storageErr("get contributor", err)
	}
	if err := repo.TouchLastActive(ctx, contributorID, now); err != nil {
		return 0, storageErr("touch contributor", err)
	}
	if contributor.Type != "agent" || amount <= 0 {
		return 0, nil
	}
	if _, err := repo.IncrementCoins(ctx, contributorID, amount); err != nil {
		return 0, storageErr("award coins", err)
	}
	return amount, nil
}

func recordToIssue(record *secondary.IssueRecord) *primary.Issue {
	return &primary.Issue{
		ID:              record.ID,
		Fingerprint:     record.Fingerprint,
		Title:           record.Title,
		ErrorType:       record.ErrorType,
		ErrorMessage:    record.ErrorMessage,
		StackTags:       record.StackTags,
		Runtime:         record.Runtime,
		OccurrenceCount: record.OccurrenceCount,
		Status:          record.Status,
		SolutionCount:   record.SolutionCount,
		CreatedBy:       record.CreatedBy,
		CreatedAt:       record.CreatedAt,
		LastSeenAt:      record.LastSeenAt,
	}
}
