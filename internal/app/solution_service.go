package app

import (
	"context"
	"strings"
	"time"

	"github.com/agentoverflow/agentdb/internal/config"
	"github.com/agentoverflow/agentdb/internal/core/confidence"
	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// SolutionServiceImpl implements the SolutionService interface.
type SolutionServiceImpl struct {
	guard           primary.GuardService
	solutionRepo    secondary.SolutionRepository
	issueRepo       secondary.IssueRepository
	contributorRepo secondary.ContributorRepository
	rewards         config.Rewards
	params          confidence.Params

	now func() time.Time
}

// NewSolutionService creates a new SolutionService with injected
// dependencies.
func NewSolutionService(
	guard primary.GuardService,
	solutionRepo secondary.SolutionRepository,
	issueRepo secondary.IssueRepository,
	contributorRepo secondary.ContributorRepository,
	rewards config.Rewards,
	params confidence.Params,
) *SolutionServiceImpl {
	return &SolutionServiceImpl{
		guard:           guard,
		solutionRepo:    solutionRepo,
		issueRepo:       issueRepo,
		contributorRepo: contributorRepo,
		rewards:         rewards,
		params:          params,
		now:             time.Now,
	}
}

// SubmitSolution gates and persists a proposed fix at the unproven prior
// confidence.
func (s *SolutionServiceImpl) SubmitSolution(ctx context.Context, req primary.SubmitSolutionRequest) (*primary.SubmitSolutionResponse, error) {
	if req.ContributorID == "" {
		return nil, primary.Validationf("contributor_id", "contributor is required")
	}
	if strings.TrimSpace(req.Summary) == "" {
		return nil, primary.Validationf("summary", "summary is required")
	}

	if _, err := s.issueRepo.GetByID(ctx, req.IssueID); err != nil {
		return nil, storageErr("get issue", err)
	}

	decision, err := s.guard.EvaluateSolutionSubmission(ctx, req.IP, req.ContributorID, req.Summary)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &primary.SubmitSolutionResponse{Decision: decision}, nil
	}

	nextID, err := s.solutionRepo.GetNextID(ctx)
	if err != nil {
		return nil, storageErr("generate solution ID", err)
	}

	now := s.now().UTC()
	record := &secondary.SolutionRecord{
		ID:              nextID,
		IssueID:         req.IssueID,
		RootCause:       req.RootCause,
		Summary:         req.Summary,
		FixDescription:  req.FixDescription,
		Commands:        req.Commands,
		ConfidenceScore: s.params.Prior,
		CreatedBy:       req.ContributorID,
		CreatedAt:       now,
	}
	if err := s.solutionRepo.Create(ctx, record); err != nil {
		return nil, storageErr("create solution", err)
	}

	coins, err := awardCoins(ctx, s.contributorRepo, req.ContributorID, s.rewards.SubmitSolution, now)
	if err != nil {
		return nil, err
	}

	return &primary.SubmitSolutionResponse{
		Decision:     decision,
		SolutionID:   nextID,
		CoinsAwarded: coins,
	}, nil
}

// GetSolution retrieves a solution by ID.
func (s *SolutionServiceImpl) GetSolution(ctx context.Context, solutionID string) (*primary.Solution, error) {
	record, err := s.solutionRepo.GetByID(ctx, solutionID)
	if err != nil {
		return nil, storageErr("get solution", err)
	}
	return recordToSolution(record), nil
}

// ListSolutions lists an issue's solutions ordered by confidence.
func (s *SolutionServiceImpl) ListSolutions(ctx context.Context, issueID string) ([]*primary.Solution, error) {
	records, err := s.solutionRepo.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, storageErr("list solutions", err)
	}

	solutions := make([]*primary.Solution, 0, len(records))
	for _, record := range records {
		solutions = append(solutions, recordToSolution(record))
	}
	return solutions, nil
}

func recordToSolution(record *secondary.SolutionRecord) *primary.Solution {
	return &primary.Solution{
		ID:                record.ID,
		IssueID:           record.IssueID,
		RootCause:         record.RootCause,
		Summary:           record.Summary,
		FixDescription:    record.FixDescription,
		Commands:          record.Commands,
		ConfidenceScore:   record.ConfidenceScore,
		VerificationCount: record.VerificationCount,
		SuccessCount:      record.SuccessCount,
		FailureCount:      record.FailureCount,
		LastVerifiedAt:    record.LastVerifiedAt,
		CreatedBy:         record.CreatedBy,
		CreatedAt:         record.CreatedAt,
	}
}
