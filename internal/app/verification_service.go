package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agentoverflow/agentdb/internal/config"
	"github.com/agentoverflow/agentdb/internal/core/confidence"
	"github.com/agentoverflow/agentdb/internal/core/trust"
	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// maxScoreRetries bounds the compare-and-swap loop under write
// contention. Each retry re-reads the solution, so the bound is only hit
// when the row is being hammered; 100 covers far more concurrent
// verifiers than a single solution realistically sees.
const maxScoreRetries = 100

// VerificationServiceImpl implements the VerificationService interface.
type VerificationServiceImpl struct {
	guard            primary.GuardService
	verificationRepo secondary.VerificationRepository
	solutionRepo     secondary.SolutionRepository
	issueRepo        secondary.IssueRepository
	contributorRepo  secondary.ContributorRepository
	thresholds       trust.Thresholds
	params           confidence.Params
	rewards          config.Rewards

	now func() time.Time
}

// NewVerificationService creates a new VerificationService with injected
// dependencies.
func NewVerificationService(
	guard primary.GuardService,
	verificationRepo secondary.VerificationRepository,
	solutionRepo secondary.SolutionRepository,
	issueRepo secondary.IssueRepository,
	contributorRepo secondary.ContributorRepository,
	thresholds trust.Thresholds,
	params confidence.Params,
	rewards config.Rewards,
) *VerificationServiceImpl {
	return &VerificationServiceImpl{
		guard:            guard,
		verificationRepo: verificationRepo,
		solutionRepo:     solutionRepo,
		issueRepo:        issueRepo,
		contributorRepo:  contributorRepo,
		thresholds:       thresholds,
		params:           params,
		rewards:          rewards,
		now:              time.Now,
	}
}

// RecordVerification gates the verification, inserts the append-only row,
// then applies the trust-weighted outcome to the solution's counters with
// a compare-and-swap on the version column. The row insert comes first:
// its unique (solution, contributor) index is the backstop that makes a
// double-submit race lose before any score moves.
func (s *VerificationServiceImpl) RecordVerification(ctx context.Context, req primary.RecordVerificationRequest) (*primary.RecordVerificationResponse, error) {
	if req.ContributorID == "" {
		return nil, primary.Validationf("contributor_id", "contributor is required")
	}
	if !trust.ValidOutcome(req.Outcome) {
		return nil, primary.Validationf("outcome", "outcome must be success, failure or partial")
	}

	decision, err := s.guard.EvaluateVerification(ctx, req.IP, req.ContributorID, req.SolutionID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &primary.RecordVerificationResponse{Decision: decision}, nil
	}

	verifier, err := s.contributorRepo.GetByID(ctx, req.ContributorID)
	if err != nil {
		return nil, storageErr("get contributor", err)
	}
	weight := s.thresholds.Weight(s.thresholds.TierOf(verifier.ReputationScore))
	successDelta, failureDelta := trust.Apply(trust.Outcome(req.Outcome), weight)

	now := s.now().UTC()
	verification := &secondary.VerificationRecord{
		ID:         s.verificationRepo.NewID(),
		SolutionID: req.SolutionID,
		Outcome:    req.Outcome,
		CreatedBy:  req.ContributorID,
		CreatedAt:  now,
	}
	if err := s.verificationRepo.Create(ctx, verification); err != nil {
		if errors.Is(err, secondary.ErrDuplicate) {
			return &primary.RecordVerificationResponse{
				Decision: primary.Decision{Reason: primary.DenyAlreadyVerified},
			}, nil
		}
		return nil, storageErr("create verification", err)
	}

	previous, updated, err := s.applyScore(ctx, req.SolutionID, successDelta, failureDelta, now)
	if err != nil {
		return nil, err
	}

	delta := updated.ConfidenceScore - previous.ConfidenceScore
	if err := s.verificationRepo.SetConfidenceDelta(ctx, verification.ID, delta); err != nil {
		return nil, storageErr("record confidence delta", err)
	}

	issueSolved := false
	if previous.ConfidenceScore < s.params.SolvedThreshold && updated.ConfidenceScore >= s.params.SolvedThreshold {
		if err := s.issueRepo.MarkSolved(ctx, previous.IssueID); err != nil {
			return nil, storageErr("mark issue solved", err)
		}
		issueSolved = true
	}

	coins, err := awardCoins(ctx, s.contributorRepo, req.ContributorID, s.rewards.VerifySolution, now)
	if err != nil {
		return nil, err
	}
	if req.Outcome == string(trust.OutcomeSuccess) && previous.CreatedBy != "" {
		if _, err := awardCoins(ctx, s.contributorRepo, previous.CreatedBy, s.rewards.SolutionVerifiedSuccess, now); err != nil {
			return nil, err
		}
	}

	return &primary.RecordVerificationResponse{
		Decision:           decision,
		VerificationID:     verification.ID,
		PreviousConfidence: previous.ConfidenceScore,
		NewConfidence:      updated.ConfidenceScore,
		ConfidenceDelta:    delta,
		IssueSolved:        issueSolved,
		CoinsAwarded:       coins,
	}, nil
}

// applyScore runs the optimistic-concurrency loop: read the solution,
// compute the post-verification counters and score, and write them only
// if no concurrent verifier advanced the version in between.
func (s *VerificationServiceImpl) applyScore(ctx context.Context, solutionID string, successDelta, failureDelta float64, now time.Time) (previous *secondary.SolutionRecord, updated secondary.ScoreUpdate, err error) {
	for attempt := 0; attempt < maxScoreRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, secondary.ScoreUpdate{}, err
		}

		solution, err := s.solutionRepo.GetByID(ctx, solutionID)
		if err != nil {
			return nil, secondary.ScoreUpdate{}, storageErr("get solution", err)
		}

		upd := secondary.ScoreUpdate{
			VerificationCount: solution.VerificationCount + 1,
			SuccessCount:      solution.SuccessCount + successDelta,
			FailureCount:      solution.FailureCount + failureDelta,
			LastVerifiedAt:    now,
		}
		upd.ConfidenceScore = confidence.Score(upd.VerificationCount, upd.SuccessCount, &now, now, s.params)

		ok, err := s.solutionRepo.UpdateScore(ctx, solutionID, solution.Version, upd)
		if err != nil {
			return nil, secondary.ScoreUpdate{}, storageErr("update solution score", err)
		}
		if ok {
			return solution, upd, nil
		}
	}

	return nil, secondary.ScoreUpdate{}, fmt.Errorf("%w: solution %s score contended beyond %d attempts",
		primary.ErrStorageUnavailable, solutionID, maxScoreRetries)
}

// ListVerifications lists a solution's verifications, newest first.
func (s *VerificationServiceImpl) ListVerifications(ctx context.Context, solutionID string) ([]*primary.Verification, error) {
	records, err := s.verificationRepo.ListBySolution(ctx, solutionID)
	if err != nil {
		return nil, storageErr("list verifications", err)
	}

	verifications := make([]*primary.Verification, 0, len(records))
	for _, record := range records {
		verifications = append(verifications, &primary.Verification{
			ID:              record.ID,
			SolutionID:      record.SolutionID,
			Outcome:         record.Outcome,
			ConfidenceDelta: record.ConfidenceDelta,
			CreatedBy:       record.CreatedBy,
			CreatedAt:       record.CreatedAt,
		})
	}
	return verifications, nil
}
