package app

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/agentoverflow/agentdb/internal/config"
	"github.com/agentoverflow/agentdb/internal/core/confidence"
	"github.com/agentoverflow/agentdb/internal/core/trust"
	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// ============================================================================
// Test Helper
// ============================================================================

type verificationFixture struct {
	service       *VerificationServiceImpl
	guard         *mockGuardService
	verifications *mockVerificationRepository
	solutions     *mockSolutionRepository
	issues        *mockIssueRepository
	contributors  *mockContributorRepository
	params        confidence.Params
	now           time.Time
}

func newVerificationFixture(t *testing.T) *verificationFixture {
	f := &verificationFixture{
		guard:         newMockGuardService(),
		verifications: newMockVerificationRepository(),
		solutions:     newMockSolutionRepository(),
		issues:        newMockIssueRepository(),
		contributors:  newMockContributorRepository(),
		params:        confidence.DefaultParams(),
		now:           time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
	}
	f.service = NewVerificationService(
		f.guard, f.verifications, f.solutions, f.issues, f.contributors,
		trust.DefaultThresholds(), f.params, config.Default().Rewards,
	)
	f.service.now = func() time.Time { return f.now }

	f.contributors.addContributor("AGENT-001", "author", "agent", 0)
	f.contributors.addContributor("AGENT-002", "verifier", "agent", 0)

	err := f.issues.Create(context.Background(), &secondary.IssueRecord{
		ID:           "ISS-001",
		Fingerprint:  "fp-iss-001",
		Title:        "redis connection refused",
		ErrorMessage: "ECONNREFUSED",
		CreatedBy:    "AGENT-001",
		CreatedAt:    f.now.Add(-48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("failed to seed issue: %v", err)
	}

	f.seedSolution(t, &secondary.SolutionRecord{
		ID:              "SOL-001",
		IssueID:         "ISS-001",
		Summary:         "attach redis to the app network",
		ConfidenceScore: f.params.Prior,
		CreatedBy:       "AGENT-001",
		CreatedAt:       f.now.Add(-24 * time.Hour),
	})
	return f
}

func (f *verificationFixture) seedSolution(t *testing.T, record *secondary.SolutionRecord) {
	t.Helper()
	if err := f.solutions.Create(context.Background(), record); err != nil {
		t.Fatalf("failed to seed solution: %v", err)
	}
}

func (f *verificationFixture) record(t *testing.T, contributorID, solutionID, outcome string) *primary.RecordVerificationResponse {
	t.Helper()
	resp, err := f.service.RecordVerification(context.Background(), primary.RecordVerificationRequest{
		IP:            "10.0.0.1",
		ContributorID: contributorID,
		SolutionID:    solutionID,
		Outcome:       outcome,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return resp
}

func closeTo(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// ============================================================================
// RecordVerification Tests
// ============================================================================

func TestRecordVerification_Success(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	resp := f.record(t, "AGENT-002", "SOL-001", "success")

	if !resp.Decision.Allowed {
		t.Fatalf("expected allowed, got %s", resp.Decision.Reason)
	}
	if resp.VerificationID == "" {
		t.Error("expected a verification ID")
	}
	if !closeTo(resp.PreviousConfidence, 0.3) {
		t.Errorf("expected previous confidence 0.3, got %v", resp.PreviousConfidence)
	}

	want := confidence.Score(1, 1.0, &f.now, f.now, f.params)
	if !closeTo(resp.NewConfidence, want) {
		t.Errorf("expected new confidence %v, got %v", want, resp.NewConfidence)
	}
	if !closeTo(resp.ConfidenceDelta, want-0.3) {
		t.Errorf("expected delta %v, got %v", want-0.3, resp.ConfidenceDelta)
	}
	if resp.IssueSolved {
		t.Error("one new-tier success must not cross the solved threshold")
	}
	if resp.CoinsAwarded != 3 {
		t.Errorf("expected 3 coins for the verifier, got %d", resp.CoinsAwarded)
	}

	solution, err := f.solutions.GetByID(ctx, "SOL-001")
	if err != nil {
		t.Fatalf("expected solution: %v", err)
	}
	if solution.VerificationCount != 1 {
		t.Errorf("expected verification count 1, got %d", solution.VerificationCount)
	}
	if !closeTo(solution.SuccessCount, 1.0) {
		t.Errorf("expected weighted success 1.0, got %v", solution.SuccessCount)
	}
	if solution.Version != 1 {
		t.Errorf("expected version 1 after one update, got %d", solution.Version)
	}
	if solution.LastVerifiedAt == nil || !solution.LastVerifiedAt.Equal(f.now) {
		t.Errorf("expected last verified at %v, got %v", f.now, solution.LastVerifiedAt)
	}

	// The stored row carries the backfilled delta.
	rows, err := f.verifications.ListBySolution(ctx, "SOL-001")
	if err != nil {
		t.Fatalf("expected rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 verification row, got %d", len(rows))
	}
	if !closeTo(rows[0].ConfidenceDelta, resp.ConfidenceDelta) {
		t.Errorf("expected stored delta %v, got %v", resp.ConfidenceDelta, rows[0].ConfidenceDelta)
	}

	// Verifier earns 3, author earns 25 for the successful outcome.
	verifier, _ := f.contributors.GetByID(ctx, "AGENT-002")
	if verifier.Coins != 3 {
		t.Errorf("expected verifier balance 3, got %d", verifier.Coins)
	}
	author, _ := f.contributors.GetByID(ctx, "AGENT-001")
	if author.Coins != 25 {
		t.Errorf("expected author balance 25, got %d", author.Coins)
	}
}

func TestRecordVerification_ExpertWeight(t *testing.T) {
	f := newVerificationFixture(t)
	f.contributors.addContributor("AGENT-003", "veteran", "agent", 600)
	ctx := context.Background()

	resp := f.record(t, "AGENT-003", "SOL-001", "success")

	want := confidence.Score(1, 3.0, &f.now, f.now, f.params)
	if !closeTo(resp.NewConfidence, want) {
		t.Errorf("expected expert-weighted confidence %v, got %v", want, resp.NewConfidence)
	}

	solution, _ := f.solutions.GetByID(ctx, "SOL-001")
	if !closeTo(solution.SuccessCount, 3.0) {
		t.Errorf("expected weighted success 3.0 for an expert, got %v", solution.SuccessCount)
	}
}

func TestRecordVerification_PartialSplitsWeight(t *testing.T) {
	f := newVerificationFixture(t)
	f.contributors.addContributor("AGENT-003", "regular", "agent", 100)
	ctx := context.Background()

	f.record(t, "AGENT-003", "SOL-001", "partial")

	solution, _ := f.solutions.GetByID(ctx, "SOL-001")
	if !closeTo(solution.SuccessCount, 0.75) {
		t.Errorf("expected half of the established weight on success, got %v", solution.SuccessCount)
	}
	if !closeTo(solution.FailureCount, 0.75) {
		t.Errorf("expected half of the established weight on failure, got %v", solution.FailureCount)
	}
}

func TestRecordVerification_FailureSkipsAuthorReward(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	resp := f.record(t, "AGENT-002", "SOL-001", "failure")

	if resp.CoinsAwarded != 3 {
		t.Errorf("expected the verifier reward regardless of outcome, got %d", resp.CoinsAwarded)
	}
	author, _ := f.contributors.GetByID(ctx, "AGENT-001")
	if author.Coins != 0 {
		t.Errorf("expected no author reward for a failure, got %d", author.Coins)
	}

	solution, _ := f.solutions.GetByID(ctx, "SOL-001")
	if !closeTo(solution.FailureCount, 1.0) {
		t.Errorf("expected weighted failure 1.0, got %v", solution.FailureCount)
	}
	if !closeTo(solution.SuccessCount, 0) {
		t.Errorf("expected no success weight, got %v", solution.SuccessCount)
	}
}

func TestRecordVerification_CrossingThresholdSolvesIssue(t *testing.T) {
	f := newVerificationFixture(t)
	f.contributors.addContributor("AGENT-003", "veteran", "agent", 600)
	ctx := context.Background()

	// Eight unit successes sit just under the threshold; one expert
	// success pushes the score over it.
	f.seedSolution(t, &secondary.SolutionRecord{
		ID:                "SOL-002",
		IssueID:           "ISS-001",
		Summary:           "pin the client library version",
		ConfidenceScore:   0.65,
		VerificationCount: 8,
		SuccessCount:      8,
		CreatedBy:         "AGENT-001",
		CreatedAt:         f.now.Add(-24 * time.Hour),
	})

	resp := f.record(t, "AGENT-003", "SOL-002", "success")

	want := confidence.Score(9, 11.0, &f.now, f.now, f.params)
	if want < f.params.SolvedThreshold {
		t.Fatalf("test setup broken: expected score %v to cross %v", want, f.params.SolvedThreshold)
	}
	if !closeTo(resp.NewConfidence, want) {
		t.Errorf("expected confidence %v, got %v", want, resp.NewConfidence)
	}
	if !resp.IssueSolved {
		t.Fatal("expected the owning issue to be marked solved")
	}

	issue, err := f.issues.GetByID(ctx, "ISS-001")
	if err != nil {
		t.Fatalf("expected issue: %v", err)
	}
	if issue.Status != "solved" {
		t.Errorf("expected issue status solved, got %q", issue.Status)
	}
}

func TestRecordVerification_AlreadyAboveThresholdStaysQuiet(t *testing.T) {
	f := newVerificationFixture(t)

	f.seedSolution(t, &secondary.SolutionRecord{
		ID:                "SOL-002",
		IssueID:           "ISS-001",
		Summary:           "pin the client library version",
		ConfidenceScore:   0.85,
		VerificationCount: 40,
		SuccessCount:      48,
		CreatedBy:         "AGENT-001",
		CreatedAt:         f.now.Add(-24 * time.Hour),
	})

	resp := f.record(t, "AGENT-002", "SOL-002", "success")
	if resp.IssueSolved {
		t.Error("already-solved crossing must not fire again")
	}
}

func TestRecordVerification_DuplicatePairLosesRace(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	// The guard saw no prior row, but a concurrent submit inserted one
	// before ours; the unique pair index is the backstop.
	err := f.verifications.Create(ctx, &secondary.VerificationRecord{
		ID:         "VER-999",
		SolutionID: "SOL-001",
		Outcome:    "success",
		CreatedBy:  "AGENT-002",
		CreatedAt:  f.now,
	})
	if err != nil {
		t.Fatalf("failed to seed verification: %v", err)
	}

	resp := f.record(t, "AGENT-002", "SOL-001", "success")
	if resp.Decision.Allowed {
		t.Fatal("expected the duplicate insert to be refused")
	}
	if resp.Decision.Reason != primary.DenyAlreadyVerified {
		t.Errorf("expected reason %s, got %s", primary.DenyAlreadyVerified, resp.Decision.Reason)
	}

	// The loser must not have moved the score.
	solution, _ := f.solutions.GetByID(ctx, "SOL-001")
	if solution.VerificationCount != 0 {
		t.Errorf("expected untouched counters, got count %d", solution.VerificationCount)
	}
}

func TestRecordVerification_GuardDenied(t *testing.T) {
	f := newVerificationFixture(t)
	f.guard.verificationDecision = primary.Decision{Reason: primary.DenySelfVerification}

	resp := f.record(t, "AGENT-001", "SOL-001", "success")
	if resp.Decision.Allowed {
		t.Fatal("expected denied decision")
	}
	if resp.Decision.Reason != primary.DenySelfVerification {
		t.Errorf("expected reason %s, got %s", primary.DenySelfVerification, resp.Decision.Reason)
	}
	if len(f.verifications.verifications) != 0 {
		t.Errorf("expected no row written, got %d", len(f.verifications.verifications))
	}
}

func TestRecordVerification_InvalidOutcome(t *testing.T) {
	f := newVerificationFixture(t)

	_, err := f.service.RecordVerification(context.Background(), primary.RecordVerificationRequest{
		ContributorID: "AGENT-002",
		SolutionID:    "SOL-001",
		Outcome:       "maybe",
	})
	var verr *primary.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "outcome" {
		t.Errorf("expected field outcome, got %s", verr.Field)
	}
}

// ============================================================================
// ListVerifications Tests
// ============================================================================

func TestListVerifications(t *testing.T) {
	f := newVerificationFixture(t)
	f.contributors.addContributor("AGENT-003", "third", "agent", 0)
	ctx := context.Background()

	f.record(t, "AGENT-002", "SOL-001", "success")
	f.record(t, "AGENT-003", "SOL-001", "failure")

	listed, err := f.service.ListVerifications(ctx, "SOL-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("expected 2 verifications, got %d", len(listed))
	}
}
