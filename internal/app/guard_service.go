package app

import (
	"context"
	"time"

	"github.com/agentoverflow/agentdb/internal/adapters/memory"
	"github.com/agentoverflow/agentdb/internal/config"
	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/ports/secondary"
	"github.com/agentoverflow/agentdb/internal/ratelimit"
)

// GuardServiceImpl implements the GuardService interface. Checks run
// cheapest first: in-memory IP buckets shed abusive load before any
// storage round trip, then identity conflicts, then the storage-backed
// quota and cooldown checks.
type GuardServiceImpl struct {
	buckets          *memory.Buckets
	issueRepo        secondary.IssueRepository
	solutionRepo     secondary.SolutionRepository
	verificationRepo secondary.VerificationRepository
	apiKeyRepo       secondary.APIKeyRepository
	limits           config.Limits

	now func() time.Time
}

// NewGuardService creates a new GuardService with injected dependencies.
func NewGuardService(
	buckets *memory.Buckets,
	issueRepo secondary.IssueRepository,
	solutionRepo secondary.SolutionRepository,
	verificationRepo secondary.VerificationRepository,
	apiKeyRepo secondary.APIKeyRepository,
	limits config.Limits,
) *GuardServiceImpl {
	return &GuardServiceImpl{
		buckets:          buckets,
		issueRepo:        issueRepo,
		solutionRepo:     solutionRepo,
		verificationRepo: verificationRepo,
		apiKeyRepo:       apiKeyRepo,
		limits:           limits,
		now:              time.Now,
	}
}

// EvaluateIssueSubmission gates an issue report.
func (s *GuardServiceImpl) EvaluateIssueSubmission(ctx context.Context, ip, contributorID, errorMessage string) (primary.Decision, error) {
	if d := s.takeIP(ip); !d.Allowed {
		return d, nil
	}

	now := s.now()

	if d, err := s.checkDailyQuota(ctx, s.issueRepo.CountCreatedSince, contributorID, s.limits.IssuesPerDay, now); err != nil || !d.Allowed {
		return d, err
	}
	if d, err := s.checkCooldown(ctx, s.issueRepo.LastCreatedAt, contributorID, s.limits.IssueCooldown(), now); err != nil || !d.Allowed {
		return d, err
	}

	dupID, err := s.issueRepo.FindRecentByMessage(ctx, contributorID, errorMessage, now.Add(-s.limits.DuplicateWindow()))
	if err != nil {
		return primary.Decision{}, storageErr("check duplicate issue", err)
	}
	if dupID != "" {
		return primary.Decision{Reason: primary.DenyDuplicateContent, DuplicateID: dupID}, nil
	}

	return primary.Allow(), nil
}

// EvaluateSolutionSubmission gates a proposed fix.
func (s *GuardServiceImpl) EvaluateSolutionSubmission(ctx context.Context, ip, contributorID, summary string) (primary.Decision, error) {
	if d := s.takeIP(ip); !d.Allowed {
		return d, nil
	}

	now := s.now()

	if d, err := s.checkDailyQuota(ctx, s.solutionRepo.CountCreatedSince, contributorID, s.limits.SolutionsPerDay, now); err != nil || !d.Allowed {
		return d, err
	}
	if d, err := s.checkCooldown(ctx, s.solutionRepo.LastCreatedAt, contributorID, s.limits.SolutionCooldown(), now); err != nil || !d.Allowed {
		return d, err
	}

	dupID, err := s.solutionRepo.FindRecentBySummary(ctx, contributorID, summary, now.Add(-s.limits.DuplicateWindow()))
	if err != nil {
		return primary.Decision{}, storageErr("check duplicate solution", err)
	}
	if dupID != "" {
		return primary.Decision{Reason: primary.DenyDuplicateContent, DuplicateID: dupID}, nil
	}

	return primary.Allow(), nil
}

// EvaluateVerification gates a verification. Conflict checks run before
// the transient quota and cooldown checks so a permanent refusal is
// never masked by a retryable one.
func (s *GuardServiceImpl) EvaluateVerification(ctx context.Context, ip, contributorID, solutionID string) (primary.Decision, error) {
	if d := s.takeIP(ip); !d.Allowed {
		return d, nil
	}

	solution, err := s.solutionRepo.GetByID(ctx, solutionID)
	if err != nil {
		return primary.Decision{}, storageErr("load solution", err)
	}
	if solution.CreatedBy != "" && solution.CreatedBy == contributorID {
		return primary.Decision{Reason: primary.DenySelfVerification}, nil
	}

	exists, err := s.verificationRepo.ExistsForPair(ctx, contributorID, solutionID)
	if err != nil {
		return primary.Decision{}, storageErr("check verification pair", err)
	}
	if exists {
		return primary.Decision{Reason: primary.DenyAlreadyVerified}, nil
	}

	now := s.now()

	if d, err := s.checkDailyQuota(ctx, s.verificationRepo.CountCreatedSince, contributorID, s.limits.VerificationsPerDay, now); err != nil || !d.Allowed {
		return d, err
	}
	if d, err := s.checkCooldown(ctx, s.verificationRepo.LastCreatedAt, contributorID, s.limits.VerificationCooldown(), now); err != nil || !d.Allowed {
		return d, err
	}

	return primary.Allow(), nil
}

// EvaluateClaimRequest gates a verification-code request by IP.
func (s *GuardServiceImpl) EvaluateClaimRequest(ip string) primary.Decision {
	return mapBucketDecision(s.buckets.ClaimRequest.Take(ip))
}

// EvaluateClaimSubmit gates a tweet-URL submission by IP.
func (s *GuardServiceImpl) EvaluateClaimSubmit(ip string) primary.Decision {
	return mapBucketDecision(s.buckets.ClaimSubmit.Take(ip))
}

// EvaluateKeyIssuance gates API-key creation.
func (s *GuardServiceImpl) EvaluateKeyIssuance(ctx context.Context, ip, contributorID string) (primary.Decision, error) {
	if d := mapBucketDecision(s.buckets.APIKey.Take(ip)); !d.Allowed {
		return d, nil
	}

	live, err := s.apiKeyRepo.CountLive(ctx, contributorID)
	if err != nil {
		return primary.Decision{}, storageErr("count live keys", err)
	}
	if live >= s.limits.LiveKeysPerAccount {
		return primary.Decision{Reason: primary.DenyKeyLimit}, nil
	}

	return primary.Allow(), nil
}

func (s *GuardServiceImpl) takeIP(ip string) primary.Decision {
	d := s.buckets.IP.Take(ip)
	if d.Allowed {
		return primary.Allow()
	}
	return primary.Decision{
		Reason:     primary.DenyRateLimited,
		RetryAfter: d.RetryAfter,
		Remaining:  d.Remaining,
		ResetsAt:   d.ResetsAt,
	}
}

type countSince func(ctx context.Context, contributorID string, since time.Time) (int, error)
type lastAt func(ctx context.Context, contributorID string) (*time.Time, error)

// checkDailyQuota counts durable rows since local midnight. Counting from
// storage rather than a memory window means quotas survive restarts.
func (s *GuardServiceImpl) checkDailyQuota(ctx context.Context, count countSince, contributorID string, quota int, now time.Time) (primary.Decision, error) {
	midnight := dayStart(now)

	used, err := count(ctx, contributorID, midnight)
	if err != nil {
		return primary.Decision{}, storageErr("count daily actions", err)
	}
	if used >= quota {
		resetsAt := midnight.Add(24 * time.Hour)
		return primary.Decision{
			Reason:     primary.DenyDailyQuota,
			RetryAfter: resetsAt.Sub(now),
			Remaining:  0,
			ResetsAt:   resetsAt,
		}, nil
	}

	return primary.Decision{Allowed: true, Remaining: quota - used}, nil
}

func (s *GuardServiceImpl) checkCooldown(ctx context.Context, last lastAt, contributorID string, cooldown time.Duration, now time.Time) (primary.Decision, error) {
	if cooldown <= 0 {
		return primary.Allow(), nil
	}

	at, err := last(ctx, contributorID)
	if err != nil {
		return primary.Decision{}, storageErr("get last action time", err)
	}
	if at != nil {
		if elapsed := now.Sub(*at); elapsed < cooldown {
			return primary.Decision{
				Reason:     primary.DenyCooldown,
				RetryAfter: cooldown - elapsed,
			}, nil
		}
	}

	return primary.Allow(), nil
}

// dayStart returns local midnight for t, in UTC, matching how row
// timestamps are stored.
func dayStart(t time.Time) time.Time {
	local := t.Local()
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, local.Location()).UTC()
}

// mapBucketDecision translates a limiter decision. A denial with window
// headroom left is a cooldown; an exhausted window is a rate limit.
func mapBucketDecision(d ratelimit.Decision) primary.Decision {
	if d.Allowed {
		return primary.Decision{Allowed: true, Remaining: d.Remaining, ResetsAt: d.ResetsAt}
	}

	reason := primary.DenyRateLimited
	if d.Remaining > 0 {
		reason = primary.DenyCooldown
	}
	return primary.Decision{
		Reason:     reason,
		RetryAfter: d.RetryAfter,
		Remaining:  d.Remaining,
		ResetsAt:   d.ResetsAt,
	}
}
