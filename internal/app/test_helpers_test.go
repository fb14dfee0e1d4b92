package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// Interface assertions for the mocks.
var (
	_ primary.GuardService = (*mockGuardService)(nil)

	_ secondary.IssueRepository        = (*mockIssueRepository)(nil)
	_ secondary.SolutionRepository     = (*mockSolutionRepository)(nil)
	_ secondary.VerificationRepository = (*mockVerificationRepository)(nil)
	_ secondary.ContributorRepository  = (*mockContributorRepository)(nil)
	_ secondary.APIKeyRepository       = (*mockAPIKeyRepository)(nil)
	_ secondary.ClaimCodeRepository    = (*mockClaimCodeRepository)(nil)
	_ secondary.StatsRepository        = (*mockStatsRepository)(nil)
	_ secondary.TweetSource            = (*mockTweetSource)(nil)
)

// mockGuardService implements primary.GuardService for testing. Every
// check allows unless a decision is injected.
type mockGuardService struct {
	issueDecision        primary.Decision
	solutionDecision     primary.Decision
	verificationDecision primary.Decision
	claimRequestDecision primary.Decision
	claimSubmitDecision  primary.Decision
	keyDecision          primary.Decision
	err                  error
}

func newMockGuardService() *mockGuardService {
	return &mockGuardService{
		issueDecision:        primary.Allow(),
		solutionDecision:     primary.Allow(),
		verificationDecision: primary.Allow(),
		claimRequestDecision: primary.Allow(),
		claimSubmitDecision:  primary.Allow(),
		keyDecision:          primary.Allow(),
	}
}

func (m *mockGuardService) EvaluateIssueSubmission(ctx context.Context, ip, contributorID, errorMessage string) (primary.Decision, error) {
	return m.issueDecision, m.err
}

func (m *mockGuardService) EvaluateSolutionSubmission(ctx context.Context, ip, contributorID, summary string) (primary.Decision, error) {
	return m.solutionDecision, m.err
}

func (m *mockGuardService) EvaluateVerification(ctx context.Context, ip, contributorID, solutionID string) (primary.Decision, error) {
	return m.verificationDecision, m.err
}

func (m *mockGuardService) EvaluateClaimRequest(ip string) primary.Decision {
	return m.claimRequestDecision
}

func (m *mockGuardService) EvaluateClaimSubmit(ip string) primary.Decision {
	return m.claimSubmitDecision
}

func (m *mockGuardService) EvaluateKeyIssuance(ctx context.Context, ip, contributorID string) (primary.Decision, error) {
	return m.keyDecision, m.err
}

// mockIssueRepository implements secondary.IssueRepository for testing.
type mockIssueRepository struct {
	mu     sync.Mutex
	issues map[string]*secondary.IssueRecord

	createErr error
	getErr    error
}

func newMockIssueRepository() *mockIssueRepository {
	return &mockIssueRepository{issues: make(map[string]*secondary.IssueRecord)}
}

func (m *mockIssueRepository) Create(ctx context.Context, issue *secondary.IssueRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.issues {
		if existing.Fingerprint == issue.Fingerprint {
			return secondary.ErrDuplicate
		}
	}
	cp := *issue
	if cp.OccurrenceCount == 0 {
		cp.OccurrenceCount = 1
	}
	if cp.Status == "" {
		cp.Status = "open"
	}
	m.issues[issue.ID] = &cp
	return nil
}

func (m *mockIssueRepository) GetByID(ctx context.Context, id string) (*secondary.IssueRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	cp := *issue
	return &cp, nil
}

func (m *mockIssueRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*secondary.IssueRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, issue := range m.issues {
		if issue.Fingerprint == fingerprint {
			cp := *issue
			return &cp, nil
		}
	}
	return nil, secondary.ErrNotFound
}

func (m *mockIssueRepository) RecordOccurrence(ctx context.Context, id string, seenAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return secondary.ErrNotFound
	}
	issue.OccurrenceCount++
	issue.LastSeenAt = seenAt
	return nil
}

func (m *mockIssueRepository) MarkSolved(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return secondary.ErrNotFound
	}
	if issue.Status == "open" {
		issue.Status = "solved"
	}
	return nil
}

func (m *mockIssueRepository) List(ctx context.Context, filters secondary.IssueFilters) ([]*secondary.IssueRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.IssueRecord
	for _, issue := range m.issues {
		if filters.Status != "" && issue.Status != filters.Status {
			continue
		}
		if filters.Status == "" && issue.Status == "stale" {
			continue
		}
		cp := *issue
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockIssueRepository) CountCreatedSince(ctx context.Context, contributorID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, issue := range m.issues {
		if issue.CreatedBy == contributorID && !issue.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockIssueRepository) LastCreatedAt(ctx context.Context, contributorID string) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last *time.Time
	for _, issue := range m.issues {
		if issue.CreatedBy != contributorID {
			continue
		}
		at := issue.CreatedAt
		if last == nil || at.After(*last) {
			last = &at
		}
	}
	return last, nil
}

func (m *mockIssueRepository) FindRecentByMessage(ctx context.Context, contributorID, errorMessage string, since time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, issue := range m.issues {
		if issue.CreatedBy == contributorID && issue.ErrorMessage == errorMessage && !issue.CreatedAt.Before(since) {
			return issue.ID, nil
		}
	}
	return "", nil
}

func (m *mockIssueRepository) GetNextID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("ISS-%03d", len(m.issues)+1), nil
}

// mockSolutionRepository implements secondary.SolutionRepository for
// testing, honoring the version check in UpdateScore.
type mockSolutionRepository struct {
	mu        sync.Mutex
	solutions map[string]*secondary.SolutionRecord

	updateErr error
}

func newMockSolutionRepository() *mockSolutionRepository {
	return &mockSolutionRepository{solutions: make(map[string]*secondary.SolutionRecord)}
}

func (m *mockSolutionRepository) Create(ctx context.Context, solution *secondary.SolutionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *solution
	m.solutions[solution.ID] = &cp
	return nil
}

func (m *mockSolutionRepository) GetByID(ctx context.Context, id string) (*secondary.SolutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	solution, ok := m.solutions[id]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	cp := *solution
	return &cp, nil
}

func (m *mockSolutionRepository) ListByIssue(ctx context.Context, issueID string) ([]*secondary.SolutionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.SolutionRecord
	for _, solution := range m.solutions {
		if solution.IssueID == issueID {
			cp := *solution
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConfidenceScore > out[j].ConfidenceScore })
	return out, nil
}

func (m *mockSolutionRepository) UpdateScore(ctx context.Context, id string, expectedVersion int64, upd secondary.ScoreUpdate) (bool, error) {
	if m.updateErr != nil {
		return false, m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	solution, ok := m.solutions[id]
	if !ok || solution.Version != expectedVersion {
		return false, nil
	}
	solution.VerificationCount = upd.VerificationCount
	solution.SuccessCount = upd.SuccessCount
	solution.FailureCount = upd.FailureCount
	solution.ConfidenceScore = upd.ConfidenceScore
	at := upd.LastVerifiedAt
	solution.LastVerifiedAt = &at
	solution.Version++
	return true, nil
}

func (m *mockSolutionRepository) CountCreatedSince(ctx context.Context, contributorID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, solution := range m.solutions {
		if solution.CreatedBy == contributorID && !solution.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockSolutionRepository) LastCreatedAt(ctx context.Context, contributorID string) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last *time.Time
	for _, solution := range m.solutions {
		if solution.CreatedBy != contributorID {
			continue
		}
		at := solution.CreatedAt
		if last == nil || at.After(*last) {
			last = &at
		}
	}
	return last, nil
}

func (m *mockSolutionRepository) FindRecentBySummary(ctx context.Context, contributorID, summary string, since time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, solution := range m.solutions {
		if solution.CreatedBy == contributorID && solution.Summary == summary && !solution.CreatedAt.Before(since) {
			return solution.ID, nil
		}
	}
	return "", nil
}

func (m *mockSolutionRepository) GetNextID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("SOL-%03d", len(m.solutions)+1), nil
}

// mockVerificationRepository implements secondary.VerificationRepository
// for testing, enforcing the unique (solution, contributor) pair.
type mockVerificationRepository struct {
	mu            sync.Mutex
	verifications map[string]*secondary.VerificationRecord
	nextID        int
}

func newMockVerificationRepository() *mockVerificationRepository {
	return &mockVerificationRepository{verifications: make(map[string]*secondary.VerificationRecord)}
}

func (m *mockVerificationRepository) NewID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return fmt.Sprintf("VER-%03d", m.nextID)
}

func (m *mockVerificationRepository) Create(ctx context.Context, v *secondary.VerificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.verifications {
		if existing.SolutionID == v.SolutionID && existing.CreatedBy == v.CreatedBy {
			return secondary.ErrDuplicate
		}
	}
	cp := *v
	m.verifications[v.ID] = &cp
	return nil
}

func (m *mockVerificationRepository) SetConfidenceDelta(ctx context.Context, id string, delta float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.verifications[id]
	if !ok {
		return secondary.ErrNotFound
	}
	v.ConfidenceDelta = delta
	return nil
}

func (m *mockVerificationRepository) ExistsForPair(ctx context.Context, contributorID, solutionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.verifications {
		if v.SolutionID == solutionID && v.CreatedBy == contributorID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockVerificationRepository) ListBySolution(ctx context.Context, solutionID string) ([]*secondary.VerificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.VerificationRecord
	for _, v := range m.verifications {
		if v.SolutionID == solutionID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockVerificationRepository) CountCreatedSince(ctx context.Context, contributorID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, v := range m.verifications {
		if v.CreatedBy == contributorID && !v.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockVerificationRepository) LastCreatedAt(ctx context.Context, contributorID string) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last *time.Time
	for _, v := range m.verifications {
		if v.CreatedBy != contributorID {
			continue
		}
		at := v.CreatedAt
		if last == nil || at.After(*last) {
			last = &at
		}
	}
	return last, nil
}

// mockContributorRepository implements secondary.ContributorRepository
// for testing.
type mockContributorRepository struct {
	mu           sync.Mutex
	contributors map[string]*secondary.ContributorRecord
}

func newMockContributorRepository() *mockContributorRepository {
	return &mockContributorRepository{contributors: make(map[string]*secondary.ContributorRecord)}
}

// addContributor seeds an already-registered contributor.
func (m *mockContributorRepository) addContributor(id, name, ctype string, reputation int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contributors[id] = &secondary.ContributorRecord{
		ID:                 id,
		Name:               name,
		Type:               ctype,
		ReputationScore:    reputation,
		VerificationStatus: "unverified",
		CreatedAt:          time.Now().UTC(),
	}
}

func (m *mockContributorRepository) Create(ctx context.Context, c *secondary.ContributorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.contributors {
		if existing.Name == c.Name {
			return secondary.ErrDuplicate
		}
	}
	cp := *c
	if cp.VerificationStatus == "" {
		cp.VerificationStatus = "unverified"
	}
	m.contributors[c.ID] = &cp
	return nil
}

func (m *mockContributorRepository) GetByID(ctx context.Context, id string) (*secondary.ContributorRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contributors[id]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockContributorRepository) GetByName(ctx context.Context, name string) (*secondary.ContributorRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.contributors {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, secondary.ErrNotFound
}

func (m *mockContributorRepository) IncrementCoins(ctx context.Context, id string, amount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contributors[id]
	if !ok {
		return 0, secondary.ErrNotFound
	}
	c.Coins += amount
	return c.Coins, nil
}

func (m *mockContributorRepository) AddReputation(ctx context.Context, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contributors[id]
	if !ok {
		return secondary.ErrNotFound
	}
	c.ReputationScore += delta
	if c.ReputationScore < 0 {
		c.ReputationScore = 0
	}
	return nil
}

func (m *mockContributorRepository) SetTwitterIdentity(ctx context.Context, id, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contributors[id]
	if !ok {
		return secondary.ErrNotFound
	}
	c.TwitterHandle = handle
	c.VerificationStatus = "verified"
	return nil
}

func (m *mockContributorRepository) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contributors[id]
	if !ok {
		return secondary.ErrNotFound
	}
	c.LastActiveAt = &at
	return nil
}

func (m *mockContributorRepository) Leaderboard(ctx context.Context, limit int) ([]*secondary.ContributorRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.ContributorRecord
	for _, c := range m.contributors {
		if c.Type == "agent" {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Coins > out[j].Coins })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockContributorRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contributors), nil
}

func (m *mockContributorRepository) GetNextID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("AGENT-%03d", len(m.contributors)+1), nil
}

// mockAPIKeyRepository implements secondary.APIKeyRepository for testing.
type mockAPIKeyRepository struct {
	mu   sync.Mutex
	keys map[string]*secondary.APIKeyRecord
}

func newMockAPIKeyRepository() *mockAPIKeyRepository {
	return &mockAPIKeyRepository{keys: make(map[string]*secondary.APIKeyRecord)}
}

func (m *mockAPIKeyRepository) Create(ctx context.Context, k *secondary.APIKeyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *k
	m.keys[k.ID] = &cp
	return nil
}

func (m *mockAPIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*secondary.APIKeyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if k.KeyHash == keyHash {
			cp := *k
			return &cp, nil
		}
	}
	return nil, secondary.ErrNotFound
}

func (m *mockAPIKeyRepository) CountLive(ctx context.Context, contributorID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, k := range m.keys {
		if k.ContributorID == contributorID && k.RevokedAt == nil {
			count++
		}
	}
	return count, nil
}

func (m *mockAPIKeyRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok {
		return secondary.ErrNotFound
	}
	if k.RevokedAt == nil {
		k.RevokedAt = &at
	}
	return nil
}

func (m *mockAPIKeyRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok {
		return secondary.ErrNotFound
	}
	k.LastUsedAt = &at
	return nil
}

func (m *mockAPIKeyRepository) ListByContributor(ctx context.Context, contributorID string) ([]*secondary.APIKeyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.APIKeyRecord
	for _, k := range m.keys {
		if k.ContributorID == contributorID {
			cp := *k
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockAPIKeyRepository) GetNextID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("KEY-%03d", len(m.keys)+1), nil
}

// mockClaimCodeRepository implements secondary.ClaimCodeRepository for
// testing.
type mockClaimCodeRepository struct {
	mu    sync.Mutex
	codes map[string]*secondary.ClaimCodeRecord
}

func newMockClaimCodeRepository() *mockClaimCodeRepository {
	return &mockClaimCodeRepository{codes: make(map[string]*secondary.ClaimCodeRecord)}
}

func (m *mockClaimCodeRepository) Create(ctx context.Context, c *secondary.ClaimCodeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.codes[c.ID] = &cp
	return nil
}

func (m *mockClaimCodeRepository) GetActive(ctx context.Context, contributorID string, now time.Time) (*secondary.ClaimCodeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var newest *secondary.ClaimCodeRecord
	for _, c := range m.codes {
		if c.ContributorID != contributorID || c.UsedAt != nil || !c.ExpiresAt.After(now) {
			continue
		}
		if newest == nil || c.CreatedAt.After(newest.CreatedAt) {
			newest = c
		}
	}
	if newest == nil {
		return nil, secondary.ErrNotFound
	}
	cp := *newest
	return &cp, nil
}

func (m *mockClaimCodeRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[id]
	if !ok || c.UsedAt != nil {
		return secondary.ErrNotFound
	}
	c.UsedAt = &at
	return nil
}

func (m *mockClaimCodeRepository) GetNextID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("CLAIM-%03d", len(m.codes)+1), nil
}

// mockStatsRepository implements secondary.StatsRepository for testing.
type mockStatsRepository struct {
	totals secondary.StatsRecord
	err    error
}

func (m *mockStatsRepository) Totals(ctx context.Context) (*secondary.StatsRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	cp := m.totals
	return &cp, nil
}

// mockTweetSource implements secondary.TweetSource for testing.
type mockTweetSource struct {
	text string
	err  error
}

func (m *mockTweetSource) TweetText(ctx context.Context, handle, tweetID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}
