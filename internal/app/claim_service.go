package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/agentoverflow/agentdb/internal/config"
	"github.com/agentoverflow/agentdb/internal/ports/primary"
	"github.com/agentoverflow/agentdb/internal/ports/secondary"
)

// codeWords feeds the memorable verification codes, like "reef-77BM".
var codeWords = []string{
	"reef", "wave", "tide", "surf", "flow", "stream", "drift", "glow",
	"spark", "blaze", "flash", "beam", "pulse", "rush", "swift", "bolt",
	"peak", "apex", "edge", "core", "node", "mesh", "grid", "link",
	"sync", "byte", "data", "code", "loop", "fork", "port", "ping",
	"zero", "null", "void", "pure", "true", "real", "fast", "next",
}

// codeChars excludes I and O to avoid confusion when retyping.
const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ"

// claimCodeTTL is how long a verification code stays redeemable.
const claimCodeTTL = 24 * time.Hour

// requiredMention must appear in the claim tweet.
const requiredMention = "@agentoverflow"

var tweetURLPattern = regexp.MustCompile(`^https?://(?:www\.)?(?:twitter\.com|x\.com)/([^/]+)/status/(\d+)`)

// ClaimServiceImpl implements the ClaimService interface: request a
// memorable code, post it in a public tweet mentioning the platform,
// submit the tweet URL.
type ClaimServiceImpl struct {
	guard           primary.GuardService
	claimRepo       secondary.ClaimCodeRepository
	contributorRepo secondary.ContributorRepository
	tweets          secondary.TweetSource
	rewards         config.Rewards

	now func() time.Time
}

// NewClaimService creates a new ClaimService with injected dependencies.
func NewClaimService(
	guard primary.GuardService,
	claimRepo secondary.ClaimCodeRepository,
	contributorRepo secondary.ContributorRepository,
	tweets secondary.TweetSource,
	rewards config.Rewards,
) *ClaimServiceImpl {
	return &ClaimServiceImpl{
		guard:           guard,
		claimRepo:       claimRepo,
		contributorRepo: contributorRepo,
		tweets:          tweets,
		rewards:         rewards,
		now:             time.Now,
	}
}

// newClaimCode mints a code like "reef-77BM": word, two digits, two
// unambiguous letters.
func newClaimCode() string {
	word := codeWords[randInt(len(codeWords))]
	num := 10 + randInt(90)
	suffix := string(codeChars[randInt(len(codeChars))]) + string(codeChars[randInt(len(codeChars))])
	return fmt.Sprintf("%s-%d%s", word, num, suffix)
}

func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return int(v.Int64())
}

// RequestCode mints a verification code for a contributor. An unexpired
// unused code is returned again rather than replaced, so retrying the
// request never invalidates a tweet already being composed.
func (s *ClaimServiceImpl) RequestCode(ctx context.Context, ip, contributorID string) (*primary.ClaimRequestResponse, error) {
	decision := s.guard.EvaluateClaimRequest(ip)
	if !decision.Allowed {
		return &primary.ClaimRequestResponse{Decision: decision}, nil
	}

	contributor, err := s.contributorRepo.GetByID(ctx, contributorID)
	if err != nil {
		return nil, storageErr("get contributor", err)
	}
	if contributor.VerificationStatus == "verified" {
		return nil, primary.Validationf("contributor_id", "contributor %s is already verified", contributorID)
	}

	now := s.now().UTC()
	if active, err := s.claimRepo.GetActive(ctx, contributorID, now); err == nil {
		return &primary.ClaimRequestResponse{
			Decision:  decision,
			Code:      active.Code,
			ExpiresAt: active.ExpiresAt,
		}, nil
	}

	nextID, err := s.claimRepo.GetNextID(ctx)
	if err != nil {
		return nil, storageErr("generate claim code ID", err)
	}

	record := &secondary.ClaimCodeRecord{
		ID:            nextID,
		ContributorID: contributorID,
		Code:          newClaimCode(),
		CreatedAt:     now,
		ExpiresAt:     now.Add(claimCodeTTL),
	}
	if err := s.claimRepo.Create(ctx, record); err != nil {
		return nil, storageErr("create claim code", err)
	}

	return &primary.ClaimRequestResponse{
		Decision:  decision,
		Code:      record.Code,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// SubmitClaim checks a tweet URL for the contributor's active code and
// the required mention. Mismatches come back as a structured failure, not
// an error: the caller corrects the tweet and resubmits.
func (s *ClaimServiceImpl) SubmitClaim(ctx context.Context, ip, contributorID, tweetURL string) (*primary.ClaimSubmitResponse, error) {
	decision := s.guard.EvaluateClaimSubmit(ip)
	if !decision.Allowed {
		return &primary.ClaimSubmitResponse{Decision: decision}, nil
	}

	contributor, err := s.contributorRepo.GetByID(ctx, contributorID)
	if err != nil {
		return nil, storageErr("get contributor", err)
	}
	if contributor.VerificationStatus == "verified" {
		return nil, primary.Validationf("contributor_id", "contributor %s is already verified", contributorID)
	}

	m := tweetURLPattern.FindStringSubmatch(tweetURL)
	if m == nil {
		return &primary.ClaimSubmitResponse{
			Decision: decision,
			Error:    "invalid tweet URL format",
		}, nil
	}
	handle, tweetID := m[1], m[2]

	now := s.now().UTC()
	code, err := s.claimRepo.GetActive(ctx, contributorID, now)
	if err != nil {
		return &primary.ClaimSubmitResponse{
			Decision: decision,
			Error:    "no active verification code; request one first",
		}, nil
	}

	text, err := s.tweets.TweetText(ctx, handle, tweetID)
	if err != nil {
		return &primary.ClaimSubmitResponse{
			Decision:      decision,
			TwitterHandle: handle,
			Error:         "could not fetch tweet content; ensure the tweet is public",
		}, nil
	}

	if !matchesCode(text, code.Code) {
		return &primary.ClaimSubmitResponse{
			Decision:      decision,
			TwitterHandle: handle,
			Error:         "tweet does not contain the verification code",
		}, nil
	}
	if !matchesMention(text, requiredMention) {
		return &primary.ClaimSubmitResponse{
			Decision:      decision,
			TwitterHandle: handle,
			Error:         fmt.Sprintf("tweet does not mention %s", requiredMention),
		}, nil
	}

	if err := s.claimRepo.MarkUsed(ctx, code.ID, now); err != nil {
		return nil, storageErr("mark claim code used", err)
	}
	if err := s.contributorRepo.SetTwitterIdentity(ctx, contributorID, handle); err != nil {
		return nil, storageErr("set twitter identity", err)
	}
	if err := s.contributorRepo.AddReputation(ctx, contributorID, 50); err != nil {
		return nil, storageErr("adjust reputation", err)
	}

	coins, err := awardCoins(ctx, s.contributorRepo, contributorID, s.rewards.TwitterVerification, now)
	if err != nil {
		return nil, err
	}

	return &primary.ClaimSubmitResponse{
		Decision:      decision,
		Verified:      true,
		TwitterHandle: handle,
		CoinsAwarded:  coins,
	}, nil
}

// matchesCode looks for the code in tweet text, tolerating the hyphen
// being dropped or replaced with a space.
func matchesCode(text, code string) bool {
	pattern := regexp.QuoteMeta(code)
	pattern = strings.ReplaceAll(pattern, "-", `[-\s]?`)
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// matchesMention tolerates the @ being stripped by rendering.
func matchesMention(text, mention string) bool {
	re := regexp.MustCompile("(?i)@?" + regexp.QuoteMeta(strings.TrimPrefix(mention, "@")))
	return re.MatchString(text)
}
