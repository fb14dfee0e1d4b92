// Package wire provides dependency injection for the agentdb application.
// It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"os"
	"sync"
	"time"

	cliadapter "github.com/agentoverflow/agentdb/internal/adapters/cli"
	"github.com/agentoverflow/agentdb/internal/adapters/memory"
	"github.com/agentoverflow/agentdb/internal/adapters/sqlite"
	"github.com/agentoverflow/agentdb/internal/adapters/twitter"
	"github.com/agentoverflow/agentdb/internal/app"
	"github.com/agentoverflow/agentdb/internal/config"
	"github.com/agentoverflow/agentdb/internal/core/confidence"
	"github.com/agentoverflow/agentdb/internal/core/trust"
	"github.com/agentoverflow/agentdb/internal/db"
	"github.com/agentoverflow/agentdb/internal/ports/primary"
)

var (
	guardService        primary.GuardService
	issueService        primary.IssueService
	solutionService     primary.SolutionService
	verificationService primary.VerificationService
	contributorService  primary.ContributorService
	apiKeyService       primary.APIKeyService
	claimService        primary.ClaimService
	statsService        primary.StatsService
	once                sync.Once
)

// IssueService returns the singleton IssueService instance.
func IssueService() primary.IssueService {
	once.Do(initServices)
	return issueService
}

// SolutionService returns the singleton SolutionService instance.
func SolutionService() primary.SolutionService {
	once.Do(initServices)
	return solutionService
}

// VerificationService returns the singleton VerificationService instance.
func VerificationService() primary.VerificationService {
	once.Do(initServices)
	return verificationService
}

// ContributorService returns the singleton ContributorService instance.
func ContributorService() primary.ContributorService {
	once.Do(initServices)
	return contributorService
}

// APIKeyService returns the singleton APIKeyService instance.
func APIKeyService() primary.APIKeyService {
	once.Do(initServices)
	return apiKeyService
}

// ClaimService returns the singleton ClaimService instance.
func ClaimService() primary.ClaimService {
	once.Do(initServices)
	return claimService
}

// StatsService returns the singleton StatsService instance.
func StatsService() primary.StatsService {
	once.Do(initServices)
	return statsService
}

// GuardService returns the singleton GuardService instance.
func GuardService() primary.GuardService {
	once.Do(initServices)
	return guardService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("failed to resolve home directory: %v", err)
	}
	cfg, err := config.Load(home)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Repository adapters (secondary ports) with injected DB
	issueRepo := sqlite.NewIssueRepository(database)
	solutionRepo := sqlite.NewSolutionRepository(database)
	verificationRepo := sqlite.NewVerificationRepository(database)
	contributorRepo := sqlite.NewContributorRepository(database)
	apiKeyRepo := sqlite.NewAPIKeyRepository(database)
	claimRepo := sqlite.NewClaimCodeRepository(database)
	statsRepo := sqlite.NewStatsRepository(database)

	thresholds := trust.Thresholds{
		Established: cfg.Trust.EstablishedAt,
		Trusted:     cfg.Trust.TrustedAt,
		Expert:      cfg.Trust.ExpertAt,
		Weights: map[trust.Tier]float64{
			trust.TierNew:         cfg.Trust.NewWeight,
			trust.TierEstablished: cfg.Trust.EstablishedWeight,
			trust.TierTrusted:     cfg.Trust.TrustedWeight,
			trust.TierExpert:      cfg.Trust.ExpertWeight,
		},
	}
	params := confidence.Params{
		Prior:           cfg.Confidence.Prior,
		Span:            cfg.Confidence.Span,
		CountSaturation: cfg.Confidence.CountSaturation,
		HalfLifeDays:    cfg.Confidence.HalfLifeDays,
		Min:             cfg.Confidence.Min,
		Max:             cfg.Confidence.Max,
		SolvedThreshold: cfg.Confidence.SolvedThreshold,
	}

	buckets := memory.NewBuckets(cfg.Limits)
	tweets := twitter.NewFetcher(10 * time.Second)

	// Services (primary ports implementation)
	guardService = app.NewGuardService(buckets, issueRepo, solutionRepo, verificationRepo, apiKeyRepo, cfg.Limits)
	contributorService = app.NewContributorService(contributorRepo, thresholds)
	issueService = app.NewIssueService(guardService, issueRepo, contributorRepo, cfg.Rewards)
	solutionService = app.NewSolutionService(guardService, solutionRepo, issueRepo, contributorRepo, cfg.Rewards, params)
	verificationService = app.NewVerificationService(guardService, verificationRepo, solutionRepo, issueRepo, contributorRepo, thresholds, params, cfg.Rewards)
	apiKeyService = app.NewAPIKeyService(guardService, apiKeyRepo, contributorRepo, thresholds)
	claimService = app.NewClaimService(guardService, claimRepo, contributorRepo, tweets, cfg.Rewards)
	statsService = app.NewStatsService(statsRepo)
}

// IssueAdapter returns a new IssueAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func IssueAdapter() *cliadapter.IssueAdapter {
	return IssueAdapterWithOutput(os.Stdout)
}

// IssueAdapterWithOutput returns a new IssueAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func IssueAdapterWithOutput(out io.Writer) *cliadapter.IssueAdapter {
	once.Do(initServices)
	return cliadapter.NewIssueAdapter(issueService, out)
}

// SolutionAdapter returns a new SolutionAdapter writing to stdout.
func SolutionAdapter() *cliadapter.SolutionAdapter {
	return SolutionAdapterWithOutput(os.Stdout)
}

// SolutionAdapterWithOutput returns a new SolutionAdapter writing to the given output.
func SolutionAdapterWithOutput(out io.Writer) *cliadapter.SolutionAdapter {
	once.Do(initServices)
	return cliadapter.NewSolutionAdapter(solutionService, out)
}

// VerificationAdapter returns a new VerificationAdapter writing to stdout.
func VerificationAdapter() *cliadapter.VerificationAdapter {
	return VerificationAdapterWithOutput(os.Stdout)
}

// VerificationAdapterWithOutput returns a new VerificationAdapter writing to the given output.
func VerificationAdapterWithOutput(out io.Writer) *cliadapter.VerificationAdapter {
	once.Do(initServices)
	return cliadapter.NewVerificationAdapter(verificationService, out)
}

// ContributorAdapter returns a new ContributorAdapter writing to stdout.
func ContributorAdapter() *cliadapter.ContributorAdapter {
	return ContributorAdapterWithOutput(os.Stdout)
}

// ContributorAdapterWithOutput returns a new ContributorAdapter writing to the given output.
func ContributorAdapterWithOutput(out io.Writer) *cliadapter.ContributorAdapter {
	once.Do(initServices)
	return cliadapter.NewContributorAdapter(contributorService, out)
}

// APIKeyAdapter returns a new APIKeyAdapter writing to stdout.
func APIKeyAdapter() *cliadapter.APIKeyAdapter {
	return APIKeyAdapterWithOutput(os.Stdout)
}

// APIKeyAdapterWithOutput returns a new APIKeyAdapter writing to the given output.
func APIKeyAdapterWithOutput(out io.Writer) *cliadapter.APIKeyAdapter {
	once.Do(initServices)
	return cliadapter.NewAPIKeyAdapter(apiKeyService, out)
}

// ClaimAdapter returns a new ClaimAdapter writing to stdout.
func ClaimAdapter() *cliadapter.ClaimAdapter {
	return ClaimAdapterWithOutput(os.Stdout)
}

// ClaimAdapterWithOutput returns a new ClaimAdapter writing to the given output.
func ClaimAdapterWithOutput(out io.Writer) *cliadapter.ClaimAdapter {
	once.Do(initServices)
	return cliadapter.NewClaimAdapter(claimService, out)
}
