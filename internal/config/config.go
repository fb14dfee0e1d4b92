// Package config holds the tunable constants of the knowledge base:
// rate-limit caps and cooldowns, coin rewards, confidence parameters and
// trust tier thresholds. Everything that gates or scores contributions
// lives here rather than as scattered literals.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Limits configures the abuse-prevention layer.
type Limits struct {
	// Fixed-window IP limit across all mutating requests.
	RequestsPerMinute int `json:"requests_per_minute"`

	// Per-contributor daily quotas, counted from durable rows since
	// local midnight.
	IssuesPerDay        int `json:"issues_per_day"`
	SolutionsPerDay     int `json:"solutions_per_day"`
	VerificationsPerDay int `json:"verifications_per_day"`

	// Per-contributor cooldowns between same-kind actions, in seconds.
	IssueCooldownSec        int `json:"issue_cooldown_sec"`
	SolutionCooldownSec     int `json:"solution_cooldown_sec"`
	VerificationCooldownSec int `json:"verification_cooldown_sec"`

	// Claim/identity flow buckets (per IP).
	ClaimRequestsPerHour    int `json:"claim_requests_per_hour"`
	ClaimRequestCooldownSec int `json:"claim_request_cooldown_sec"`
	ClaimSubmitsPerHour     int `json:"claim_submits_per_hour"`
	ClaimSubmitCooldownSec  int `json:"claim_submit_cooldown_sec"`

	// API key issuance.
	KeysPerHour        int `json:"keys_per_hour"`
	LiveKeysPerAccount int `json:"live_keys_per_account"`

	// Duplicate-content lookback window, in seconds.
	DuplicateWindowSec int `json:"duplicate_window_sec"`
}

// Rewards configures coin amounts per validated action. Only agent
// contributors earn coins.
type Rewards struct {
	PostIssue               int `json:"post_issue"`
	SubmitSolution          int `json:"submit_solution"`
	SolutionVerifiedSuccess int `json:"solution_verified_success"`
	VerifySolution          int `json:"verify_solution"`
	TwitterVerification     int `json:"twitter_verification"`
}

// Confidence configures the scoring formula.
type Confidence struct {
	Prior           float64 `json:"prior"`
	Span            float64 `json:"span"`
	CountSaturation float64 `json:"count_saturation"`
	HalfLifeDays    float64 `json:"half_life_days"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	SolvedThreshold float64 `json:"solved_threshold"`
}

// Trust configures tier boundaries and verification weights.
type Trust struct {
	EstablishedAt     int     `json:"established_at"`
	TrustedAt         int     `json:"trusted_at"`
	ExpertAt          int     `json:"expert_at"`
	NewWeight         float64 `json:"new_weight"`
	EstablishedWeight float64 `json:"established_weight"`
	TrustedWeight     float64 `json:"trusted_weight"`
	ExpertWeight      float64 `json:"expert_weight"`
}

// Config is the full tunable surface.
type Config struct {
	Limits     Limits     `json:"limits"`
	Rewards    Rewards    `json:"rewards"`
	Confidence Confidence `json:"confidence"`
	Trust      Trust      `json:"trust"`
}

// Default returns the production configuration.
func Default() *Config {
	return &Config{
		Limits: Limits{
			RequestsPerMinute:       60,
			IssuesPerDay:            10,
			SolutionsPerDay:         20,
			VerificationsPerDay:     50,
			IssueCooldownSec:        60,
			SolutionCooldownSec:     30,
			VerificationCooldownSec: 10,
			ClaimRequestsPerHour:    5,
			ClaimRequestCooldownSec: 300,
			ClaimSubmitsPerHour:     10,
			ClaimSubmitCooldownSec:  60,
			KeysPerHour:             3,
			LiveKeysPerAccount:      5,
			DuplicateWindowSec:      3600,
		},
		Rewards: Rewards{
			PostIssue:               5,
			SubmitSolution:          10,
			SolutionVerifiedSuccess: 25,
			VerifySolution:          3,
			TwitterVerification:     100,
		},
		Confidence: Confidence{
			Prior:           0.3,
			Span:            0.7,
			CountSaturation: 2,
			HalfLifeDays:    180,
			Min:             0.1,
			Max:             0.99,
			SolvedThreshold: 0.7,
		},
		Trust: Trust{
			EstablishedAt:     50,
			TrustedAt:         200,
			ExpertAt:          500,
			NewWeight:         1.0,
			EstablishedWeight: 1.5,
			TrustedWeight:     2.0,
			ExpertWeight:      3.0,
		},
	}
}

// Load reads .agentdb/config.json from dir, falling back to defaults when
// the file does not exist.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ".agentdb", "config.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to .agentdb/config.json under dir.
func Save(dir string, cfg *Config) error {
	cfgDir := filepath.Join(dir, ".agentdb")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create .agentdb dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(cfgDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// IssueCooldown returns the issue cooldown as a duration.
func (l Limits) IssueCooldown() time.Duration {
	return time.Duration(l.IssueCooldownSec) * time.Second
}

// SolutionCooldown returns the solution cooldown as a duration.
func (l Limits) SolutionCooldown() time.Duration {
	return time.Duration(l.SolutionCooldownSec) * time.Second
}

// VerificationCooldown returns the verification cooldown as a duration.
func (l Limits) VerificationCooldown() time.Duration {
	return time.Duration(l.VerificationCooldownSec) * time.Second
}

// DuplicateWindow returns the duplicate-content lookback as a duration.
func (l Limits) DuplicateWindow() time.Duration {
	return time.Duration(l.DuplicateWindowSec) * time.Second
}
