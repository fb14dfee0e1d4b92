// Package confidence converts a solution's verification counters and
// recency into a bounded trust score.
//
// The score combines three signals: the weighted success rate, a count
// factor that saturates with evidence volume (a single verification cannot
// swing the score to an extreme), and a half-life decay that discounts
// stale evidence.
package confidence

import (
	"math"
	"time"
)

// Params holds every tunable constant of the scoring formula. One named
// structure so decay, prior and bounds can be tuned and tested
// independently of the engine.
type Params struct {
	// Prior is the visible-but-unproven score for zero verifications.
	Prior float64
	// Span is the headroom above the prior a fully verified solution earns.
	Span float64
	// CountSaturation divides log10(count+1); with 2 the count factor
	// saturates near 99 verifications.
	CountSaturation float64
	// HalfLifeDays is the evidence half-life for time decay.
	HalfLifeDays float64
	// Min and Max clamp the final score.
	Min float64
	Max float64
	// SolvedThreshold is the score at which an issue owning the solution
	// is marked solved.
	SolvedThreshold float64
}

// DefaultParams returns the production scoring constants.
func DefaultParams() Params {
	return Params{
		Prior:           0.3,
		Span:            0.7,
		CountSaturation: 2,
		HalfLifeDays:    180,
		Min:             0.1,
		Max:             0.99,
		SolvedThreshold: 0.7,
	}
}

// Score computes the confidence for a solution from its post-update
// counters. lastVerifiedAt is nil when the solution has never been
// verified. The result is always within [p.Min, p.Max], never NaN, even
// for inconsistent counters such as weightedSuccess > verificationCount.
func Score(verificationCount int, weightedSuccess float64, lastVerifiedAt *time.Time, now time.Time, p Params) float64 {
	base := p.Prior
	if verificationCount > 0 {
		successRate := weightedSuccess / float64(verificationCount)
		countFactor := math.Min(1, math.Log10(float64(verificationCount)+1)/p.CountSaturation)
		base = p.Prior + p.Span*successRate*countFactor
	}

	decay := 1.0
	if lastVerifiedAt != nil {
		days := now.Sub(*lastVerifiedAt).Hours() / 24
		if days > 0 {
			decay = math.Pow(0.5, days/p.HalfLifeDays)
		}
	}

	return clamp(base*decay, p.Min, p.Max)
}

func clamp(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
