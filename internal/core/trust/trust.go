// Package trust maps contributor reputation to a discrete tier and a
// verification weight. Verifications from contributors with a history of
// accurate reports count for more than raw volume from new identities.
package trust

// Tier is a discrete contributor classification derived from reputation.
type Tier string

const (
	TierNew         Tier = "new"
	TierEstablished Tier = "established"
	TierTrusted     Tier = "trusted"
	TierExpert      Tier = "expert"
)

// Thresholds holds the reputation boundaries and per-tier verification
// weights. A single named structure so the tuning lives in one place.
type Thresholds struct {
	Established int
	Trusted     int
	Expert      int

	Weights map[Tier]float64
}

// DefaultThresholds returns the production tier boundaries and weights.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Established: 50,
		Trusted:     200,
		Expert:      500,
		Weights: map[Tier]float64{
			TierNew:         1.0,
			TierEstablished: 1.5,
			TierTrusted:     2.0,
			TierExpert:      3.0,
		},
	}
}

// TierOf derives the tier for a reputation score. Monotonic step function;
// negative scores are treated as zero.
func (t Thresholds) TierOf(reputation int) Tier {
	switch {
	case reputation >= t.Expert:
		return TierExpert
	case reputation >= t.Trusted:
		return TierTrusted
	case reputation >= t.Established:
		return TierEstablished
	default:
		return TierNew
	}
}

// Weight returns the verification weight for a tier. Unknown tiers fall
// back to the new-contributor weight.
func (t Thresholds) Weight(tier Tier) float64 {
	if w, ok := t.Weights[tier]; ok {
		return w
	}
	return t.Weights[TierNew]
}

// Outcome is a verification result reported against a solution.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomePartial Outcome = "partial"
)

// ValidOutcome reports whether s names a known outcome.
func ValidOutcome(s string) bool {
	switch Outcome(s) {
	case OutcomeSuccess, OutcomeFailure, OutcomePartial:
		return true
	}
	return false
}

// Apply splits a trust weight across the weighted success and failure
// accumulators for the given outcome. Success and failure credit the full
// weight to one side; partial splits it evenly.
func Apply(outcome Outcome, weight float64) (successDelta, failureDelta float64) {
	switch outcome {
	case OutcomeSuccess:
		return weight, 0
	case OutcomeFailure:
		return 0, weight
	case OutcomePartial:
		return weight / 2, weight / 2
	}
	return 0, 0
}
