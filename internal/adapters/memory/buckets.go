// Package memory holds the in-process adapters backing the abuse
// prevention layer: the keyed rate-limit buckets that gate requests
// before any storage is touched.
package memory

import (
	"time"

	"github.com/agentoverflow/agentdb/internal/config"
	"github.com/agentoverflow/agentdb/internal/ratelimit"
)

// Buckets bundles the per-concern rate limiters. All counters are
// process-local and reset on restart.
type Buckets struct {
	// IP limits every mutating request by source address.
	IP *ratelimit.Bucket

	// ClaimRequest and ClaimSubmit gate the twitter claim flow by IP.
	ClaimRequest *ratelimit.Bucket
	ClaimSubmit  *ratelimit.Bucket

	// APIKey gates key issuance by IP.
	APIKey *ratelimit.Bucket
}

// NewBuckets builds the limiter set from the configured caps.
func NewBuckets(limits config.Limits) *Buckets {
	return &Buckets{
		IP: ratelimit.NewBucket(limits.RequestsPerMinute, time.Minute, 0),
		ClaimRequest: ratelimit.NewBucket(
			limits.ClaimRequestsPerHour, time.Hour,
			time.Duration(limits.ClaimRequestCooldownSec)*time.Second,
		),
		ClaimSubmit: ratelimit.NewBucket(
			limits.ClaimSubmitsPerHour, time.Hour,
			time.Duration(limits.ClaimSubmitCooldownSec)*time.Second,
		),
		APIKey: ratelimit.NewBucket(limits.KeysPerHour, time.Hour, 0),
	}
}
