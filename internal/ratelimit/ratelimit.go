// Package ratelimit provides fixed-window keyed rate limiting for the
// abuse-prevention layer. Counters live in process memory and reset on
// restart; that is an accepted single-instance scope. The window is fixed,
// not sliding, so a client can burst up to twice the cap across a window
// boundary — a documented O(1)-memory approximation.
package ratelimit

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Remaining  int
	ResetsAt   time.Time
}

type record struct {
	count      int
	resetAt    time.Time
	lastAction time.Time
}

// Bucket is a keyed fixed-window limiter with an optional per-key cooldown
// between consecutive actions. Records expire from the backing cache one
// window after last touch, so idle keys cost nothing.
type Bucket struct {
	mu       sync.Mutex
	cache    *gocache.Cache
	cap      int
	window   time.Duration
	cooldown time.Duration

	now func() time.Time
}

// NewBucket creates a bucket allowing cap actions per window per key.
// cooldown of zero disables the per-action spacing check.
func NewBucket(cap int, window, cooldown time.Duration) *Bucket {
	return &Bucket{
		cache:    gocache.New(window, 2*window),
		cap:      cap,
		window:   window,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Take records an action for key and reports whether it is allowed.
// A denied action is not counted against the window.
func (b *Bucket) Take(key string) Decision {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()

	var rec *record
	if v, ok := b.cache.Get(key); ok {
		rec = v.(*record)
	}

	if rec == nil || now.After(rec.resetAt) {
		// Window rollover: the counter resets fully.
		rec = &record{count: 1, resetAt: now.Add(b.window), lastAction: now}
		b.cache.Set(key, rec, b.window)
		return Decision{Allowed: true, Remaining: b.cap - 1, ResetsAt: rec.resetAt}
	}

	if b.cooldown > 0 {
		if elapsed := now.Sub(rec.lastAction); elapsed < b.cooldown {
			return Decision{
				Allowed:    false,
				RetryAfter: b.cooldown - elapsed,
				Remaining:  b.cap - rec.count,
				ResetsAt:   rec.resetAt,
			}
		}
	}

	if rec.count >= b.cap {
		return Decision{
			Allowed:    false,
			RetryAfter: rec.resetAt.Sub(now),
			Remaining:  0,
			ResetsAt:   rec.resetAt,
		}
	}

	rec.count++
	rec.lastAction = now
	b.cache.Set(key, rec, b.window)
	return Decision{Allowed: true, Remaining: b.cap - rec.count, ResetsAt: rec.resetAt}
}

// Reset forgets all state for key. Used by tests.
func (b *Bucket) Reset(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache.Delete(key)
}
