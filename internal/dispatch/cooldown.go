// Package dispatch routes inbound surface events to their handlers.
//
// This file implements a lightweight, in-memory, token-bucket cooldown for
// API-heavy actions (close, reopen, resend, ping). Buckets are keyed by
// (user, action kind) so one impatient host hammering Refresh cannot starve
// anyone else, and idle buckets are evicted opportunistically during lookups
// to bound memory in a single-process deployment.
package dispatch

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/supperjio/jiobot/internal/callback"
)

// bucket holds a single limiter and the last time it was seen, so idle
// entries can be evicted.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Cooldown is a per-(user, action) token-bucket limiter. Safe for concurrent
// use, though the dispatcher drives it from one goroutine.
type Cooldown struct {
	rps   rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket

	ttl      time.Duration
	cleanupN uint64
}

// NewCooldown constructs a Cooldown replenishing rps tokens per second with
// the given burst. Burst values <= 0 are coerced to 1.
func NewCooldown(rps float64, burst int) *Cooldown {
	if burst <= 0 {
		burst = 1
	}
	return &Cooldown{
		rps:     rate.Limit(rps),
		burst:   burst,
		buckets: make(map[string]*bucket),
		ttl:     10 * time.Minute,
	}
}

// Allow reports whether the user may perform the action now, consuming one
// token when it does.
func (cd *Cooldown) Allow(userID int64, kind callback.Kind) bool {
	return cd.get(strconv.FormatInt(userID, 10) + ":" + string(kind)).Allow()
}

// get returns (and refreshes) the bucket for key, creating it if absent.
// Eviction runs before the lookup so an idle bucket is dropped even when it
// is the one being fetched.
func (cd *Cooldown) get(key string) *rate.Limiter {
	now := time.Now()

	cd.mu.Lock()
	defer cd.mu.Unlock()

	cd.cleanupN++
	if cd.cleanupN >= 5000 {
		for k, b := range cd.buckets {
			if now.Sub(b.lastSeen) >= cd.ttl {
				delete(cd.buckets, k)
			}
		}
		cd.cleanupN = 0
	}

	if b, ok := cd.buckets[key]; ok {
		b.lastSeen = now
		return b.limiter
	}

	lim := rate.NewLimiter(cd.rps, cd.burst)
	cd.buckets[key] = &bucket{limiter: lim, lastSeen: now}
	return lim
}
