package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Actions with their own budgets.
const (
	ActionSendMessage = "send_message"
	ActionUpload      = "upload"
	ActionAuth        = "auth"
	ActionRequest     = "request"
)

// Policy is a token bucket: Burst tokens, refilled one every Every.
type Policy struct {
	Burst int
	Every time.Duration
}

var defaultPolicies = map[string]Policy{
	// 10 messages per minute
	ActionSendMessage: {Burst: 10, Every: 6 * time.Second},
	// 20 uploads per minute
	ActionUpload: {Burst: 20, Every: 3 * time.Second},
	// 5 sign-in attempts per minute
	ActionAuth: {Burst: 5, Every: 12 * time.Second},
	// 60 requests per minute
	ActionRequest: {Burst: 60, Every: time.Second},
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key and action.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*entry
	policies map[string]Policy
	now      func() time.Time
}

func NewRateLimiter() *RateLimiter {
	policies := make(map[string]Policy, len(defaultPolicies))
	for k, v := range defaultPolicies {
		policies[k] = v
	}
	return &RateLimiter{
		buckets:  make(map[string]*entry),
		policies: policies,
		now:      time.Now,
	}
}

// SetPolicy overrides the budget of an action. Existing buckets keep their
// old policy until they are cleaned up.
func (rl *RateLimiter) SetPolicy(action string, p Policy) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.policies[action] = p
}

// Allow consumes a token for key and action. When the bucket is empty it
// reports how long until the next token.
func (rl *RateLimiter) Allow(key, action string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	e, ok := rl.buckets[key+":"+action]
	if !ok {
		p, found := rl.policies[action]
		if !found {
			p = rl.policies[ActionRequest]
		}
		e = &entry{limiter: rate.NewLimiter(rate.Every(p.Every), p.Burst)}
		rl.buckets[key+":"+action] = e
	}
	e.lastSeen = now
	rl.mu.Unlock()

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, e := range rl.buckets {
		if now.Sub(e.lastSeen) > maxIdle {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanupRoutine runs Cleanup every interval until stop is closed.
func (rl *RateLimiter) StartCleanupRoutine(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-stop:
				return
			}
		}
	}()
}
