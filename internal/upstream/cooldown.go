package upstream

import (
	"sync"
	"time"
)

// Logical upstream endpoints tracked independently. A cooldown on one must
// never delay calls to the other.
const (
	EndpointModels = "models"
	EndpointChat   = "chat"
)

// CooldownTracker records consecutive failures per upstream endpoint and
// derives the delay to impose before the next attempt. Thread-safe via
// sync.Mutex. In-memory only (resets on restart).
type CooldownTracker struct {
	mu      sync.Mutex
	entries map[string]*cooldownEntry
	nowFunc func() time.Time // for testing
}

type cooldownEntry struct {
	failures    int
	lastFailure time.Time
	cooldownEnd time.Time
}

// NewCooldownTracker creates an empty tracker.
func NewCooldownTracker() *CooldownTracker {
	return &CooldownTracker{
		entries: make(map[string]*cooldownEntry),
		nowFunc: time.Now,
	}
}

// MarkFailure records a failure for an endpoint and extends its cooldown
// according to the consecutive-failure count.
func (ct *CooldownTracker) MarkFailure(endpoint string) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	now := ct.nowFunc()
	entry := ct.entries[endpoint]
	if entry == nil {
		entry = &cooldownEntry{}
		ct.entries[endpoint] = entry
	}

	entry.failures++
	entry.lastFailure = now
	entry.cooldownEnd = now.Add(backoffDelay(entry.failures))
}

// MarkSuccess resets the failure counter and cooldown for an endpoint.
func (ct *CooldownTracker) MarkSuccess(endpoint string) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	entry := ct.entries[endpoint]
	if entry == nil {
		return
	}

	entry.failures = 0
	entry.cooldownEnd = time.Time{}
}

// Remaining returns how long to wait before the endpoint may be called
// again. Returns 0 if no cooldown is active.
func (ct *CooldownTracker) Remaining(endpoint string) time.Duration {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	entry := ct.entries[endpoint]
	if entry == nil || entry.cooldownEnd.IsZero() {
		return 0
	}

	now := ct.nowFunc()
	if !now.Before(entry.cooldownEnd) {
		return 0
	}
	return entry.cooldownEnd.Sub(now)
}

// FailureCount returns the current consecutive-failure count for an endpoint.
func (ct *CooldownTracker) FailureCount(endpoint string) int {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	entry := ct.entries[endpoint]
	if entry == nil {
		return 0
	}
	return entry.failures
}

// backoffDelay computes the cooldown after n consecutive failures:
// min(30s, 1s * 2^min(n-1, 5))
//
//	1 failure  → 1s
//	2 failures → 2s
//	3 failures → 4s
//	...
//	6+ failures → 30s (cap)
//
// Monotonic non-decreasing in n, bounded by the cap.
func backoffDelay(failures int) time.Duration {
	n := max(1, failures)
	exp := min(n-1, 5)
	d := time.Second << exp
	return min(d, 30*time.Second)
}
