package upstream

import (
	"sync"
	"testing"
	"time"
)

func newTestTracker(now time.Time) (*CooldownTracker, *time.Time) {
	current := now
	ct := NewCooldownTracker()
	ct.nowFunc = func() time.Time { return current }
	return ct, &current
}

func TestCooldown_InitiallyClear(t *testing.T) {
	ct := NewCooldownTracker()
	if ct.Remaining(EndpointChat) != 0 {
		t.Error("new endpoint should have no cooldown")
	}
	if ct.FailureCount(EndpointChat) != 0 {
		t.Error("new endpoint should have 0 failures")
	}
}

func TestCooldown_BackoffMonotonicAndCapped(t *testing.T) {
	// Formula: 1s, 2s, 4s, 8s, 16s, 30s, 30s...
	expected := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}

	prev := time.Duration(0)
	for i, want := range expected {
		got := backoffDelay(i + 1)
		if got != want {
			t.Errorf("backoffDelay(%d) = %v, want %v", i+1, got, want)
		}
		if got < prev {
			t.Errorf("backoffDelay(%d) = %v decreased from %v", i+1, got, prev)
		}
		prev = got
	}
}

func TestCooldown_Escalation(t *testing.T) {
	now := time.Now()
	ct, current := newTestTracker(now)

	// 1st failure → 1s cooldown
	ct.MarkFailure(EndpointChat)
	if got := ct.Remaining(EndpointChat); got != time.Second {
		t.Errorf("after 1st failure remaining = %v, want 1s", got)
	}

	// Cooldown expires
	*current = now.Add(1100 * time.Millisecond)
	if got := ct.Remaining(EndpointChat); got != 0 {
		t.Errorf("expired cooldown remaining = %v, want 0", got)
	}

	// 2nd failure → 2s from now
	ct.MarkFailure(EndpointChat)
	if got := ct.Remaining(EndpointChat); got != 2*time.Second {
		t.Errorf("after 2nd failure remaining = %v, want 2s", got)
	}
	if got := ct.FailureCount(EndpointChat); got != 2 {
		t.Errorf("failure count = %d, want 2", got)
	}
}

func TestCooldown_SuccessResets(t *testing.T) {
	ct, _ := newTestTracker(time.Now())

	ct.MarkFailure(EndpointModels)
	ct.MarkFailure(EndpointModels)
	ct.MarkSuccess(EndpointModels)

	if got := ct.FailureCount(EndpointModels); got != 0 {
		t.Errorf("failure count after success = %d, want 0", got)
	}
	if got := ct.Remaining(EndpointModels); got != 0 {
		t.Errorf("remaining after success = %v, want 0", got)
	}

	// Next failure starts from the bottom of the curve again.
	ct.MarkFailure(EndpointModels)
	if got := ct.Remaining(EndpointModels); got != time.Second {
		t.Errorf("remaining after reset+failure = %v, want 1s", got)
	}
}

func TestCooldown_EndpointsIndependent(t *testing.T) {
	ct, _ := newTestTracker(time.Now())

	ct.MarkFailure(EndpointChat)
	ct.MarkFailure(EndpointChat)
	ct.MarkFailure(EndpointChat)

	if got := ct.Remaining(EndpointModels); got != 0 {
		t.Errorf("chat cooldown leaked into models endpoint: remaining = %v", got)
	}
	if got := ct.FailureCount(EndpointModels); got != 0 {
		t.Errorf("chat failures leaked into models endpoint: count = %d", got)
	}
}

func TestCooldown_ConcurrentFailures(t *testing.T) {
	ct := NewCooldownTracker()

	var wg sync.WaitGroup
	const n = 50
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ct.MarkFailure(EndpointChat)
		}()
	}
	wg.Wait()

	if got := ct.FailureCount(EndpointChat); got != n {
		t.Errorf("concurrent failure count = %d, want %d", got, n)
	}
}
