package admission

import (
	"testing"
	"time"

	"github.com/riftengine/taskcore/taskid"
)

func TestLimiterAllowsWithinBurst(t *testing.T) {
	l := NewLimiter(1, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow(taskid.Normal) {
			t.Fatalf("request %d should be within burst", i)
		}
	}
	if l.Allow(taskid.Normal) {
		t.Fatalf("request past burst should be rejected")
	}
}

func TestLimiterBucketsAreIndependentPerPriority(t *testing.T) {
	l := NewLimiter(1, 1)
	if !l.Allow(taskid.Background) {
		t.Fatalf("background bucket should start full")
	}
	if l.Allow(taskid.Background) {
		t.Fatalf("background bucket should be empty now")
	}
	if !l.Allow(taskid.Critical) {
		t.Fatalf("critical bucket is independent and should still be full")
	}
}

func TestCircuitBreakerOpensOnSaturation(t *testing.T) {
	cb := NewCircuitBreaker(10, 50*time.Millisecond)
	now := time.Now()
	cb.Observe(now, 2, false)
	if !cb.Allow() {
		t.Fatalf("closed breaker should admit")
	}

	cb.Observe(now, 20, false)
	if cb.State() != Open {
		t.Fatalf("expected Open after crossing threshold, got %v", cb.State())
	}
	if cb.Allow() {
		t.Fatalf("open breaker must shed load")
	}
}

func TestCircuitBreakerHalfOpenProbeThenCloses(t *testing.T) {
	cb := NewCircuitBreaker(10, 10*time.Millisecond)
	start := time.Now()
	cb.Observe(start, 20, false)
	if cb.State() != Open {
		t.Fatalf("expected Open, got %v", cb.State())
	}

	later := start.Add(20 * time.Millisecond)
	cb.Observe(later, 20, false)
	if cb.State() != HalfOpen {
		t.Fatalf("expected HalfOpen after cooldown, got %v", cb.State())
	}

	if !cb.Allow() {
		t.Fatalf("half-open breaker must admit exactly one probe")
	}
	if cb.Allow() {
		t.Fatalf("half-open breaker must shed everything else while a probe is in flight")
	}

	cb.Observe(later, 1, false)
	if cb.State() != Closed {
		t.Fatalf("expected Closed after a healthy probe, got %v", cb.State())
	}
}

func TestCircuitBreakerHalfOpenProbeReopensOnContinuedSaturation(t *testing.T) {
	cb := NewCircuitBreaker(10, 10*time.Millisecond)
	start := time.Now()
	cb.Observe(start, 20, false)
	later := start.Add(20 * time.Millisecond)
	cb.Observe(later, 20, false)
	cb.Allow() // consume the probe slot

	cb.Observe(later, 30, false)
	if cb.State() != Open {
		t.Fatalf("expected Open after a failed probe, got %v", cb.State())
	}
}

func TestControllerAllowRequiresBothGates(t *testing.T) {
	c := NewController(Config{RatePerSecond: 1000, Burst: 10, SaturationThreshold: 5, Cooldown: time.Second})
	if !c.Allow(taskid.Normal) {
		t.Fatalf("expected admission under threshold")
	}
	c.Observe(time.Now(), 100, false)
	if c.Allow(taskid.Normal) {
		t.Fatalf("expected rejection once breaker trips, regardless of rate limit")
	}
}
