package admission

import (
	"sync"
	"time"
)

// BreakerState mirrors the three states of the teacher's breaker: Closed
// admits everything, Open sheds everything, HalfOpen lets a single probe
// through to decide which way to go next.
type BreakerState int

const (
	Closed BreakerState = iota
	Open
	HalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker opens when the scheduler's ready set reaches the
// threshold, and closes again once a probe shows the timeline has drained
// back under threshold with at least one slot free.
type CircuitBreaker struct {
	mu sync.Mutex

	state     BreakerState
	openedAt  time.Time
	cooldown  time.Duration
	threshold int

	probeInFlight bool
}

// NewCircuitBreaker trips open once Saturation reports >= threshold and
// stays open for cooldown before allowing a half-open probe.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:     Closed,
		threshold: threshold,
		cooldown:  cooldown,
	}
}

// Observe feeds the breaker the current saturation reading: the ready-set
// size, and whether every slot is occupied. Only a ready set at or over
// threshold trips a Closed breaker; busy slots alone never do, they only
// keep a half-open probe from closing it. It is the only place state
// transitions happen.
func (b *CircuitBreaker) Observe(now time.Time, saturation int, saturated bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		if saturation >= b.threshold {
			b.state = Open
			b.openedAt = now
		}
	case Open:
		if now.Sub(b.openedAt) >= b.cooldown {
			b.state = HalfOpen
			b.probeInFlight = false
		}
	case HalfOpen:
		if b.probeInFlight {
			if saturation < b.threshold && !saturated {
				b.state = Closed
			} else {
				b.state = Open
				b.openedAt = now
			}
			b.probeInFlight = false
		}
	}
}

// Allow reports whether a submission may proceed. In HalfOpen, exactly one
// caller is let through as the probe; everyone else is shed until Observe
// resolves that probe one way or the other.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case Open:
		return false
	case HalfOpen:
		if b.probeInFlight {
			return false
		}
		b.probeInFlight = true
		return true
	default:
		return false
	}
}

// State returns the current breaker state for metrics/debug surfaces.
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
