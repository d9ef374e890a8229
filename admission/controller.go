package admission

import (
	"time"

	"github.com/riftengine/taskcore/taskid"
)

// Controller composes the rate Limiter and the CircuitBreaker into the
// single admission decision a Submit call needs.
type Controller struct {
	limiter *Limiter
	breaker *CircuitBreaker
}

// Config holds the tunables for NewController.
type Config struct {
	// RatePerSecond and Burst size the per-priority token bucket.
	RatePerSecond float64
	Burst         int

	// SaturationThreshold is the ready-set size at which the breaker trips.
	SaturationThreshold int
	// Cooldown is how long the breaker stays Open before probing.
	Cooldown time.Duration
}

// DefaultConfig matches the teacher's defaults: generous burst, a breaker
// that trips only once the ready set badly outgrows the slot count.
func DefaultConfig() Config {
	return Config{
		RatePerSecond:       1000,
		Burst:               256,
		SaturationThreshold: 4096,
		Cooldown:            2 * time.Second,
	}
}

// NewController builds a Controller from cfg.
func NewController(cfg Config) *Controller {
	return &Controller{
		limiter: NewLimiter(cfg.RatePerSecond, cfg.Burst),
		breaker: NewCircuitBreaker(cfg.SaturationThreshold, cfg.Cooldown),
	}
}

// Allow reports whether a submission at priority p is admitted right now.
// Both gates must agree; either one shedding load sheds the submission.
func (c *Controller) Allow(p taskid.Priority) bool {
	return c.breaker.Allow() && c.limiter.Allow(p)
}

// Observe feeds the breaker the latest saturation reading, typically once
// per Tick.
func (c *Controller) Observe(now time.Time, readySetSize int, allSlotsBusy bool) {
	c.breaker.Observe(now, readySetSize, allSlotsBusy)
}

// BreakerState exposes the breaker's current state for metrics/debug.
func (c *Controller) BreakerState() BreakerState {
	return c.breaker.State()
}
