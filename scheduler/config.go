package scheduler

import (
	"time"

	"github.com/riftengine/taskcore/admission"
)

// Config holds the tunables for New. Zero-value fields are replaced with
// DefaultConfig's equivalents by New, except that Admission is replaced as
// a whole only when its RatePerSecond is zero and WatchdogThreshold is
// left as given.
type Config struct {
	// Workers is the number of worker goroutines (and Slots) the scheduler
	// owns. One Slot per worker, per spec 5.
	Workers int

	// Admission configures the rate limiter and circuit breaker gating
	// Submit calls.
	Admission admission.Config

	// PanicQuarantineThreshold is how many consecutive task panics on one
	// slot before that slot is quarantined.
	PanicQuarantineThreshold int

	// QuarantineCooldown is how long a quarantined slot stays unpushable
	// before the scheduler tries it again.
	QuarantineCooldown time.Duration

	// WatchdogThreshold is carried in the config but not read by the
	// Scheduler: no watchdog runs, and no task is timed or flagged for
	// occupying a slot, whatever this value is.
	WatchdogThreshold time.Duration

	// TraceEventCapacity bounds the in-memory trace.Store ring buffer.
	TraceEventCapacity int
}

// DefaultConfig matches the teacher's scheduler defaults, scaled to a
// single-process cooperative scheduler instead of a distributed control
// plane.
func DefaultConfig() Config {
	return Config{
		Workers:                  4,
		Admission:                admission.DefaultConfig(),
		PanicQuarantineThreshold: 3,
		QuarantineCooldown:       30 * time.Second,
		WatchdogThreshold:        5 * time.Second,
		TraceEventCapacity:       4096,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.Admission.RatePerSecond == 0 {
		c.Admission = d.Admission
	}
	if c.PanicQuarantineThreshold <= 0 {
		c.PanicQuarantineThreshold = d.PanicQuarantineThreshold
	}
	if c.QuarantineCooldown <= 0 {
		c.QuarantineCooldown = d.QuarantineCooldown
	}
	if c.TraceEventCapacity <= 0 {
		c.TraceEventCapacity = d.TraceEventCapacity
	}
	return c
}
