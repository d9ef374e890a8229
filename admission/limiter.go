// Package admission gates Submit calls before a task ever becomes a
// Timeline entry: a token bucket rate limits submissions per priority
// class, and a circuit breaker sheds load when the ready set gets large
// enough that admitting more work could never be serviced. Neither ever reaches into a running Tick — they only decide
// whether a submission is accepted.
package admission

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/riftengine/taskcore/taskid"
)

// Limiter rate-limits submissions per taskid.Priority bucket using a
// token bucket per bucket, so a flood of Background submissions cannot
// crowd out the rate available to Critical ones.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[taskid.Priority]*rate.Limiter
	r        rate.Limit
	b        int
}

// NewLimiter builds a Limiter admitting r submissions/sec per priority
// bucket, with burst b.
func NewLimiter(r float64, b int) *Limiter {
	return &Limiter{
		buckets: make(map[taskid.Priority]*rate.Limiter),
		r:       rate.Limit(r),
		b:       b,
	}
}

// Allow reports whether a submission at priority p may proceed right now.
func (l *Limiter) Allow(p taskid.Priority) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[p]
	if !ok {
		b = rate.NewLimiter(l.r, l.b)
		l.buckets[p] = b
	}
	return b.Allow()
}
