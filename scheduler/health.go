package scheduler

import (
	"log"
	"time"

	"github.com/riftengine/taskcore/observability"
)

// workerHealth tracks consecutive panics per slot so a task body that
// reliably crashes its worker gets quarantined instead of taking down the
// slot's throughput forever. It never inspects *why* a task panicked —
// only that it did.
type workerHealth struct {
	consecutivePanics []int
	quarantinedUntil  []time.Time
}

func newWorkerHealth(n int) *workerHealth {
	return &workerHealth{
		consecutivePanics: make([]int, n),
		quarantinedUntil:  make([]time.Time, n),
	}
}

// recordPanic returns true if idx just crossed the quarantine threshold.
func (h *workerHealth) recordPanic(idx, threshold int) bool {
	h.consecutivePanics[idx]++
	observability.TaskPanics.Inc()
	return h.consecutivePanics[idx] >= threshold
}

func (h *workerHealth) recordSuccess(idx int) {
	h.consecutivePanics[idx] = 0
}

func (h *workerHealth) quarantine(idx int, until time.Time) {
	h.quarantinedUntil[idx] = until
	h.consecutivePanics[idx] = 0
}

// expired returns the slot indices whose quarantine window has elapsed as
// of now, clearing their deadlines.
func (h *workerHealth) expired(now time.Time) []int {
	var out []int
	for i, until := range h.quarantinedUntil {
		if !until.IsZero() && !now.Before(until) {
			out = append(out, i)
			h.quarantinedUntil[i] = time.Time{}
		}
	}
	return out
}

func (h *workerHealth) quarantinedCount() int {
	n := 0
	for _, until := range h.quarantinedUntil {
		if !until.IsZero() {
			n++
		}
	}
	return n
}

func logPanic(slotIdx int, r interface{}) {
	log.Printf("scheduler: task on slot %d panicked: %v", slotIdx, r)
}
