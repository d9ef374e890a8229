package scheduler

import (
	"time"

	"github.com/riftengine/taskcore/future"
)

// EntrySnapshot is the debug-surface projection of one live Timeline entry.
type EntrySnapshot struct {
	TaskID               string        `json:"task_id"`
	Priority             string        `json:"priority"`
	Status               string        `json:"status"`
	LastPreemptTimepoint time.Time     `json:"last_preempt_timepoint"`
}

// SlotSnapshot is the debug-surface projection of one worker slot.
type SlotSnapshot struct {
	Index        int  `json:"index"`
	HasPending   bool `json:"has_pending"`
	HasExecuting bool `json:"has_executing"`
	Quarantined  bool `json:"quarantined"`
}

// Snapshot is the full point-in-time debug dump the admin HTTP surface
// serves at /scheduler/debug/snapshot.
type Snapshot struct {
	Entries       []EntrySnapshot `json:"entries"`
	Slots         []SlotSnapshot  `json:"slots"`
	PendingCount  int             `json:"pending_combinators"`
	BreakerState  string          `json:"circuit_breaker_state"`
}

// Snapshot captures the current state of the Timeline, Slots, and
// admission controller for debugging. It takes s.mu briefly to read the
// pending combinator count consistently with the Timeline snapshot.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	pendingCount := len(s.pending)
	entries := s.timeline.Snapshot()
	s.mu.Unlock()

	out := Snapshot{
		PendingCount: pendingCount,
		BreakerState: s.admit.BreakerState().String(),
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, EntrySnapshot{
			TaskID:               e.ID.String(),
			Priority:             e.Priority.String(),
			Status:               statusOf(e.Handle),
			LastPreemptTimepoint: e.LastPreemptTimepoint,
		})
	}
	for i, sl := range s.slots {
		q := sl.Query()
		out.Slots = append(out.Slots, SlotSnapshot{
			Index:        i,
			HasPending:   q.HasPending,
			HasExecuting: q.HasExecuting,
			Quarantined:  sl.Quarantined(),
		})
	}
	return out
}

func statusOf(h future.Handle) string {
	return h.FetchStatus().String()
}
