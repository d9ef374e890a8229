// Package schedule implements the Schedule Timeline: the core selection
// algorithm that decides, tick by tick, which ready tasks run next given a
// fixed number of worker slots, without ever permanently starving
// low-priority work.
package schedule

import (
	"sort"
	"time"

	"github.com/riftengine/taskcore/future"
	"github.com/riftengine/taskcore/slot"
	"github.com/riftengine/taskcore/taskid"
)

// InterruptPeriod is the nominal tick cadence the starvation window is
// derived from.
const InterruptPeriod = 16 * time.Millisecond

// StarvationFactor sets StarvationPeriod as a multiple of InterruptPeriod.
const StarvationFactor = 4

// StarvationPeriod is the base width of the starvation window (spec 4.5
// step 3): the range of last_preempt_timepoint values considered equally
// starved before priority is allowed to reorder them.
const StarvationPeriod = InterruptPeriod * StarvationFactor

// Tracer receives optional, synchronous notifications of Timeline activity.
// Every method is a no-op in NoopTracer; payloads are opaque to the core
// per spec section 6 ("optional tracing callbacks ... names only").
type Tracer interface {
	OnTick(selected, evicted, total int)
	OnTransition(id taskid.ID, from, to future.Status)
	OnForceSuspend(id taskid.ID)
}

// NoopTracer discards every event.
type NoopTracer struct{}

func (NoopTracer) OnTick(int, int, int)                       {}
func (NoopTracer) OnTransition(taskid.ID, future.Status, future.Status) {}
func (NoopTracer) OnForceSuspend(taskid.ID)                    {}

// Entry is a TimelineEntry: everything the Timeline tracks about one live
// task, correlated with its Slot occupant by ID.
type Entry struct {
	Fn     slot.Func
	ID     taskid.ID
	Priority taskid.Priority
	Handle future.Handle

	LastPreemptTimepoint time.Time
	lastObservedStatus   future.Status
}

// Timeline holds all live entries and is driven by Tick. It takes no lock
// of its own: callers must serialize Add, Tick and Snapshot (the Scheduler
// Facade does so under its own mutex).
type Timeline struct {
	entries []*Entry
	tracer  Tracer
}

// New returns an empty Timeline. A nil tracer is replaced with NoopTracer.
func New(tracer Tracer) *Timeline {
	if tracer == nil {
		tracer = NoopTracer{}
	}
	return &Timeline{tracer: tracer}
}

// Add registers a new entry, ready to be considered starting on the next
// Tick. now seeds last_preempt_timepoint per spec 3 (TimelineEntry).
func (t *Timeline) Add(fn slot.Func, id taskid.ID, priority taskid.Priority, handle future.Handle, now time.Time) {
	t.entries = append(t.entries, &Entry{
		Fn:                   fn,
		ID:                   id,
		Priority:             priority,
		Handle:               handle,
		LastPreemptTimepoint: now,
		lastObservedStatus:   handle.FetchStatus(),
	})
}

// Len returns the number of live entries.
func (t *Timeline) Len() int { return len(t.entries) }

// Snapshot returns a shallow copy of the live entries for inspection
// (debug endpoints, metrics) without exposing the backing slice.
func (t *Timeline) Snapshot() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = *e
	}
	return out
}

// updateRecords is spec 4.5 step 1.
func (t *Timeline) updateRecords(now time.Time) {
	for _, e := range t.entries {
		cr := e.Handle.FetchCancelRequest()
		if cr.Requested {
			if cr.Source == future.SourceExecutor {
				e.Handle.NotifyForceCanceled()
			} else {
				e.Handle.NotifyUserCanceled()
			}
		}

		newStatus := e.Handle.FetchStatus()
		if newStatus != e.lastObservedStatus {
			t.tracer.OnTransition(e.ID, e.lastObservedStatus, newStatus)
		}
		if e.lastObservedStatus != future.ForceSuspended && newStatus == future.ForceSuspended {
			e.LastPreemptTimepoint = now
		}
		e.lastObservedStatus = newStatus
	}

	live := t.entries[:0]
	for _, e := range t.entries {
		switch e.lastObservedStatus {
		case future.Completed, future.UserCanceled, future.ForceCanceled:
			// garbage-collected this tick
		default:
			live = append(live, e)
		}
	}
	t.entries = live
}

// partitionAndSort is spec 4.5 step 2: user-suspended entries are excluded
// from selection entirely (only the user can resume them); the remainder
// is sorted ascending by LastPreemptTimepoint (most-starved first).
func (t *Timeline) partitionAndSort() (ready []*Entry, userSuspended []*Entry) {
	for _, e := range t.entries {
		if e.lastObservedStatus == future.UserSuspended {
			userSuspended = append(userSuspended, e)
		} else {
			ready = append(ready, e)
		}
	}
	sort.SliceStable(ready, func(i, j int) bool {
		return ready[i].LastPreemptTimepoint.Before(ready[j].LastPreemptTimepoint)
	})
	return ready, userSuspended
}

// selectWindow is spec 4.5 step 3: grows the starvation window until it
// contains at least numSlots entries or exhausts the ready set. It returns
// the length of the window prefix of ready (already sorted ascending by
// LastPreemptTimepoint).
func selectWindow(ready []*Entry, numSlots int) int {
	if len(ready) == 0 {
		return 0
	}
	mostStarved := ready[0].LastPreemptTimepoint
	span := StarvationPeriod

	i := 0
	for i < len(ready) {
		if ready[i].LastPreemptTimepoint.Sub(mostStarved) <= span {
			i++
		} else if i < numSlots {
			span += StarvationPeriod
			i++
		} else {
			break
		}
	}
	return i
}

// Tick advances the Timeline by one step: it updates every entry's record,
// selects the next set of tasks to run, requests force-suspension of the
// evicted, and assigns selected tasks to pushable slots. slots is indexed
// in scheduler-assigned order; lower indices are preferred when more than
// one slot is free (spec 4.5 tie-breaking rules).
func (t *Timeline) Tick(slots []*slot.Slot, now time.Time) {
	numSlots := len(slots)
	captures := make([]slot.Query, numSlots)
	for i, s := range slots {
		captures[i] = s.Query()
	}

	t.updateRecords(now)

	if len(t.entries) == 0 {
		t.tracer.OnTick(0, 0, 0)
		return
	}

	ready, _ := t.partitionAndSort()
	if len(ready) == 0 {
		t.tracer.OnTick(0, 0, len(t.entries))
		return
	}

	windowLen := selectWindow(ready, numSlots)
	window := ready[:windowLen]

	// spec 4.5 step 4: priority sort within the window, stable so that
	// equal-priority entries keep their starvation order.
	sort.SliceStable(window, func(i, j int) bool {
		return window[i].Priority > window[j].Priority
	})

	numSelected := numSlots
	if windowLen < numSelected {
		numSelected = windowLen
	}
	selected := ready[:numSelected]
	evicted := ready[numSelected:]

	// spec 4.5 step 5: evict everyone not selected, ready-set wide (not
	// just the window) — an entry outside the window is by definition
	// further from running than everything inside it.
	for _, e := range evicted {
		if e.lastObservedStatus != future.ForceSuspended {
			e.Handle.RequestForceSuspend()
			t.tracer.OnForceSuspend(e.ID)
		}
	}

	// spec 4.5 step 6: assign selected entries to slots, preferring
	// lower-indexed slots, continuing the scan across selected tasks
	// rather than restarting it for each one.
	nextSlot := 0
	for _, e := range selected {
		hasSlot := false
		for _, q := range captures {
			if (q.HasExecuting && q.ExecutingTask.Equal(e.ID)) || (q.HasPending && q.PendingTask.Equal(e.ID)) {
				hasSlot = true
				break
			}
		}

		for !hasSlot && nextSlot < numSlots {
			if captures[nextSlot].CanPush {
				e.Handle.ClearForceSuspensionRequest()
				if slots[nextSlot].PushTask(e.Fn, e.ID) {
					captures[nextSlot] = slots[nextSlot].Query()
					hasSlot = true
				}
			}
			nextSlot++
		}
	}

	t.tracer.OnTick(numSelected, len(evicted), len(t.entries))
}
