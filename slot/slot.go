// Package slot implements the single-capacity mailbox a scheduler worker
// drains: a single-producer (Timeline), single-consumer (worker)
// coordination point guarded by a mutex and condition variable.
package slot

import (
	"sync"

	"github.com/riftengine/taskcore/taskid"
)

// Func is the type-erased body a slot hands to its worker.
type Func func()

// Query is an atomically-consistent snapshot of a slot's occupancy,
// returned by Query so the Timeline can decide where to push without
// racing the worker's drain loop.
type Query struct {
	PendingTask   taskid.ID
	HasPending    bool
	ExecutingTask taskid.ID
	HasExecuting  bool
	CanPush       bool
}

// Slot is a single-capacity mailbox owned by exactly one worker goroutine.
// Only the Timeline writes Pending (via PushTask); only the worker writes
// Executing (via PopPending/MarkExecutingFinished).
type Slot struct {
	mu   sync.Mutex
	cond *sync.Cond

	pendingFn  Func
	pendingID  taskid.ID
	hasPending bool

	executingID  taskid.ID
	hasExecuting bool

	quarantined bool
}

// New returns an empty, pushable slot.
func New() *Slot {
	s := &Slot{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Query returns a consistent snapshot of the slot's occupancy.
func (s *Slot) Query() Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Query{
		PendingTask:   s.pendingID,
		HasPending:    s.hasPending,
		ExecutingTask: s.executingID,
		HasExecuting:  s.hasExecuting,
		CanPush:       !s.hasPending && !s.hasExecuting && !s.quarantined,
	}
}

// PushTask is Timeline-only. It is refused (returns false) unless the slot
// is currently pushable; the caller is expected to have just checked Query
// and must not treat refusal as an error, only as "try again next tick".
func (s *Slot) PushTask(fn Func, id taskid.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasPending || s.hasExecuting || s.quarantined {
		return false
	}
	s.pendingFn = fn
	s.pendingID = id
	s.hasPending = true
	s.cond.Signal()
	return true
}

// PopPending is worker-only. It blocks until a task is pending or the slot
// is closed, then atomically transitions pending -> executing and returns
// the function to invoke. The second return is false if the slot was
// closed with nothing pending (the worker should exit).
func (s *Slot) PopPending(closed func() bool) (Func, taskid.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.hasPending {
		if closed() {
			return nil, taskid.ID{}, false
		}
		s.cond.Wait()
	}
	fn := s.pendingFn
	id := s.pendingID
	s.pendingFn = nil
	s.hasPending = false
	s.executingID = id
	s.hasExecuting = true
	return fn, id, true
}

// MarkExecutingFinished is worker-only; it clears the executing slot once
// the task body returns (to completion or to a yield point).
func (s *Slot) MarkExecutingFinished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasExecuting = false
}

// Wake unblocks a worker parked in PopPending, e.g. so it can observe a
// shutdown signal even with nothing pending.
func (s *Slot) Wake() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cond.Broadcast()
}

// Quarantine marks the slot unpushable without disturbing anything it is
// currently running; a quarantined slot's worker still drains whatever is
// already pending/executing, it just stops receiving new work.
func (s *Slot) Quarantine(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quarantined = on
}

// Quarantined reports the current quarantine flag.
func (s *Slot) Quarantined() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quarantined
}
