// Package future implements the Future/Promise pair at the core of the
// scheduler: a heap-allocated, multi-reader/multi-writer terminal-state
// cell with independently-sourced cancel and suspend request channels.
package future

import (
	"errors"
	"sync/atomic"
)

// ErrNotReady is returned by Future.Ref when the future has not yet
// reached Completed.
var ErrNotReady = errors.New("future: value not ready")

// sharedState is the SharedFutureState of the spec: the payload value plus
// the non-generic controlBlock. Exactly one Promise ever holds a write
// handle to it; any number of Future copies may hold read handles.
type sharedState[T any] struct {
	ctrl  controlBlock
	value atomic.Pointer[T]
}

// Future is a shared, copyable handle over a SharedFutureState. It has
// read-only access to terminal state and write-access only to the
// user-origin request channels.
type Future[T any] struct {
	s *sharedState[T]
}

// newPair allocates a fresh SharedFutureState and returns its Promise and
// initial Future, both starting at Scheduled with a refcount of one
// (the Future) — the Promise does not count toward the refcount since Go's
// GC keeps sharedState alive as long as either handle exists.
func newPair[T any]() (Promise[T], Future[T]) {
	s := &sharedState[T]{}
	s.ctrl.refCount.Store(1)
	return Promise[T]{s: s}, Future[T]{s: s}
}

// New creates a fresh Future/Promise pair in the Scheduled state.
func New[T any]() (Promise[T], Future[T]) {
	return newPair[T]()
}

// Copy returns a new handle over the same SharedFutureState, incrementing
// its reference count. The spec models this for parity with non-GC
// languages; in Go the GC would keep the state alive regardless, but the
// count is kept so IsDone/ref-counting invariants remain observable and
// testable.
func (f Future[T]) Copy() Future[T] {
	f.s.ctrl.refCount.Add(1)
	return Future[T]{s: f.s}
}

// Drop decrements the reference count. It does not free anything; Go's
// GC owns that. Calling Drop more times than Copy (plus the original) is
// a caller bug but is harmless here.
func (f Future[T]) Drop() {
	f.s.ctrl.refCount.Add(-1)
}

// FetchStatus reads the current terminal-state tag.
func (f Future[T]) FetchStatus() Status {
	return f.s.ctrl.fetchStatus()
}

// IsDone reports whether the future has reached a sticky terminal state.
func (f Future[T]) IsDone() bool {
	return f.FetchStatus().Done()
}

// Ref returns the completed value, or ErrNotReady if the future has not
// reached Completed.
func (f Future[T]) Ref() (T, error) {
	if f.FetchStatus() != Completed {
		var zero T
		return zero, ErrNotReady
	}
	v := f.s.value.Load()
	if v == nil {
		var zero T
		return zero, ErrNotReady
	}
	return *v, nil
}

// RequestCancel sets the user-origin cancel channel. It is idempotent:
// a second call before the request is serviced has no additional effect.
func (f Future[T]) RequestCancel() {
	f.s.ctrl.cancelUser.Store(true)
}

// RequestSuspend sets the user-origin suspend channel.
func (f Future[T]) RequestSuspend() {
	f.s.ctrl.suspendUser.Store(true)
}

// RequestResume clears the user-origin suspend channel. Only the user can
// clear a request it set; the scheduler never touches this channel.
func (f Future[T]) RequestResume() {
	f.s.ctrl.suspendUser.Store(false)
}

// rawState exposes the untyped control block backing this future, used by
// the Timeline to inspect status/requests without depending on T.
func (f Future[T]) rawState() *controlBlock { return &f.s.ctrl }

// Handle is the Timeline's type-erased view of a future's control block —
// everything it needs (status, cancel/suspend requests) without the
// generic value type leaking into schedule.TimelineEntry.
type Handle struct {
	ctrl *controlBlock
}

// AsHandle erases T, returning the control-block view the Timeline uses.
func (f Future[T]) AsHandle() Handle { return Handle{ctrl: f.rawState()} }

func (h Handle) FetchStatus() Status                   { return h.ctrl.fetchStatus() }
func (h Handle) FetchCancelRequest() CancelRequest      { return h.ctrl.fetchCancelRequest() }
func (h Handle) FetchSuspendRequest() SuspendRequest    { return h.ctrl.fetchSuspendRequest() }
func (h Handle) requestForceSuspend()                   { h.ctrl.suspendExecutor.Store(true) }
func (h Handle) clearForceSuspensionRequest()            { h.ctrl.suspendExecutor.Store(false) }
func (h Handle) requestForceCancel()                     { h.ctrl.cancelExecutor.Store(true) }
func (h Handle) notifyForceCanceled() bool               { return h.ctrl.trySetStatus(ForceCanceled) }
func (h Handle) notifyUserCanceled() bool                { return h.ctrl.trySetStatus(UserCanceled) }

// RequestForceSuspend is the scheduler-only write used by the Timeline to
// evict a non-selected task (spec 4.5 step 5).
func (h Handle) RequestForceSuspend() { h.requestForceSuspend() }

// ClearForceSuspensionRequest is the scheduler-only clear used right before
// re-assigning a task to a slot (spec 4.5 step 6).
func (h Handle) ClearForceSuspensionRequest() { h.clearForceSuspensionRequest() }

// RequestForceCancel is the scheduler-only write issued at shutdown.
func (h Handle) RequestForceCancel() { h.requestForceCancel() }

// NotifyForceCanceled finalizes the promise as ForceCanceled. Used by the
// Timeline when it observes an active executor cancel request (spec 4.5
// step 1). Returns false if already terminal (no-op).
func (h Handle) NotifyForceCanceled() bool { return h.notifyForceCanceled() }

// NotifyUserCanceled finalizes the promise as UserCanceled. Used by the
// Timeline when it observes an active user cancel request.
func (h Handle) NotifyUserCanceled() bool { return h.notifyUserCanceled() }
