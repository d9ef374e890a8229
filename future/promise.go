package future

// Promise is the exclusive-write handle over a SharedFutureState. At most
// one Promise exists per SharedFutureState; it alone may publish terminal
// state and set executor-origin requests.
type Promise[T any] struct {
	s *sharedState[T]
}

// NotifyScheduled advances the status to Scheduled. No-op if already done.
func (p Promise[T]) NotifyScheduled() bool { return p.s.ctrl.trySetStatus(Scheduled) }

// NotifyExecuting advances the status to Executing — reachable from
// Scheduled or either suspended variant (the side-cycle back to running).
// No-op if already done.
func (p Promise[T]) NotifyExecuting() bool { return p.s.ctrl.trySetStatus(Executing) }

// NotifyCompleted stores value and marks the future Completed. Fails
// silently (no state change) if already terminal.
func (p Promise[T]) NotifyCompleted(value T) bool {
	if p.s.ctrl.fetchStatus().Done() {
		return false
	}
	// Only the first caller may publish a value; a concurrent loser must
	// not overwrite the winner's value after it became Completed.
	if !p.s.value.CompareAndSwap(nil, &value) {
		return false
	}
	return p.s.ctrl.trySetStatus(Completed)
}

// NotifyUserCanceled marks the future UserCanceled. Sticky; no-op if
// already terminal.
func (p Promise[T]) NotifyUserCanceled() bool { return p.s.ctrl.trySetStatus(UserCanceled) }

// NotifyForceCanceled marks the future ForceCanceled. Sticky; no-op if
// already terminal.
func (p Promise[T]) NotifyForceCanceled() bool { return p.s.ctrl.trySetStatus(ForceCanceled) }

// NotifyUserSuspended marks the future UserSuspended. Not sticky: a later
// NotifyExecuting returns it to Executing.
func (p Promise[T]) NotifyUserSuspended() bool { return p.s.ctrl.trySetStatus(UserSuspended) }

// NotifyForceSuspended marks the future ForceSuspended. Not sticky.
func (p Promise[T]) NotifyForceSuspended() bool { return p.s.ctrl.trySetStatus(ForceSuspended) }

// RequestForceSuspend sets the executor-origin suspend channel. Only the
// scheduler calls this (spec 4.5 step 5, eviction of non-selected tasks).
func (p Promise[T]) RequestForceSuspend() { p.s.ctrl.suspendExecutor.Store(true) }

// ClearForceSuspensionRequest clears the executor-origin suspend channel.
// Only the scheduler calls this, right before re-pushing a task to a slot.
func (p Promise[T]) ClearForceSuspensionRequest() { p.s.ctrl.suspendExecutor.Store(false) }

// RequestForceCancel sets the executor-origin cancel channel, used only on
// scheduler shutdown in this core.
func (p Promise[T]) RequestForceCancel() { p.s.ctrl.cancelExecutor.Store(true) }

// FetchStatus reads the current terminal-state tag.
func (p Promise[T]) FetchStatus() Status { return p.s.ctrl.fetchStatus() }

// FetchCancelRequest reads the union of both cancel channels, reporting
// which source is active (executor takes precedence if both are set,
// since executor cancellation only ever happens at shutdown).
func (p Promise[T]) FetchCancelRequest() CancelRequest { return p.s.ctrl.fetchCancelRequest() }

// FetchSuspendRequest reads the union of both suspend channels.
func (p Promise[T]) FetchSuspendRequest() SuspendRequest { return p.s.ctrl.fetchSuspendRequest() }

// GetFuture returns a Future handle over the same SharedFutureState.
func (p Promise[T]) GetFuture() Future[T] { return Future[T]{s: p.s} }

// RequestProxy returns the read-only view task bodies consult at their
// checkpoints.
func (p Promise[T]) RequestProxy() RequestProxy { return RequestProxy{ctrl: &p.s.ctrl} }

// AsHandle erases T for the Timeline, same as Future.AsHandle.
func (p Promise[T]) AsHandle() Handle { return Handle{ctrl: &p.s.ctrl} }

// RequestProxy is a thin, read-only borrow over a Promise, exposed to task
// bodies (spec 4.2). It cannot mutate state and cannot see the value.
type RequestProxy struct {
	ctrl *controlBlock
}

// FetchCancelRequest returns a snapshot of the cancel channel (both
// sources combined).
func (r RequestProxy) FetchCancelRequest() CancelRequest { return r.ctrl.fetchCancelRequest() }

// FetchSuspendRequest returns a snapshot of the suspend channel (both
// sources combined).
func (r RequestProxy) FetchSuspendRequest() SuspendRequest { return r.ctrl.fetchSuspendRequest() }
