package scheduler

import (
	"time"

	"github.com/riftengine/taskcore/future"
	"github.com/riftengine/taskcore/task"
	"github.com/riftengine/taskcore/taskid"
)

// applyServiceToken notifies promise of the terminal/suspended state a
// combinator's ServiceToken recorded, translating (kind, source) into the
// matching Promise.Notify* call. This is the "scheduler glue" spec 4.3
// describes: combinators never touch a Promise themselves.
func applyServiceToken[T any](promise future.Promise[T], token task.ServiceToken) {
	switch token.Kind {
	case task.RequestCancel:
		if token.Source == future.SourceExecutor {
			promise.NotifyForceCanceled()
		} else {
			promise.NotifyUserCanceled()
		}
	case task.RequestSuspend:
		if token.Source == future.SourceExecutor {
			promise.NotifyForceSuspended()
		} else {
			promise.NotifyUserSuspended()
		}
	}
}

// withPanicFinalize wraps body so that a panic mid-body still finalizes
// promise (as ForceCanceled) before propagating, so the Timeline's next
// Tick garbage-collects the entry instead of leaving a permanently
// "ready but never completes" entry that would otherwise hog its slot
// forever. The panic is rethrown so the worker's own recover still sees
// it for quarantine bookkeeping.
func withPanicFinalize[T any](promise future.Promise[T], body func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				promise.NotifyForceCanceled()
				panic(r)
			}
		}()
		body()
	}
}

// Fn submits a plain, non-resumable function: it runs to completion once
// invoked and cannot be preempted mid-body, per spec 4.1's requirement
// that long-running work use a combinator instead.
func Fn[T any](s *Scheduler, priority taskid.Priority, fn func() T) (future.Future[T], error) {
	promise, fut := future.New[T]()
	entryFn := withPanicFinalize(promise, func() {
		promise.NotifyExecuting()
		promise.NotifyCompleted(fn())
	})
	if _, err := s.admit(priority, promise.AsHandle(), entryFn); err != nil {
		return future.Future[T]{}, err
	}
	return fut, nil
}

// LoopTask submits a Loop body: fn runs repeatedly until canceled. It
// never completes on its own.
func LoopTask(s *Scheduler, priority taskid.Priority, fn func()) (future.Future[struct{}], error) {
	promise, fut := future.New[struct{}]()
	body := task.NewLoop(fn)
	state := &task.LoopState{}

	entryFn := withPanicFinalize(promise, func() {
		promise.NotifyExecuting()
		body.Resume(state, promise.RequestProxy())
		if state.Serviced {
			applyServiceToken(promise, state.ServiceToken)
			state.Serviced = false
		}
	})
	if _, err := s.admit(priority, promise.AsHandle(), entryFn); err != nil {
		return future.Future[struct{}]{}, err
	}
	return fut, nil
}

// ForLoop submits a For body over [begin, end), completing once every
// index has run or ending early on cancellation.
func ForLoop(s *Scheduler, priority taskid.Priority, begin, end int64, fn func(int64)) (future.Future[struct{}], error) {
	promise, fut := future.New[struct{}]()
	body := task.NewFor(begin, end, fn)
	state := body.NewState()

	entryFn := withPanicFinalize(promise, func() {
		promise.NotifyExecuting()
		body.Resume(&state, promise.RequestProxy())
		if body.Done(&state) {
			promise.NotifyCompleted(struct{}{})
		} else {
			applyServiceToken(promise, state.ServiceToken)
		}
	})
	if _, err := s.admit(priority, promise.AsHandle(), entryFn); err != nil {
		return future.Future[struct{}]{}, err
	}
	return fut, nil
}

// ChainTask submits a Chain of phases, each consuming the previous
// phase's result. The returned future's value is boxed as any, since the
// phases are statically unrelated types (see task.ChainState).
func ChainTask(s *Scheduler, priority taskid.Priority, phases ...task.Phase) (future.Future[any], error) {
	promise, fut := future.New[any]()
	body := task.NewChain(phases...)
	state := &task.ChainState{}

	entryFn := withPanicFinalize(promise, func() {
		promise.NotifyExecuting()
		body.Resume(state, promise.RequestProxy())
		if body.Done(state) {
			promise.NotifyCompleted(body.Result(state))
		} else {
			applyServiceToken(promise, state.ServiceToken)
		}
	})
	if _, err := s.admit(priority, promise.AsHandle(), entryFn); err != nil {
		return future.Future[any]{}, err
	}
	return fut, nil
}

// registerAwait is the shared implementation behind AwaitAll/AwaitAny: it
// registers a pending combinator that graduates into a real Timeline
// entry (and only then occupies a worker slot) the first tick its
// readiness predicate holds.
func registerAwait[T any](s *Scheduler, mode task.AwaitMode, priority taskid.Priority, fn func() T, deps []task.Awaitable) (future.Future[T], error) {
	promise, fut := future.New[T]()
	runFn := func() {
		entryFn := withPanicFinalize(promise, func() {
			promise.NotifyExecuting()
			promise.NotifyCompleted(fn())
		})
		s.rawAdmitLocked(priority, promise.AsHandle(), entryFn)
	}

	var spec task.AwaitSpec
	if mode == task.AwaitAny {
		spec = task.NewAwaitAny(runFn, deps...)
	} else {
		spec = task.NewAwaitAll(runFn, deps...)
	}

	ready := func(time.Time) bool { return spec.Ready() }
	if err := s.registerPending(priority, ready, runFn); err != nil {
		return future.Future[T]{}, err
	}
	return fut, nil
}

// AwaitAll submits fn to run once every dependency in deps is done. With
// zero dependencies it is ready on the very next tick.
func AwaitAll[T any](s *Scheduler, priority taskid.Priority, fn func() T, deps ...task.Awaitable) (future.Future[T], error) {
	return registerAwait(s, task.AwaitAll, priority, fn, deps)
}

// AwaitAny submits fn to run once any dependency in deps is done.
func AwaitAny[T any](s *Scheduler, priority taskid.Priority, fn func() T, deps ...task.Awaitable) (future.Future[T], error) {
	return registerAwait(s, task.AwaitAny, priority, fn, deps)
}

// Delay submits fn to run once d has elapsed on the scheduler's clock.
func Delay(s *Scheduler, priority taskid.Priority, d time.Duration, fn func()) (future.Future[struct{}], error) {
	promise, fut := future.New[struct{}]()
	deadline := s.clk.Now().Add(d)

	entryFn := withPanicFinalize(promise, func() {
		promise.NotifyExecuting()
		fn()
		promise.NotifyCompleted(struct{}{})
	})
	ready := func(now time.Time) bool { return !now.Before(deadline) }
	admit := func() { s.rawAdmitLocked(priority, promise.AsHandle(), entryFn) }

	if err := s.registerPending(priority, ready, admit); err != nil {
		return future.Future[struct{}]{}, err
	}
	return fut, nil
}

// Deferred submits fn to run the first tick predicate() returns true.
// Unlike Delay, readiness is caller-defined rather than time-based; the
// scheduler polls predicate once per tick until it is admitted.
func Deferred(s *Scheduler, priority taskid.Priority, predicate func() bool, fn func()) (future.Future[struct{}], error) {
	promise, fut := future.New[struct{}]()

	entryFn := withPanicFinalize(promise, func() {
		promise.NotifyExecuting()
		fn()
		promise.NotifyCompleted(struct{}{})
	})
	ready := func(time.Time) bool { return predicate() }
	admit := func() { s.rawAdmitLocked(priority, promise.AsHandle(), entryFn) }

	if err := s.registerPending(priority, ready, admit); err != nil {
		return future.Future[struct{}]{}, err
	}
	return fut, nil
}
