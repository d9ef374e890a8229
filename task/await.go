package task

import "github.com/riftengine/taskcore/future"

// Awaitable is the minimal, type-erased view of a Future an Await body
// needs: whether it has reached a terminal state. It lets AwaitAll/AwaitAny
// watch futures of different payload types in the same slice.
type Awaitable interface {
	IsDone() bool
}

// AwaitMode selects whether an Await body is ready when all of its
// dependencies are done, or when any one of them is.
type AwaitMode uint8

const (
	AwaitAll AwaitMode = iota
	AwaitAny
)

// AwaitSpec describes a not-yet-admitted await task: a readiness predicate
// over a fixed set of dependency futures, plus the function to run exactly
// once the predicate is satisfied. The Scheduler Facade polls Ready each
// tick and only creates a real TimelineEntry (consuming a slot) once it
// returns true, so an Await never occupies a worker while it waits.
// Cancellation of the await's own future does not propagate to its
// dependencies — nothing here holds a write handle to them.
type AwaitSpec struct {
	Mode  AwaitMode
	Deps  []Awaitable
	Run   func() // invoked exactly once when Ready() first returns true
}

// NewAwaitAll builds a spec that is ready once every dependency is done.
// With zero dependencies it is immediately ready, per the spec's round-trip
// law.
func NewAwaitAll(run func(), deps ...Awaitable) AwaitSpec {
	return AwaitSpec{Mode: AwaitAll, Deps: deps, Run: run}
}

// NewAwaitAny builds a spec that is ready once any one dependency is done.
func NewAwaitAny(run func(), deps ...Awaitable) AwaitSpec {
	return AwaitSpec{Mode: AwaitAny, Deps: deps, Run: run}
}

// Ready evaluates the readiness predicate against the current state of the
// dependency futures.
func (a AwaitSpec) Ready() bool {
	switch a.Mode {
	case AwaitAny:
		for _, d := range a.Deps {
			if d.IsDone() {
				return true
			}
		}
		return len(a.Deps) == 0
	default: // AwaitAll
		for _, d := range a.Deps {
			if !d.IsDone() {
				return false
			}
		}
		return true
	}
}

// awaitableFuture adapts future.Future[T] to the Awaitable interface.
type awaitableFuture[T any] struct {
	f future.Future[T]
}

// Watch wraps a Future so it can be passed to NewAwaitAll/NewAwaitAny
// alongside futures of other payload types.
func Watch[T any](f future.Future[T]) Awaitable {
	return awaitableFuture[T]{f: f}
}

func (a awaitableFuture[T]) IsDone() bool { return a.f.IsDone() }
