package future

import (
	"sync"
	"testing"
)

func TestCompletedRefRoundTrip(t *testing.T) {
	promise, fut := New[int]()

	if _, err := fut.Ref(); err != ErrNotReady {
		t.Fatalf("expected ErrNotReady before completion, got %v", err)
	}

	promise.NotifyScheduled()
	promise.NotifyExecuting()
	if !promise.NotifyCompleted(42) {
		t.Fatalf("NotifyCompleted should succeed the first time")
	}

	v, err := fut.Ref()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
}

func TestCompletedIsSticky(t *testing.T) {
	promise, fut := New[string]()
	promise.NotifyCompleted("first")

	if promise.NotifyCompleted("second") {
		t.Fatalf("second NotifyCompleted should be a silent no-op")
	}
	v, _ := fut.Ref()
	if v != "first" {
		t.Fatalf("terminal value must not change, got %q", v)
	}

	if promise.NotifyUserCanceled() {
		t.Fatalf("cancel after completion must be a no-op")
	}
	if fut.FetchStatus() != Completed {
		t.Fatalf("status must remain Completed, got %v", fut.FetchStatus())
	}
}

func TestSuspensionIsNotSticky(t *testing.T) {
	promise, fut := New[int]()
	promise.NotifyExecuting()
	promise.NotifyForceSuspended()
	if fut.FetchStatus() != ForceSuspended {
		t.Fatalf("expected ForceSuspended, got %v", fut.FetchStatus())
	}
	if !promise.NotifyExecuting() {
		t.Fatalf("should be able to resume from ForceSuspended")
	}
	if fut.FetchStatus() != Executing {
		t.Fatalf("expected Executing, got %v", fut.FetchStatus())
	}
}

func TestRequestChannelsAreIndependentPerSource(t *testing.T) {
	promise, fut := New[int]()

	fut.RequestCancel()
	cr := promise.FetchCancelRequest()
	if !cr.Requested || cr.Source != SourceUser {
		t.Fatalf("expected user cancel request, got %+v", cr)
	}

	promise.RequestForceSuspend()
	sr := promise.FetchSuspendRequest()
	if !sr.Requested || sr.Source != SourceExecutor {
		t.Fatalf("expected executor suspend request, got %+v", sr)
	}

	promise.ClearForceSuspensionRequest()
	sr = promise.FetchSuspendRequest()
	if sr.Requested {
		t.Fatalf("force suspension request should have been cleared")
	}
}

func TestRequestResumeOnlyClearsUserChannel(t *testing.T) {
	promise, fut := New[int]()
	fut.RequestSuspend()
	promise.RequestForceSuspend()

	fut.RequestResume()

	sr := promise.FetchSuspendRequest()
	if !sr.Requested || sr.Source != SourceExecutor {
		t.Fatalf("force suspend request must survive a user resume, got %+v", sr)
	}
}

func TestConcurrentNotifyCompletedIsRaceFree(t *testing.T) {
	promise, fut := New[int]()

	var wg sync.WaitGroup
	successes := make([]bool, 8)
	for i := range successes {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			successes[i] = promise.NotifyCompleted(i)
		}()
	}
	wg.Wait()

	count := 0
	for _, ok := range successes {
		if ok {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one NotifyCompleted to win, got %d", count)
	}
	if !fut.IsDone() {
		t.Fatalf("future should be done")
	}
}

func TestCopyAndDropRefcount(t *testing.T) {
	_, fut := New[int]()
	other := fut.Copy()
	if other.FetchStatus() != fut.FetchStatus() {
		t.Fatalf("copy should observe the same status")
	}
	if got := fut.s.ctrl.refCount.Load(); got != 2 {
		t.Fatalf("expected refcount 2 after Copy, got %d", got)
	}
	other.Drop()
	if got := fut.s.ctrl.refCount.Load(); got != 1 {
		t.Fatalf("expected refcount 1 after Drop, got %d", got)
	}
}
