package schedule

import (
	"testing"
	"time"

	"github.com/riftengine/taskcore/future"
	"github.com/riftengine/taskcore/slot"
	"github.com/riftengine/taskcore/taskid"
)

func newSlots(n int) []*slot.Slot {
	out := make([]*slot.Slot, n)
	for i := range out {
		out[i] = slot.New()
	}
	return out
}

func TestTickAssignsWithinStarvationWindowByPriority(t *testing.T) {
	tl := New(nil)
	gen := taskid.NewGenerator()
	base := time.Now()

	pLow, fLow := future.New[int]()
	pHigh, fHigh := future.New[int]()
	_ = fLow
	_ = fHigh

	idLow := gen.Next()
	idHigh := gen.Next()

	tl.Add(func() {}, idLow, taskid.Background, pLow.AsHandle(), base)
	tl.Add(func() {}, idHigh, taskid.Critical, pHigh.AsHandle(), base.Add(time.Millisecond))

	slots := newSlots(1)
	tl.Tick(slots, base.Add(2*time.Millisecond))

	q := slots[0].Query()
	if !q.HasPending || !q.PendingTask.Equal(idHigh) {
		t.Fatalf("expected the critical task to win the single slot, got %+v", q)
	}
}

func TestFIFOAtEqualPriorityOnOneSlot(t *testing.T) {
	tl := New(nil)
	gen := taskid.NewGenerator()
	base := time.Now()

	p1, _ := future.New[int]()
	p2, _ := future.New[int]()
	p3, _ := future.New[int]()
	id1, id2, id3 := gen.Next(), gen.Next(), gen.Next()

	tl.Add(func() {}, id1, taskid.Normal, p1.AsHandle(), base)
	tl.Add(func() {}, id2, taskid.Normal, p2.AsHandle(), base.Add(time.Nanosecond))
	tl.Add(func() {}, id3, taskid.Normal, p3.AsHandle(), base.Add(2*time.Nanosecond))

	slots := newSlots(1)
	tl.Tick(slots, base.Add(3*time.Nanosecond))

	q := slots[0].Query()
	if !q.HasPending || !q.PendingTask.Equal(id1) {
		t.Fatalf("expected task 1 to be selected first, got %+v", q)
	}

	// Finish task 1, complete it, and make sure task 2 is next.
	fn, _, ok := slots[0].PopPending(func() bool { return false })
	if !ok {
		t.Fatal("expected to pop task 1")
	}
	fn()
	p1.NotifyCompleted(0)
	slots[0].MarkExecutingFinished()

	tl.Tick(slots, base.Add(4*time.Nanosecond))
	q = slots[0].Query()
	if !q.HasPending || !q.PendingTask.Equal(id2) {
		t.Fatalf("expected task 2 next, got %+v", q)
	}
}

func TestEvictedTaskReceivesForceSuspendRequest(t *testing.T) {
	tl := New(nil)
	gen := taskid.NewGenerator()
	base := time.Now()

	pBg, _ := future.New[int]()
	pCrit, _ := future.New[int]()
	idBg, idCrit := gen.Next(), gen.Next()

	tl.Add(func() {}, idBg, taskid.Background, pBg.AsHandle(), base)
	pBg.NotifyExecuting()

	slots := newSlots(1)
	tl.Tick(slots, base.Add(time.Millisecond))
	// Simulate the worker having picked it up.
	slots[0].PopPending(func() bool { return false })

	tl.Add(func() {}, idCrit, taskid.Critical, pCrit.AsHandle(), base.Add(2*time.Millisecond))
	tl.Tick(slots, base.Add(3*time.Millisecond))

	sr := pBg.FetchSuspendRequest()
	if !sr.Requested || sr.Source != future.SourceExecutor {
		t.Fatalf("expected background task to receive a force-suspend request, got %+v", sr)
	}
}

func TestStarvationWindowGrowsToFillSlots(t *testing.T) {
	tl := New(nil)
	gen := taskid.NewGenerator()
	base := time.Now()

	// Two entries far apart in starvation time, two slots: the window
	// must grow past one StarvationPeriod to pick up a second candidate.
	p1, _ := future.New[int]()
	p2, _ := future.New[int]()
	id1, id2 := gen.Next(), gen.Next()

	tl.Add(func() {}, id1, taskid.Background, p1.AsHandle(), base)
	tl.Add(func() {}, id2, taskid.Background, p2.AsHandle(), base.Add(StarvationPeriod+time.Millisecond))

	slots := newSlots(2)
	tl.Tick(slots, base.Add(StarvationPeriod+2*time.Millisecond))

	q0, q1 := slots[0].Query(), slots[1].Query()
	gotBoth := (q0.HasPending && q0.PendingTask.Equal(id1) && q1.HasPending && q1.PendingTask.Equal(id2)) ||
		(q1.HasPending && q1.PendingTask.Equal(id1) && q0.HasPending && q0.PendingTask.Equal(id2))
	if !gotBoth {
		t.Fatalf("expected both entries assigned once the window grows, got %+v %+v", q0, q1)
	}
}

func TestDoneEntriesAreGarbageCollected(t *testing.T) {
	tl := New(nil)
	gen := taskid.NewGenerator()
	base := time.Now()

	p, _ := future.New[int]()
	id := gen.Next()
	tl.Add(func() {}, id, taskid.Normal, p.AsHandle(), base)
	p.NotifyCompleted(1)

	slots := newSlots(1)
	tl.Tick(slots, base.Add(time.Millisecond))

	if tl.Len() != 0 {
		t.Fatalf("expected completed entry to be garbage collected, got %d live", tl.Len())
	}
}

func TestUserSuspendedEntryIsExcludedFromSelection(t *testing.T) {
	tl := New(nil)
	gen := taskid.NewGenerator()
	base := time.Now()

	p, f := future.New[int]()
	id := gen.Next()
	tl.Add(func() {}, id, taskid.Critical, p.AsHandle(), base)
	p.NotifyExecuting()
	f.RequestSuspend()
	p.NotifyUserSuspended()

	slots := newSlots(1)
	tl.Tick(slots, base.Add(time.Millisecond))

	q := slots[0].Query()
	if q.HasPending {
		t.Fatalf("a user-suspended entry must not be selected")
	}
	if tl.Len() != 1 {
		t.Fatalf("a user-suspended entry must not be garbage collected either")
	}
}

func TestUserCancelRequestFinalizesDuringTick(t *testing.T) {
	tl := New(nil)
	gen := taskid.NewGenerator()
	base := time.Now()

	p, f := future.New[int]()
	id := gen.Next()
	tl.Add(func() {}, id, taskid.Normal, p.AsHandle(), base)
	f.RequestCancel()

	slots := newSlots(1)
	tl.Tick(slots, base.Add(time.Millisecond))

	if p.FetchStatus() != future.UserCanceled {
		t.Fatalf("expected UserCanceled, got %v", p.FetchStatus())
	}
	if tl.Len() != 0 {
		t.Fatalf("canceled entry should be collected on the same tick")
	}
}
