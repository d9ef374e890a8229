package slot

import (
	"testing"
	"time"

	"github.com/riftengine/taskcore/taskid"
)

func TestPushRefusedWhenOccupied(t *testing.T) {
	s := New()
	gen := taskid.NewGenerator()
	id1 := gen.Next()
	id2 := gen.Next()

	if !s.PushTask(func() {}, id1) {
		t.Fatalf("first push into an empty slot must succeed")
	}
	if s.PushTask(func() {}, id2) {
		t.Fatalf("push into an already-pending slot must be refused")
	}

	q := s.Query()
	if q.CanPush {
		t.Fatalf("CanPush must be false while pending")
	}
}

func TestPopPendingTransitionsToExecuting(t *testing.T) {
	s := New()
	gen := taskid.NewGenerator()
	id := gen.Next()
	s.PushTask(func() {}, id)

	fn, gotID, ok := s.PopPending(func() bool { return false })
	if !ok || fn == nil {
		t.Fatalf("expected a function to pop")
	}
	if !gotID.Equal(id) {
		t.Fatalf("expected id %v, got %v", id, gotID)
	}

	q := s.Query()
	if q.CanPush {
		t.Fatalf("slot must not be pushable while executing")
	}
	if !q.HasExecuting {
		t.Fatalf("slot should report executing")
	}

	s.MarkExecutingFinished()
	q = s.Query()
	if !q.CanPush {
		t.Fatalf("slot should be pushable again once executing clears")
	}
}

func TestPopPendingBlocksUntilPushed(t *testing.T) {
	s := New()
	gen := taskid.NewGenerator()
	id := gen.Next()

	done := make(chan struct{})
	go func() {
		_, gotID, ok := s.PopPending(func() bool { return false })
		if !ok || !gotID.Equal(id) {
			t.Errorf("unexpected pop result: ok=%v id=%v", ok, gotID)
		}
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("PopPending returned before anything was pushed")
	case <-time.After(20 * time.Millisecond):
	}

	s.PushTask(func() {}, id)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("PopPending did not unblock after push")
	}
}

func TestQuarantinedSlotCannotBePushed(t *testing.T) {
	s := New()
	s.Quarantine(true)
	if s.Query().CanPush {
		t.Fatalf("quarantined slot must not be pushable")
	}
	gen := taskid.NewGenerator()
	if s.PushTask(func() {}, gen.Next()) {
		t.Fatalf("push into a quarantined slot must be refused")
	}
}
