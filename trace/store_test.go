package trace

import "testing"

func TestStoreRetainsInsertOrderBelowCapacity(t *testing.T) {
	s := NewStore(10)
	s.Record(Event{TaskID: "a", Stage: StageSubmitted})
	s.Record(Event{TaskID: "b", Stage: StageSubmitted})

	got := s.Snapshot()
	if len(got) != 2 || got[0].TaskID != "a" || got[1].TaskID != "b" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestStoreEvictsOldestPastCapacity(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Record(Event{TaskID: string(rune('a' + i))})
	}

	got := s.Snapshot()
	if len(got) != 3 {
		t.Fatalf("expected 3 retained events, got %d", len(got))
	}
	want := []string{"c", "d", "e"}
	for i, e := range got {
		if e.TaskID != want[i] {
			t.Fatalf("expected oldest-first order %v, got %+v", want, got)
		}
	}
}

func TestStoreForTaskFiltersByID(t *testing.T) {
	s := NewStore(10)
	s.Record(Event{TaskID: "a", Stage: StageSubmitted})
	s.Record(Event{TaskID: "b", Stage: StageSubmitted})
	s.Record(Event{TaskID: "a", Stage: StageTransition})

	got := s.ForTask("a")
	if len(got) != 2 {
		t.Fatalf("expected 2 events for task a, got %d", len(got))
	}
}
