// Package taskid defines the identifiers used to correlate a Timeline
// entry with its Slot occupant and to order tasks by priority.
package taskid

import "github.com/google/uuid"

// ID uniquely identifies a task from submission until its entry is
// garbage-collected from the Timeline. The corpus reaches for
// github.com/google/uuid wherever an opaque, collision-free identifier
// needs to cross a component boundary; we keep a monotonically
// increasing Seq alongside the UUID since UUIDs don't carry submission
// order. The Timeline does not read Seq: it breaks ties by the insertion
// order of its entries.
type ID struct {
	UUID uuid.UUID
	Seq  uint64
}

func (id ID) String() string { return id.UUID.String() }

// Equal reports whether two IDs refer to the same task.
func (id ID) Equal(other ID) bool { return id.UUID == other.UUID }

// generator mints IDs with strictly increasing Seq values, guarded by the
// caller (the Scheduler Facade serializes submission bookkeeping).
type Generator struct {
	next uint64
}

// NewGenerator returns a fresh sequence generator. Each Scheduler owns one.
func NewGenerator() *Generator {
	return &Generator{}
}

// Next mints a new ID. Not safe for concurrent use; the Scheduler Facade
// calls it while holding its submission lock.
func (g *Generator) Next() ID {
	g.next++
	return ID{UUID: uuid.New(), Seq: g.next}
}

// Priority is a total order over task importance. Comparisons are numeric;
// higher values run before lower ones.
type Priority int

const (
	Background Priority = iota
	Service
	Normal
	Interactive
	Critical
)

func (p Priority) String() string {
	switch p {
	case Background:
		return "background"
	case Service:
		return "service"
	case Normal:
		return "normal"
	case Interactive:
		return "interactive"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}
