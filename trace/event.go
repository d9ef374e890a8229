// Package trace records and exports scheduler activity: a small in-memory
// event store for debug snapshots, a websocket hub for live observers, and
// optional durable sinks (Redis, Postgres) for operators who want history
// past process lifetime. None of this is on the hot path of Tick — Tracer
// implementations in this package must never block the caller for long.
package trace

import (
	"time"

	"github.com/riftengine/taskcore/taskid"
)

// Event is one observable moment in a task's life: submitted, a status
// transition, or a force-suspend request raised against it.
type Event struct {
	TaskID    string            `json:"task_id"`
	Stage     string            `json:"stage"` // SUBMITTED, TRANSITION, FORCE_SUSPEND, TICK
	Timestamp time.Time         `json:"timestamp"`
	Priority  string            `json:"priority,omitempty"`
	From      string            `json:"from,omitempty"`
	To        string            `json:"to,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Stage labels used by the Scheduler facade and the Timeline tracer.
const (
	StageSubmitted    = "SUBMITTED"
	StageTransition   = "TRANSITION"
	StageForceSuspend = "FORCE_SUSPEND"
	StageTick         = "TICK"
)

func newSubmittedEvent(id taskid.ID, priority taskid.Priority, now time.Time) Event {
	return Event{
		TaskID:    id.String(),
		Stage:     StageSubmitted,
		Timestamp: now,
		Priority:  priority.String(),
	}
}
