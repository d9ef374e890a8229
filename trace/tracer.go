package trace

import (
	"context"
	"time"

	"github.com/riftengine/taskcore/future"
	"github.com/riftengine/taskcore/taskid"
)

// Tracer implements schedule.Tracer, fanning every Timeline callback out
// to the in-memory Store, the live Hub, and an optional durable Sink.
// Every method here must return quickly: it runs synchronously inside the
// tick that owns the Timeline.
type Tracer struct {
	store *Store
	hub   *Hub
	sink  Sink
}

// NewTracer wires a Store and Hub; sink may be nil to skip durable export.
func NewTracer(store *Store, hub *Hub, sink Sink) *Tracer {
	return &Tracer{store: store, hub: hub, sink: sink}
}

func (t *Tracer) emit(e Event) {
	t.store.Record(e)
	if t.hub != nil {
		t.hub.Publish(e)
	}
	if t.sink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		t.sink.Append(ctx, e) //nolint:errcheck // best-effort; a failed append is dropped unlogged
	}
}

// OnTick is a no-op, to keep the event stream about individual tasks: the
// selected/evicted/total counts it receives are not recorded anywhere.
func (t *Tracer) OnTick(selected, evicted, total int) {}

// OnTransition records a status change for id.
func (t *Tracer) OnTransition(id taskid.ID, from, to future.Status) {
	t.emit(Event{
		TaskID:    id.String(),
		Stage:     StageTransition,
		Timestamp: time.Now(),
		From:      from.String(),
		To:        to.String(),
	})
}

// OnForceSuspend records an eviction.
func (t *Tracer) OnForceSuspend(id taskid.ID) {
	t.emit(Event{
		TaskID:    id.String(),
		Stage:     StageForceSuspend,
		Timestamp: time.Now(),
	})
}

// RecordSubmitted records a task entering the scheduler, independent of
// the Timeline's own callbacks (Submit happens before Add).
func (t *Tracer) RecordSubmitted(id taskid.ID, priority taskid.Priority, now time.Time) {
	t.emit(newSubmittedEvent(id, priority, now))
}
