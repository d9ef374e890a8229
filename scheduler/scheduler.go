// Package scheduler is the Scheduler Facade: the single entry point that
// wires the Schedule Timeline, Thread Slots, and task combinators into a
// runnable cooperative scheduler, with admission control, panic
// quarantine, metrics, and trace export layered around the core per
// spec section 6 ("ambient concerns a real deployment needs but the core
// algorithm does not").
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riftengine/taskcore/admission"
	"github.com/riftengine/taskcore/clock"
	"github.com/riftengine/taskcore/future"
	"github.com/riftengine/taskcore/observability"
	"github.com/riftengine/taskcore/schedule"
	"github.com/riftengine/taskcore/slot"
	"github.com/riftengine/taskcore/taskid"
	"github.com/riftengine/taskcore/trace"
)

// pendingItem is a combinator registered with the scheduler but not yet
// admitted to the Timeline: Await/Delay/Deferred all reduce to "check a
// readiness predicate every tick, admit exactly once it holds."
type pendingItem struct {
	ready func(now time.Time) bool
	admit func()
}

// Scheduler owns a Schedule Timeline, a fixed pool of Thread Slots and
// worker goroutines draining them, and the admission/health/trace/metrics
// machinery around Submit and Tick.
type Scheduler struct {
	cfg Config
	clk clock.Clock

	mu       sync.Mutex
	timeline *schedule.Timeline
	gen      *taskid.Generator
	pending  []*pendingItem

	slots   []*slot.Slot
	health  *workerHealth
	admit   *admission.Controller
	tracer  *trace.Tracer
	traceStore *trace.Store

	closed atomic.Bool
	wg     sync.WaitGroup
}

// New builds a Scheduler from cfg but does not start its workers; call
// Start for that. A zero Config is replaced with DefaultConfig's fields.
func New(cfg Config, clk clock.Clock, hub *trace.Hub, sink trace.Sink) *Scheduler {
	cfg = cfg.withDefaults()
	if clk == nil {
		clk = clock.Monotonic{}
	}

	store := trace.NewStore(cfg.TraceEventCapacity)
	tracer := trace.NewTracer(store, hub, sink)

	slots := make([]*slot.Slot, cfg.Workers)
	for i := range slots {
		slots[i] = slot.New()
	}

	return &Scheduler{
		cfg:        cfg,
		clk:        clk,
		timeline:   schedule.New(tracer),
		gen:        taskid.NewGenerator(),
		slots:      slots,
		health:     newWorkerHealth(cfg.Workers),
		admit:      admission.NewController(cfg.Admission),
		tracer:     tracer,
		traceStore: store,
	}
}

// Start launches the worker pool. Call once.
func (s *Scheduler) Start() {
	for i := range s.slots {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// TraceStore exposes the in-memory event ring for the admin HTTP surface.
func (s *Scheduler) TraceStore() *trace.Store { return s.traceStore }

// worker repeatedly drains slot idx, running whatever is pushed to it
// until the scheduler is closed and the slot has nothing left pending.
func (s *Scheduler) worker(idx int) {
	defer s.wg.Done()
	sl := s.slots[idx]
	for {
		fn, _, ok := sl.PopPending(func() bool { return s.closed.Load() })
		if !ok {
			return
		}
		s.runTask(idx, fn)
	}
}

// runTask invokes fn with panic recovery: a task body that panics never
// takes its worker down, it just costs that slot a strike toward
// quarantine.
func (s *Scheduler) runTask(idx int, fn slot.Func) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(idx, r)
			if s.health.recordPanic(idx, s.cfg.PanicQuarantineThreshold) {
				s.slots[idx].Quarantine(true)
				s.health.quarantine(idx, s.clk.Now().Add(s.cfg.QuarantineCooldown))
				observability.QuarantinedSlots.Set(float64(s.health.quarantinedCount()))
			}
		} else {
			s.health.recordSuccess(idx)
		}
		s.slots[idx].MarkExecutingFinished()
	}()
	fn()
}

// checkAdmission reports whether a submission at priority p is currently
// allowed, incrementing the rejection metric on failure.
func (s *Scheduler) checkAdmission(p taskid.Priority, reason string) bool {
	if s.admit.Allow(p) {
		return true
	}
	observability.AdmissionRejections.WithLabelValues(reason).Inc()
	observability.CircuitBreakerState.Set(float64(s.admit.BreakerState()))
	return false
}

// rawAdmitLocked registers fn as a live Timeline entry. Callers must hold
// s.mu and must already have verified admission (or be graduating an
// already-admitted combinator).
func (s *Scheduler) rawAdmitLocked(priority taskid.Priority, handle future.Handle, fn slot.Func) taskid.ID {
	id := s.gen.Next()
	now := s.clk.Now()
	s.timeline.Add(fn, id, priority, handle, now)
	s.tracer.RecordSubmitted(id, priority, now)
	return id
}

// admit is the entry point for immediately-schedulable tasks (Fn, Loop,
// For, Chain): it takes the admission lock, checks the controller, and
// registers the entry.
func (s *Scheduler) admit(priority taskid.Priority, handle future.Handle, fn slot.Func) (taskid.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return taskid.ID{}, ErrSchedulerClosed
	}
	if !s.checkAdmission(priority, "submit") {
		return taskid.ID{}, ErrSchedulerSaturated
	}
	return s.rawAdmitLocked(priority, handle, fn), nil
}

// registerPending is the entry point for Await/Delay/Deferred: admission
// is checked once, at registration, since the caller's Future has already
// escaped by the time the readiness predicate could later be rejected.
func (s *Scheduler) registerPending(priority taskid.Priority, ready func(now time.Time) bool, admitFn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return ErrSchedulerClosed
	}
	if !s.checkAdmission(priority, "submit") {
		return ErrSchedulerSaturated
	}
	s.pending = append(s.pending, &pendingItem{ready: ready, admit: admitFn})
	observability.PendingCombinators.Set(float64(len(s.pending)))
	return nil
}

// Tick advances the scheduler by one step: graduate ready combinators into
// the Timeline, clear expired quarantines, then run the Timeline's own
// selection algorithm over the current Slots.
func (s *Scheduler) Tick(now time.Time) {
	start := time.Now()

	s.mu.Lock()
	remaining := s.pending[:0]
	for _, p := range s.pending {
		if p.ready(now) {
			p.admit()
		} else {
			remaining = append(remaining, p)
		}
	}
	s.pending = remaining
	observability.PendingCombinators.Set(float64(len(s.pending)))

	for _, idx := range s.health.expired(now) {
		s.slots[idx].Quarantine(false)
	}

	s.timeline.Tick(s.slots, now)

	s.recordTickMetrics()
	s.mu.Unlock()
	observability.TickDuration.Observe(time.Since(start).Seconds())
}

func (s *Scheduler) recordTickMetrics() {
	busy := 0
	for _, sl := range s.slots {
		q := sl.Query()
		if q.HasExecuting || q.HasPending {
			busy++
		}
	}

	byPriority := make(map[string]int, 5)
	for _, e := range s.timeline.Snapshot() {
		byPriority[e.Priority.String()]++
	}
	for _, p := range []taskid.Priority{taskid.Background, taskid.Service, taskid.Normal, taskid.Interactive, taskid.Critical} {
		observability.QueueDepth.WithLabelValues(p.String()).Set(float64(byPriority[p.String()]))
	}

	if len(s.slots) > 0 {
		observability.SlotUtilization.Set(float64(busy) / float64(len(s.slots)))
	}
	observability.QuarantinedSlots.Set(float64(s.health.quarantinedCount()))
	s.admit.Observe(s.clk.Now(), s.timeline.Len(), busy == len(s.slots))
	observability.CircuitBreakerState.Set(float64(s.admit.BreakerState()))
}

// Run drives Tick every interval until ctx is canceled. It is a
// convenience for callers that don't already have their own tick source
// (a game loop, a frame callback); it is not required — Tick may be
// called directly from anywhere.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(s.clk.Now())
		}
	}
}

// Shutdown force-cancels every live task, drains the Timeline, and joins
// every worker. It returns ctx.Err() if ctx expires before the drain
// finishes; workers that are mid-task when that happens are not killed —
// only combinator tasks that check their proxy will actually stop.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}

	s.mu.Lock()
	for _, e := range s.timeline.Snapshot() {
		e.Handle.RequestForceCancel()
	}
	s.mu.Unlock()

	ticker := time.NewTicker(schedule.InterruptPeriod)
	defer ticker.Stop()

drain:
	for {
		s.Tick(s.clk.Now())
		if s.timeline.Len() == 0 {
			break
		}
		select {
		case <-ctx.Done():
			break drain
		case <-ticker.C:
		}
	}

	for _, sl := range s.slots {
		sl.Wake()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
