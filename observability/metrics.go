// Package observability exposes the Scheduler's Prometheus metrics. Every
// metric is a package-level promauto var, registered once at process start,
// the same way the teacher's control-plane metrics are declared.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueueDepth tracks how many Timeline entries are live, by priority.
	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "taskcore_queue_depth",
		Help: "Current number of live timeline entries by priority",
	}, []string{"priority"})

	// StarvationWindowWidth is registered for the number of starvation
	// periods the selection window spanned on the last tick. Nothing in this
	// module sets it, so it stays at zero.
	StarvationWindowWidth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taskcore_starvation_window_periods",
		Help: "Number of starvation periods the selection window spanned on the last tick",
	})

	// ForceSuspensions is registered for force-suspensions issued by Tick.
	// Nothing in this module increments it, so it stays at zero.
	ForceSuspensions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskcore_force_suspensions_total",
		Help: "Total number of entries force-suspended by the timeline",
	})

	// TickDuration tracks wall-clock time spent in one Timeline.Tick call.
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "taskcore_tick_duration_seconds",
		Help:    "Duration of one scheduler tick",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
	})

	// SlotUtilization tracks the fraction of worker slots occupied
	// (pending or executing) after a tick.
	SlotUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taskcore_slot_utilization_ratio",
		Help: "Fraction of worker slots occupied after the last tick",
	})

	// QuarantinedSlots tracks how many slots are currently quarantined
	// after repeated task panics.
	QuarantinedSlots = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taskcore_quarantined_slots",
		Help: "Current number of quarantined worker slots",
	})

	// TaskPanics counts task bodies that panicked mid-execution.
	TaskPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskcore_task_panics_total",
		Help: "Total number of task bodies that panicked",
	})

	// AdmissionRejections counts Submit calls rejected by the admission
	// controller, by reason.
	AdmissionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskcore_admission_rejections_total",
		Help: "Submissions rejected before reaching the timeline, by reason",
	}, []string{"reason"})

	// CircuitBreakerState tracks the admission circuit breaker's state
	// (0=closed, 1=open, 2=half-open).
	CircuitBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taskcore_circuit_breaker_state",
		Help: "Admission circuit breaker state (0=closed, 1=open, 2=half-open)",
	})

	// PendingCombinators tracks how many Await/Delay/Deferred registrations
	// are waiting on a readiness predicate before joining the timeline.
	PendingCombinators = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taskcore_pending_combinators",
		Help: "Current number of registered combinators not yet admitted to the timeline",
	})
)
