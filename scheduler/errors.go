package scheduler

import "errors"

// ErrSchedulerClosed is returned by any submission made after Shutdown has
// been called.
var ErrSchedulerClosed = errors.New("scheduler: closed")

// ErrSchedulerSaturated is returned when the admission controller sheds a
// submission: either its priority bucket is rate-limited or the circuit
// breaker is open.
var ErrSchedulerSaturated = errors.New("scheduler: saturated, try again later")
