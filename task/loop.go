package task

import "github.com/riftengine/taskcore/future"

// LoopState is the resumable state for a Loop body. It never reaches a
// "completed" condition on its own — only cancellation can terminate a
// Loop — so the only state worth keeping across invocations is whether the
// most recent Resume was serviced by a request, and which one.
type LoopState struct {
	ServiceToken ServiceToken
	Serviced     bool
}

// Loop invokes fn repeatedly, checking the request proxy between
// iterations. It never returns "completed"; only a cancel request ends it.
type Loop struct {
	fn func()
}

// NewLoop wraps fn as a Loop body.
func NewLoop(fn func()) *Loop {
	return &Loop{fn: fn}
}

// Resume runs fn in a tight loop until a cancel or suspend request is
// observed, recording it into state and returning. Completion is
// impossible for a Loop.
func (l *Loop) Resume(state *LoopState, proxy future.RequestProxy) {
	for {
		l.fn()

		if token, serviced := checkpoint(proxy); serviced {
			state.ServiceToken = token
			state.Serviced = true
			return
		}
	}
}
