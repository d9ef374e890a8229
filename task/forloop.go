package task

import "github.com/riftengine/taskcore/future"

// ForState is the resumable state for a For body. Next is valid across
// Resume calls: it names the index that has not yet executed. The task
// completes once Next reaches the For's end bound.
type ForState struct {
	ServiceToken ServiceToken
	Next         int64
}

// For invokes fn(i) for i in [begin, end), checking the request proxy
// between iterations. It completes when Next reaches end.
type For struct {
	Begin int64
	End   int64
	fn    func(int64)
}

// NewFor builds a For body over [begin, end). begin == end completes
// immediately without invoking fn, per the spec's round-trip law.
func NewFor(begin, end int64, fn func(int64)) *For {
	return &For{Begin: begin, End: end, fn: fn}
}

// NewState returns a ForState primed at the loop's begin index.
func (f *For) NewState() ForState {
	return ForState{Next: f.Begin}
}

// Done reports whether the loop has run to completion given state.
func (f *For) Done(state *ForState) bool {
	return state.Next >= f.End
}

// Resume runs fn(i) from state.Next up to End, or until a request is
// observed. On first use state.Next should be f.Begin.
func (f *For) Resume(state *ForState, proxy future.RequestProxy) {
	for i := state.Next; i < f.End; i++ {
		f.fn(i)
		state.Next++

		if token, serviced := checkpoint(proxy); serviced {
			state.ServiceToken = token
			return
		}
	}
}
