package task

import "github.com/riftengine/taskcore/future"

// ChainState is the resumable state for a Chain body. The heterogeneous
// intermediate-result stack the spec describes (sized to the largest
// phase's result type) is represented here as a boxed any, since Go has
// no sum-type facility that would beat an interface{} slot for a chain of
// arbitrary, statically-unrelated phase types; each phase type-asserts its
// own input.
type ChainState struct {
	ServiceToken   ServiceToken
	NextPhaseIndex int
	intermediate   any
}

// Phase is one stage of a Chain: it consumes the previous phase's result
// (nil for the first phase, which takes no input) and produces the next.
type Phase func(input any) any

// Chain is a pipeline of Phases where phase i+1 consumes phase i's result.
type Chain struct {
	phases []Phase
}

// NewChain builds a Chain from an ordered list of phases. A single-phase
// chain is equivalent to calling that phase directly, per the spec's
// round-trip law.
func NewChain(phases ...Phase) *Chain {
	return &Chain{phases: phases}
}

// NumPhases returns how many phases the chain has.
func (c *Chain) NumPhases() int { return len(c.phases) }

// Done reports whether every phase has run.
func (c *Chain) Done(state *ChainState) bool {
	return state.NextPhaseIndex >= len(c.phases)
}

// Result returns the final phase's output. Only meaningful once Done.
func (c *Chain) Result(state *ChainState) any {
	return state.intermediate
}

// Resume runs phases in order, checking the request proxy between each.
// On request it records the token and returns with NextPhaseIndex pointing
// at the not-yet-executed phase.
func (c *Chain) Resume(state *ChainState, proxy future.RequestProxy) {
	for state.NextPhaseIndex < len(c.phases) {
		phase := c.phases[state.NextPhaseIndex]
		state.intermediate = phase(state.intermediate)
		state.NextPhaseIndex++

		if token, serviced := checkpoint(proxy); serviced {
			state.ServiceToken = token
			return
		}
	}
}
