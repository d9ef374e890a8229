// Package task implements the resumable task bodies (combinators) that sit
// between a plain user function and the scheduler: Loop, For, Chain, and
// the Await family. Each combinator owns a small resumable-state record
// and exposes a single Resume call that runs until either completion or an
// observed cancel/suspend request, never blocking the scheduler itself.
package task

import "github.com/riftengine/taskcore/future"

// RequestKind names which channel a ServiceToken was recorded for.
type RequestKind uint8

const (
	RequestCancel RequestKind = iota
	RequestSuspend
)

// ServiceToken records why a combinator returned early: which request it
// observed (cancel or suspend) and who asked (user or executor). The
// scheduler glue reads this after Resume returns to pick the matching
// Promise.Notify* call.
type ServiceToken struct {
	Kind   RequestKind
	Source future.RequestSource
}

// checkpoint inspects both request channels and returns the token to
// record plus whether either fired. Cancel takes priority over suspend
// when both are simultaneously requested.
func checkpoint(proxy future.RequestProxy) (ServiceToken, bool) {
	if cr := proxy.FetchCancelRequest(); cr.Requested {
		return ServiceToken{Kind: RequestCancel, Source: cr.Source}, true
	}
	if sr := proxy.FetchSuspendRequest(); sr.Requested {
		return ServiceToken{Kind: RequestSuspend, Source: sr.Source}, true
	}
	return ServiceToken{}, false
}
