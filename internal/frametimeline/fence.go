package frametimeline

import "sync"

// Fence is the compositor's handle to a display-driven completion
// signal. SignalTime returns false while unsignaled; once signaled it
// always returns the same monotonic nsecs thereafter. Fence
// observation never blocks.
type Fence interface {
	SignalTime() (nsecs int64, ok bool)
}

// presignaledFence is already signaled at construction, always
// reporting the nsecs it was given.
type presignaledFence struct {
	at int64
}

func (f presignaledFence) SignalTime() (int64, bool) { return f.at, true }

// NullFence returns a Fence with no real display signal to wait on,
// pre-signaled at nsecs t. Used when setSfPresent has no fence to
// enqueue (spec invariant 4: "or its fence was null / pre-signaled at
// finalize") — callers pass the same endTime they gave setSfPresent so
// the present time it resolves to never precedes it.
func NullFence(t int64) Fence {
	return presignaledFence{at: t}
}

// ManualFence is a test/reference Fence whose signal time is set by
// calling Signal. Safe for concurrent use.
type ManualFence struct {
	mu        sync.Mutex
	signaled  bool
	signalAt  int64
}

// Signal marks the fence as signaled at the given nsecs.
func (f *ManualFence) Signal(nsecs int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signaled = true
	f.signalAt = nsecs
}

// SignalTime implements Fence.
func (f *ManualFence) SignalTime() (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.signaled {
		return 0, false
	}
	return f.signalAt, true
}
