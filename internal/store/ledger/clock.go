package ledger

import "sync/atomic"

// Clock supplies the monotonic logical time used to stamp purchases and to
// evaluate the return grace window. Ticks are an abstract counter (the
// equivalent of a block height), not wall-clock time.
type Clock interface {
	Now() uint64
}

// TickClock is a Clock backed by an atomic counter that advances by one on
// every call. It stands in for a host-supplied sequence in a single-process
// deployment.
type TickClock struct {
	ticks atomic.Uint64
}

// NewTickClock returns a TickClock starting at zero.
func NewTickClock() *TickClock {
	return &TickClock{}
}

// Now returns the next tick.
func (c *TickClock) Now() uint64 {
	return c.ticks.Add(1)
}

// ManualClock is a Clock whose value is set explicitly. Intended for tests
// and for hosts that already own a logical clock.
type ManualClock struct {
	ticks atomic.Uint64
}

// NewManualClock returns a ManualClock pinned at the given tick.
func NewManualClock(now uint64) *ManualClock {
	c := &ManualClock{}
	c.ticks.Store(now)
	return c
}

// Now returns the current tick without advancing it.
func (c *ManualClock) Now() uint64 {
	return c.ticks.Load()
}

// Set moves the clock to the given tick.
func (c *ManualClock) Set(now uint64) {
	c.ticks.Store(now)
}

// Advance moves the clock forward by delta ticks.
func (c *ManualClock) Advance(delta uint64) {
	c.ticks.Add(delta)
}
