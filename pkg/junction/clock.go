package junction

import "time"

// PhaseClock accumulates elapsed time within the currently active phase.
// Negative deltas are the caller's responsibility; the controller rejects
// them before delegating.
type PhaseClock struct {
	elapsed time.Duration
}

// Advance adds dt to the accumulated phase time.
func (c *PhaseClock) Advance(dt time.Duration) {
	c.elapsed += dt
}

// Reset zeroes the accumulator at a phase boundary.
func (c *PhaseClock) Reset() {
	c.elapsed = 0
}

// Elapsed returns the time accumulated since the last Reset.
func (c *PhaseClock) Elapsed() time.Duration {
	return c.elapsed
}
