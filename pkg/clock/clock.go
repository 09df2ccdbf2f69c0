// Package clock implements the per-simulation monotonic time source.
package clock

import (
	"fmt"

	"github.com/jihwankim/dscale-sim/pkg/jiffy"
)

// Clock tracks the current simulated time for one simulation instance. Its
// zero value starts at jiffy.Zero.
type Clock struct {
	now jiffy.Jiffy
}

// New returns a Clock starting at jiffy.Zero.
func New() *Clock {
	return &Clock{now: jiffy.Zero}
}

// Now returns the current simulated time. Safe to call from within a
// handler callback.
func (c *Clock) Now() jiffy.Jiffy {
	return c.now
}

// Advance moves the clock forward to future. It is scheduler-internal: the
// engine guarantees it only ever advances time, and panics if asked to move
// backward, since that would indicate a bug in the event queue's ordering
// rather than anything a caller can recover from.
func (c *Clock) Advance(future jiffy.Jiffy) {
	if future.Before(c.now) {
		panic(fmt.Sprintf("clock: refusing to move backward from %s to %s", c.now, future))
	}
	c.now = future
}
