// Package event defines simulation events and the time-ordered queue that
// delivers them.
package event

import "github.com/jihwankim/dscale-sim/pkg/jiffy"

// ID uniquely identifies an event within one simulation. IDs are assigned
// monotonically by the Queue and are never reused, which is what lets
// ID act as a deterministic tie-breaker for events delivered at the same
// jiffy.
type ID uint64

// TimerID identifies a scheduled timer so it can later be cancelled. It is
// always equal to the ID of the Timer event it was created from.
type TimerID = ID

// Kind distinguishes the two event shapes the engine delivers.
type Kind int

const (
	// KindTimer is delivered to the process that scheduled it via OnTimer.
	KindTimer Kind = iota
	// KindMessage is delivered to its destination process via OnMessage.
	KindMessage
)

// ProcessRef is the minimal process identity an event needs to route
// itself; it is a separate type rather than an import of pkg/process
// because pkg/process depends on this package through pkg/handler, so
// importing it here would create a dependency cycle.
type ProcessRef uint64

// Event is a single scheduled occurrence: a timer firing or a message
// arriving, for a specific destination process at a specific jiffy.
type Event struct {
	ID          ID
	Kind        Kind
	Destination ProcessRef
	Source      ProcessRef
	DeliverAt   jiffy.Jiffy

	// Payload carries the delivered message for KindMessage events. It is
	// nil for KindTimer events. Concrete type is handler.Payload; kept as
	// any here to avoid an import cycle (handler depends on this package
	// for TimerID).
	Payload any
}
