// Package handler defines the contract a simulated process implements.
package handler

import "github.com/jihwankim/dscale-sim/pkg/event"

// Payload is a message body a process sends to another process (or to
// itself, or to everyone via broadcast). Implementations report their own
// size so the bandwidth model can charge the sending NIC for it.
type Payload interface {
	// VirtualSize reports the number of bytes this payload costs to
	// transmit, for use by the bandwidth model. It does not need to match
	// any real in-memory or wire representation.
	VirtualSize() int
}

// RawPayload is the simplest Payload: a byte slice whose VirtualSize is its
// length. Most handlers that do not need a richer message type can use this
// directly instead of defining their own Payload implementation.
type RawPayload []byte

// VirtualSize implements Payload.
func (p RawPayload) VirtualSize() int {
	return len(p)
}

// Handler is the behavior of one simulated process. The scheduler invokes
// exactly one of these three methods per event delivered to the process,
// never concurrently and never re-entrantly: a handler's own callback is
// always allowed to run to completion before another event for the same or
// any other process is delivered.
type Handler interface {
	// Start is invoked once, at the beginning of the simulation, before any
	// message or timer event is delivered to any process.
	Start()

	// OnMessage is invoked when a message addressed to this process (sent
	// directly or via broadcast) arrives.
	OnMessage(from ProcessRef, payload Payload)

	// OnTimer is invoked when a timer this process scheduled fires. It is
	// never invoked for a timer that was cancelled before it fired.
	OnTimer(id event.TimerID)
}

// ProcessRef identifies the sender of a message delivered to OnMessage. It
// mirrors process.ID without importing pkg/process, which itself depends on
// this package for the Handler type.
type ProcessRef = event.ProcessRef
