// Package handlers provides a small library of ready-to-run process
// behaviors that a scenario file can reference by name, so that exercising
// the engine end to end does not require writing Go code for every
// experiment.
package handlers

import (
	"github.com/jihwankim/dscale-sim/pkg/builder"
	"github.com/jihwankim/dscale-sim/pkg/event"
	"github.com/jihwankim/dscale-sim/pkg/handler"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/process"
	"github.com/jihwankim/dscale-sim/pkg/scenario"
	"github.com/jihwankim/dscale-sim/pkg/simruntime"
)

// Echo replies to every message it receives by sending the same payload
// back to its sender. It never initiates traffic on its own.
type Echo struct {
	rt   *simruntime.Runtime
	self process.ID
}

// NewEcho is a builder.Factory constructing an Echo handler.
func NewEcho(rt *simruntime.Runtime, self process.ID) handler.Handler {
	return &Echo{rt: rt, self: self}
}

// Start implements handler.Handler.
func (e *Echo) Start() {}

// OnMessage implements handler.Handler.
func (e *Echo) OnMessage(from handler.ProcessRef, payload handler.Payload) {
	e.rt.SendTo(process.ID(from), payload)
}

// OnTimer implements handler.Handler.
func (e *Echo) OnTimer(event.TimerID) {}

// Broadcaster sends a fixed-size message to every process, including
// itself, once per Period jiffies, up to Rounds times. It is useful for
// exercising the bandwidth model and latency topology without writing a
// bespoke protocol.
type Broadcaster struct {
	rt          *simruntime.Runtime
	self        process.ID
	period      jiffy.Jiffy
	rounds      int
	payloadSize int

	Sent     int
	Received int
}

// NewBroadcaster returns a builder.Factory that constructs a Broadcaster
// sending period-spaced rounds messages of size payloadSize bytes.
func NewBroadcaster(period jiffy.Jiffy, rounds, payloadSize int) builder.Factory {
	return func(rt *simruntime.Runtime, self process.ID) handler.Handler {
		return &Broadcaster{rt: rt, self: self, period: period, rounds: rounds, payloadSize: payloadSize}
	}
}

// Start implements handler.Handler.
func (b *Broadcaster) Start() {
	b.scheduleNext()
}

func (b *Broadcaster) scheduleNext() {
	if b.Sent >= b.rounds {
		return
	}
	b.rt.ScheduleTimerAfter(b.period)
}

// OnTimer implements handler.Handler.
func (b *Broadcaster) OnTimer(event.TimerID) {
	b.Sent++
	b.rt.Broadcast(handler.RawPayload(make([]byte, b.payloadSize)))
	b.scheduleNext()
}

// OnMessage implements handler.Handler.
func (b *Broadcaster) OnMessage(from handler.ProcessRef, payload handler.Payload) {
	b.Received++
}

// Registry returns the built-in handlers addressable by name from a
// scenario.Experiment's pool.handler field. Broadcaster is parameterized
// and so is not included here; callers that want it register it under a
// name of their choosing via handlers.NewBroadcaster.
func Registry() scenario.Registry {
	return scenario.Registry{
		"echo": NewEcho,
	}
}
