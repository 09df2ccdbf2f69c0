// Package simruntime implements the ambient runtime facade handed to a
// process's handler while one of its callbacks is executing.
//
// A single Runtime is owned by the scheduler for the lifetime of one
// simulation. Before invoking a handler's Start, OnMessage, or OnTimer, the
// scheduler binds the Runtime to that process's ID; immediately after the
// callback returns, it unbinds it. The methods that act on behalf of the
// current process (Self, SendTo, Broadcast, ScheduleTimerAfter) panic when
// called outside an active callback. Now, ProcessCount, Random, Store and
// CancelTimer do not check whether a callback is active.
package simruntime

import (
	"fmt"
	"strconv"

	"github.com/jihwankim/dscale-sim/pkg/anykv"
	"github.com/jihwankim/dscale-sim/pkg/clock"
	"github.com/jihwankim/dscale-sim/pkg/event"
	"github.com/jihwankim/dscale-sim/pkg/handler"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/network"
	"github.com/jihwankim/dscale-sim/pkg/obsmetrics"
	"github.com/jihwankim/dscale-sim/pkg/process"
	"github.com/jihwankim/dscale-sim/pkg/random"
)

// Runtime is the ambient handle a Handler uses to observe and affect its
// simulation: reading the clock, sending messages, scheduling and
// cancelling timers, drawing randomness, and reading or writing the
// simulation's shared key/value store.
type Runtime struct {
	clock       *clock.Clock
	queue       *event.Queue
	net         *network.Model
	pool        *process.Pool
	store       *anykv.Store
	rng         *random.Randomizer
	selfLatency jiffy.Jiffy
	metrics     *obsmetrics.Metrics

	current process.ID
	bound   bool
}

// New returns a Runtime over the given simulation-scoped components.
// selfSendLatency is the delay applied when a process sends a message to
// itself, bypassing the general latency topology. metrics may be nil, in
// which case the runtime's sends and timer cancellations are not observed.
func New(clk *clock.Clock, queue *event.Queue, net *network.Model, pool *process.Pool, store *anykv.Store, rng *random.Randomizer, selfSendLatency jiffy.Jiffy, metrics *obsmetrics.Metrics) *Runtime {
	return &Runtime{clock: clk, queue: queue, net: net, pool: pool, store: store, rng: rng, selfLatency: selfSendLatency, metrics: metrics}
}

// Bind scopes the Runtime to pid for the duration of one handler callback.
// It is called by the scheduler immediately before invoking that callback;
// other callers should not need it.
func (r *Runtime) Bind(pid process.ID) {
	r.current = pid
	r.bound = true
}

// Unbind ends the current callback's scope. It is called by the scheduler
// immediately after a handler callback returns.
func (r *Runtime) Unbind() {
	r.bound = false
}

func (r *Runtime) requireBound() {
	if !r.bound {
		panic("simruntime: called outside an active handler callback")
	}
}

// Now returns the simulation's current time.
func (r *Runtime) Now() jiffy.Jiffy {
	return r.clock.Now()
}

// Self returns the ID of the process whose callback is currently running.
func (r *Runtime) Self() process.ID {
	r.requireBound()
	return r.current
}

// ProcessCount returns the total number of processes registered in the
// simulation, across every pool.
func (r *Runtime) ProcessCount() int {
	return r.pool.Len()
}

// Random returns the simulation's shared Randomizer. Calls made against it
// from within a handler callback are part of the simulation's deterministic
// draw sequence.
func (r *Runtime) Random() *random.Randomizer {
	return r.rng
}

// Store returns the simulation's shared AnyKV store.
func (r *Runtime) Store() *anykv.Store {
	return r.store
}

// SendTo delivers payload to dest. The sending process's NIC is charged for
// payload's VirtualSize, then the message's arrival time is computed from
// the latency topology (or the self-send latency, if dest is the caller).
func (r *Runtime) SendTo(dest process.ID, payload handler.Payload) {
	r.requireBound()
	sender := r.current
	sentAt := r.net.ChargeSend(sender, payload.VirtualSize(), r.clock.Now())
	if r.metrics != nil {
		r.metrics.NicBytesSent.WithLabelValues(strconv.FormatUint(uint64(sender), 10)).Add(float64(payload.VirtualSize()))
	}
	r.deliver(sender, dest, payload, sentAt)
}

// Broadcast delivers payload to every process in the simulation, including
// the caller. The sending process's NIC is charged exactly once for the
// send, regardless of how many recipients there are; each recipient still
// draws its own independent latency sample.
func (r *Runtime) Broadcast(payload handler.Payload) {
	r.requireBound()
	sender := r.current
	sentAt := r.net.ChargeSend(sender, payload.VirtualSize(), r.clock.Now())
	if r.metrics != nil {
		r.metrics.NicBytesSent.WithLabelValues(strconv.FormatUint(uint64(sender), 10)).Add(float64(payload.VirtualSize()))
	}
	for _, pid := range r.pool.All() {
		r.deliver(sender, pid, payload, sentAt)
	}
}

func (r *Runtime) deliver(sender, dest process.ID, payload handler.Payload, sentAt jiffy.Jiffy) {
	var arrival jiffy.Jiffy
	if dest == sender {
		arrival = sentAt.Add(r.selfLatency)
	} else {
		a, err := r.net.Deliver(sender, dest, payload.VirtualSize(), sentAt)
		if err != nil {
			// The topology was validated at build time against every pool
			// pair; reaching this means sender or dest is not a process in
			// the table (for example an unknown dest id).
			panic(fmt.Sprintf("simruntime: %v", err))
		}
		arrival = a
	}

	r.queue.Push(event.Event{
		ID:          r.queue.NextID(),
		Kind:        event.KindMessage,
		Destination: event.ProcessRef(dest),
		Source:      event.ProcessRef(sender),
		DeliverAt:   arrival,
		Payload:     payload,
	})

	if r.metrics != nil {
		r.metrics.EventLatency.Observe(float64(arrival.Sub(sentAt)))
	}
}

// ScheduleTimerAfter schedules a timer to fire for the calling process
// delay jiffies from now, and returns its ID so it can later be cancelled
// with CancelTimer.
func (r *Runtime) ScheduleTimerAfter(delay jiffy.Jiffy) event.TimerID {
	r.requireBound()
	id := r.queue.NextID()
	r.queue.Push(event.Event{
		ID:          id,
		Kind:        event.KindTimer,
		Destination: event.ProcessRef(r.current),
		Source:      event.ProcessRef(r.current),
		DeliverAt:   r.clock.Now().Add(delay),
	})
	return id
}

// CancelTimer cancels a previously scheduled timer. Cancelling a timer that
// has already fired, or never existed, is a harmless no-op.
func (r *Runtime) CancelTimer(id event.TimerID) {
	r.queue.Cancel(id)
	if r.metrics != nil {
		r.metrics.TimersCancelled.Inc()
	}
}
