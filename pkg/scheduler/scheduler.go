// Package scheduler implements the discrete-event main loop that drives one
// simulation instance from its first Start callback to the end of its event
// queue or time budget.
package scheduler

import (
	"fmt"

	"github.com/jihwankim/dscale-sim/pkg/anykv"
	"github.com/jihwankim/dscale-sim/pkg/clock"
	"github.com/jihwankim/dscale-sim/pkg/event"
	"github.com/jihwankim/dscale-sim/pkg/handler"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/network"
	"github.com/jihwankim/dscale-sim/pkg/obslog"
	"github.com/jihwankim/dscale-sim/pkg/obsmetrics"
	"github.com/jihwankim/dscale-sim/pkg/process"
	"github.com/jihwankim/dscale-sim/pkg/random"
	"github.com/jihwankim/dscale-sim/pkg/simruntime"
)

// StopReason says why a Run call stopped draining the event queue.
type StopReason int

const (
	// StopQueueEmpty means every scheduled event was delivered or
	// cancelled; the simulation ran to completion.
	StopQueueEmpty StopReason = iota
	// StopBudgetExceeded means the queue still held events, but the next
	// one was scheduled to deliver after the simulation's time budget.
	StopBudgetExceeded
)

// String renders the stop reason for logging and test output.
func (r StopReason) String() string {
	switch r {
	case StopQueueEmpty:
		return "queue-empty"
	case StopBudgetExceeded:
		return "budget-exceeded"
	default:
		return "unknown"
	}
}

// Result summarizes a completed Run call.
type Result struct {
	Reason          StopReason
	EventsProcessed int
	FinalTime       jiffy.Jiffy
}

// Scheduler owns every piece of mutable state belonging to one simulation
// instance: its clock, event queue, process table, network model, shared
// key/value store, and the ambient runtime facade bound to whichever
// process's callback is currently executing.
//
// A Scheduler is never shared between simulations and is not safe for
// concurrent use; running several simulations in parallel means
// constructing one Scheduler per simulation, each fully independent of the
// others.
type Scheduler struct {
	clock   *clock.Clock
	queue   *event.Queue
	pool    *process.Pool
	net     *network.Model
	store   *anykv.Store
	rng     *random.Randomizer
	runtime *simruntime.Runtime
	log     *obslog.Logger
	metrics *obsmetrics.Metrics

	ran bool
}

// New assembles a Scheduler from its already-validated components. pool must
// already have every process reserved (via process.Pool.Add, with a nil
// handler where the handler itself needs the runtime to be constructed);
// wire is invoked exactly once, with the fully-constructed ambient runtime,
// so callers can build handlers that close over it and register them with
// process.Pool.SetHandler before Run starts delivering events.
//
// It is called by pkg/builder once a configuration has passed build-time
// validation; most callers should use builder.Builder instead of calling
// this directly. metrics may be nil, in which case the run is not observed
// by Prometheus.
func New(pool *process.Pool, net *network.Model, rng *random.Randomizer, selfSendLatency jiffy.Jiffy, log *obslog.Logger, metrics *obsmetrics.Metrics, wire func(rt *simruntime.Runtime)) *Scheduler {
	clk := clock.New()
	queue := event.NewQueue()
	store := anykv.New()
	rt := simruntime.New(clk, queue, net, pool, store, rng, selfSendLatency, metrics)

	if wire != nil {
		wire(rt)
	}

	return &Scheduler{
		clock:   clk,
		queue:   queue,
		pool:    pool,
		net:     net,
		store:   store,
		rng:     rng,
		runtime: rt,
		log:     log,
		metrics: metrics,
	}
}

// Store returns the simulation's shared AnyKV store, for inspection by the
// host application after Run returns.
func (s *Scheduler) Store() *anykv.Store {
	return s.store
}

// Now returns the scheduler's current simulated time.
func (s *Scheduler) Now() jiffy.Jiffy {
	return s.clock.Now()
}

// Run starts every process (invoking Start on each, in process-id order)
// and then drains the event queue until it is empty or the next event would
// deliver after budget jiffies have elapsed.
//
// Run may be called exactly once per Scheduler; calling it again is a
// programmer error and panics, matching the original engine's refusal to
// restart a simulation in place.
func (s *Scheduler) Run(budget jiffy.Jiffy) Result {
	if s.ran {
		panic("scheduler: Run called twice on the same Scheduler")
	}
	s.ran = true

	for _, pid := range s.pool.All() {
		s.invoke(pid, func(rec *process.Record) {
			rec.Handler.Start()
		})
	}

	processed := 0
	for {
		deliverAt, ok := s.queue.PeekDeliverAt()
		if !ok {
			return Result{Reason: StopQueueEmpty, EventsProcessed: processed, FinalTime: s.clock.Now()}
		}
		if deliverAt.After(budget) {
			return Result{Reason: StopBudgetExceeded, EventsProcessed: processed, FinalTime: s.clock.Now()}
		}

		ev, ok := s.queue.Pop()
		if !ok {
			return Result{Reason: StopQueueEmpty, EventsProcessed: processed, FinalTime: s.clock.Now()}
		}
		s.clock.Advance(ev.DeliverAt)
		s.deliverEvent(ev)
		processed++

		if s.metrics != nil {
			s.metrics.EventsProcessed.Inc()
			s.metrics.QueueDepth.Set(float64(s.queue.Len()))
		}
	}
}

func (s *Scheduler) deliverEvent(ev event.Event) {
	pid := process.ID(ev.Destination)
	s.invoke(pid, func(rec *process.Record) {
		switch ev.Kind {
		case event.KindTimer:
			if s.log != nil {
				s.log.Debug("timer fired", "jiffy", s.clock.Now(), "process_id", pid, "event_id", ev.ID)
			}
			rec.Handler.OnTimer(ev.ID)
		case event.KindMessage:
			payload, ok := ev.Payload.(handler.Payload)
			if !ok {
				panic(fmt.Sprintf("scheduler: message event %d carries no payload", ev.ID))
			}
			if s.log != nil {
				s.log.Debug("message delivered", "jiffy", s.clock.Now(), "process_id", pid, "event_id", ev.ID, "from", ev.Source)
			}
			rec.Handler.OnMessage(ev.Source, payload)
		}
	})
}

func (s *Scheduler) invoke(pid process.ID, call func(rec *process.Record)) {
	rec, err := s.pool.Lookup(pid)
	if err != nil {
		panic(fmt.Sprintf("scheduler: %v", err))
	}
	s.runtime.Bind(pid)
	defer s.runtime.Unbind()
	call(rec)
}
