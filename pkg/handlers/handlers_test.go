package handlers_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/builder"
	"github.com/jihwankim/dscale-sim/pkg/handler"
	"github.com/jihwankim/dscale-sim/pkg/handlers"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/process"
	"github.com/jihwankim/dscale-sim/pkg/random"
	"github.com/jihwankim/dscale-sim/pkg/scheduler"
	"github.com/jihwankim/dscale-sim/pkg/simruntime"
)

func TestEchoRepliesToSender(t *testing.T) {
	var bc *handlers.Broadcaster
	newBroadcaster := handlers.NewBroadcaster(10, 1, 8)
	b := builder.New().
		WithSeed(1).
		WithMaxSteps(100).
		WithPool("a", 1, handlers.NewEcho).
		WithPool("b", 1, func(rt *simruntime.Runtime, self process.ID) handler.Handler {
			h := newBroadcaster(rt, self)
			bc = h.(*handlers.Broadcaster)
			return h
		}).
		WithinPool("a", random.Constant(1)).
		WithinPool("b", random.Constant(1)).
		BetweenPools("b", "a", random.Constant(5)).
		BetweenPools("a", "b", random.Constant(5))

	sched, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	result := sched.Run(jiffy.Jiffy(100))
	if result.EventsProcessed == 0 {
		t.Fatal("expected at least one event to be processed")
	}
	// The broadcaster receives its own broadcast plus the echo's reply.
	if bc.Received != 2 {
		t.Fatalf("expected the broadcaster to receive its own message and the echo's reply, got %d", bc.Received)
	}
}

func TestBroadcasterStopsAfterRounds(t *testing.T) {
	b := builder.New().
		WithSeed(2).
		WithMaxSteps(1000).
		WithPool("nodes", 3, handlers.NewBroadcaster(10, 2, 16)).
		WithinPool("nodes", random.Constant(1))

	sched, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	result := sched.Run(jiffy.Jiffy(1000))
	if result.Reason != scheduler.StopQueueEmpty {
		t.Fatalf("expected the broadcaster to stop scheduling after its rounds, got %v", result.Reason)
	}
}
