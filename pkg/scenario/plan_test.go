package scenario_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/event"
	"github.com/jihwankim/dscale-sim/pkg/handler"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/process"
	"github.com/jihwankim/dscale-sim/pkg/scenario"
	"github.com/jihwankim/dscale-sim/pkg/scheduler"
	"github.com/jihwankim/dscale-sim/pkg/simruntime"
)

type noopHandler struct{}

func (noopHandler) Start()                                       {}
func (noopHandler) OnMessage(handler.ProcessRef, handler.Payload) {}
func (noopHandler) OnTimer(event.TimerID)                         {}

func noopFactory(*simruntime.Runtime, process.ID) handler.Handler {
	return noopHandler{}
}

func TestPlanResolvesPoolsLatencyAndBandwidth(t *testing.T) {
	e := &scenario.Experiment{
		APIVersion: "dscale.sim/v1",
		Kind:       "Experiment",
		Metadata:   scenario.Metadata{Name: "example"},
		Spec: scenario.ExperimentSpec{
			Seed:     7,
			MaxSteps: 500,
			Pools: []scenario.Pool{
				{Name: "nodes", Count: 3, Handler: "noop"},
			},
			Latency: []scenario.LatencyRule{
				{
					Kind:         scenario.LatencyWithinPool,
					Pool:         "nodes",
					Distribution: scenario.Distribution{Type: scenario.DistConstant, Value: 5},
				},
			},
			Bandwidth: []scenario.BandwidthCap{
				{Pool: "nodes", Type: scenario.BandwidthBounded, BytesPerJiffy: 100},
			},
		},
	}

	b, err := scenario.Plan(e, scenario.Registry{"noop": noopFactory})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sched, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	result := sched.Run(jiffy.Jiffy(500))
	if result.Reason != scheduler.StopQueueEmpty {
		t.Fatalf("expected the queue to drain with no messages scheduled, got %v", result.Reason)
	}
}

func TestPlanRejectsUnknownHandler(t *testing.T) {
	e := &scenario.Experiment{
		Spec: scenario.ExperimentSpec{
			Pools: []scenario.Pool{{Name: "nodes", Count: 1, Handler: "ghost"}},
		},
	}
	if _, err := scenario.Plan(e, scenario.Registry{}); err == nil {
		t.Fatal("expected an error for a pool referencing an unregistered handler")
	}
}

func TestPlanRejectsUnknownDistribution(t *testing.T) {
	e := &scenario.Experiment{
		Spec: scenario.ExperimentSpec{
			Pools: []scenario.Pool{{Name: "nodes", Count: 1, Handler: "noop"}},
			Latency: []scenario.LatencyRule{
				{Kind: scenario.LatencyCatchall, Distribution: scenario.Distribution{Type: "bogus"}},
			},
		},
	}
	if _, err := scenario.Plan(e, scenario.Registry{"noop": noopFactory}); err == nil {
		t.Fatal("expected an error for an unknown distribution type")
	}
}
