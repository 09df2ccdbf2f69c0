package latency_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/network/latency"
	"github.com/jihwankim/dscale-sim/pkg/process"
	"github.com/jihwankim/dscale-sim/pkg/random"
)

func sampleOf(t *testing.T, s random.Sampler) float64 {
	t.Helper()
	return s.Sample(random.New(1))
}

func TestMostSpecificRuleWins(t *testing.T) {
	replicas := process.PoolName("replicas")
	clients := process.PoolName("clients")

	topo := latency.NewTopology(
		latency.Catchall(random.Constant(100)),
		latency.BetweenPools(clients, replicas, random.Constant(50)),
		latency.WithinPool(replicas, random.Constant(5)),
	).WithDefault(random.Constant(999))

	if s, err := topo.Resolve(replicas, replicas); err != nil || sampleOf(t, s) != 5 {
		t.Fatalf("expected WithinPool(replicas) to win, got %v err=%v", s, err)
	}
	if s, err := topo.Resolve(clients, replicas); err != nil || sampleOf(t, s) != 50 {
		t.Fatalf("expected BetweenPools(clients, replicas) to win, got %v err=%v", s, err)
	}
	if s, err := topo.Resolve(clients, clients); err != nil || sampleOf(t, s) != 100 {
		t.Fatalf("expected Catchall to apply to (clients, clients), got %v err=%v", s, err)
	}
}

func TestMissingRuleFallsBackToDefault(t *testing.T) {
	topo := latency.NewTopology().WithDefault(random.Constant(42))
	s, err := topo.Resolve("a", "b")
	if err != nil || sampleOf(t, s) != 42 {
		t.Fatalf("expected default sampler, got %v err=%v", s, err)
	}
}

func TestNoRuleNoDefaultIsBuildTimeError(t *testing.T) {
	topo := latency.NewTopology()
	if err := topo.Validate([]process.PoolName{"a", "b"}); err == nil {
		t.Fatal("expected Validate to error when no rule or default can resolve a pool pair")
	}
}
