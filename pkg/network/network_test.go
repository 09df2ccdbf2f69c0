package network_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/network"
	"github.com/jihwankim/dscale-sim/pkg/network/latency"
	"github.com/jihwankim/dscale-sim/pkg/network/nic"
	"github.com/jihwankim/dscale-sim/pkg/process"
	"github.com/jihwankim/dscale-sim/pkg/random"
)

func TestDeliverUsesLatencyAndCharge(t *testing.T) {
	pool := process.NewPool()
	a := pool.Add("replicas", nil)
	b := pool.Add("replicas", nil)

	topo := latency.NewTopology(latency.WithinPool("replicas", random.Constant(20)))
	nics := nic.NewModel()
	nics.SetPolicy(a, nic.Bounded{BytesPerJiffy: 10})

	rng := random.New(1)
	net := network.New(topo, nics, pool, rng)

	sentAt := net.ChargeSend(a, 100, jiffy.Jiffy(0)) // 10 jiffies transmission
	if sentAt != jiffy.Jiffy(10) {
		t.Fatalf("expected NIC to finish at jiffy 10, got %v", sentAt)
	}

	arrival, err := net.Deliver(a, b, 100, sentAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arrival != jiffy.Jiffy(30) {
		t.Fatalf("expected arrival at 10 (NIC) + 20 (latency) = 30, got %v", arrival)
	}
}

func TestDeliverUnresolvableTopologyErrors(t *testing.T) {
	pool := process.NewPool()
	a := pool.Add("x", nil)
	b := pool.Add("y", nil)

	topo := latency.NewTopology()
	net := network.New(topo, nic.NewModel(), pool, random.New(1))

	if _, err := net.Deliver(a, b, 10, jiffy.Zero); err == nil {
		t.Fatal("expected an error when no rule or default resolves the pool pair")
	}
}
