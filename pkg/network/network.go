// Package network composes the latency topology and NIC bandwidth models
// into the single network a simulation's processes send through.
package network

import (
	"fmt"

	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/network/latency"
	"github.com/jihwankim/dscale-sim/pkg/network/nic"
	"github.com/jihwankim/dscale-sim/pkg/process"
	"github.com/jihwankim/dscale-sim/pkg/random"
)

// Model is the network a simulation's messages travel through: it decides
// how long a send from one process to another takes, combining the sender's
// NIC occupancy with the latency topology between the two processes' pools.
type Model struct {
	topology *latency.Topology
	nics     *nic.Model
	pools    *process.Pool
	rng      *random.Randomizer
}

// New returns a Model that resolves latency via topology and bandwidth via
// nics, looking up pool membership from pools and drawing latency samples
// from rng.
func New(topology *latency.Topology, nics *nic.Model, pools *process.Pool, rng *random.Randomizer) *Model {
	return &Model{topology: topology, nics: nics, pools: pools, rng: rng}
}

// Deliver computes the jiffy at which a message sent by sender to recipient
// at sentAt, of the given byteSize, arrives.
//
// Deliver only draws the latency; it does not charge the sender's NIC and
// does not use byteSize. Callers charge the NIC via ChargeSend and pass the
// resulting jiffy as sentAt; for a broadcast, ChargeSend is called once and
// its jiffy is reused for every recipient's Deliver call, so the sender's
// bandwidth is not overcounted.
func (m *Model) Deliver(sender, recipient process.ID, byteSize int, sentAt jiffy.Jiffy) (jiffy.Jiffy, error) {
	fromPool, err := m.pools.PoolOf(sender)
	if err != nil {
		return 0, fmt.Errorf("network: resolving sender pool: %w", err)
	}
	toPool, err := m.pools.PoolOf(recipient)
	if err != nil {
		return 0, fmt.Errorf("network: resolving recipient pool: %w", err)
	}
	sampler, err := m.topology.Resolve(fromPool, toPool)
	if err != nil {
		return 0, err
	}
	delay := sampler.Sample(m.rng)
	if delay < 0 {
		delay = 0
	}
	return sentAt.Add(jiffy.Jiffy(delay)), nil
}

// ChargeSend charges sender's NIC once for a broadcast (or any single
// outbound transmission) of byteSize bytes issued at sentAt, and returns
// the jiffy the NIC finishes putting it on the wire. Every recipient's
// latency is then drawn independently from that single jiffy.
func (m *Model) ChargeSend(sender process.ID, byteSize int, sentAt jiffy.Jiffy) jiffy.Jiffy {
	return m.nics.Charge(sender, byteSize, sentAt)
}
