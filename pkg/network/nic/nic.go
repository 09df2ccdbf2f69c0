// Package nic models the send-side bandwidth cost of a process's network
// interface.
package nic

import (
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/process"
)

// BandwidthType selects a process's send-side bandwidth model.
type BandwidthType interface {
	isBandwidthType()
}

// Unbounded gives a process's NIC unlimited bandwidth: sending never adds
// transmission delay, regardless of message size or send frequency.
type Unbounded struct{}

func (Unbounded) isBandwidthType() {}

// Bounded gives a process's NIC a fixed throughput, in bytes per jiffy.
// Sends from the same process are serialized FIFO and each occupies the NIC
// for ceil(size/rate) jiffies.
type Bounded struct {
	BytesPerJiffy int64
}

func (Bounded) isBandwidthType() {}

// Model tracks, per sending process, the jiffy at which that process's NIC
// becomes free to start transmitting its next message.
type Model struct {
	policies map[process.ID]BandwidthType
	freeAt   map[process.ID]jiffy.Jiffy
}

// NewModel returns an empty Model. Call SetPolicy for every process before
// calling Charge for it; a process with no policy set is treated as
// Unbounded.
func NewModel() *Model {
	return &Model{
		policies: make(map[process.ID]BandwidthType),
		freeAt:   make(map[process.ID]jiffy.Jiffy),
	}
}

// SetPolicy assigns sender's bandwidth policy.
func (m *Model) SetPolicy(sender process.ID, policy BandwidthType) {
	m.policies[sender] = policy
}

// Charge accounts for sender transmitting a message of byteSize bytes,
// starting no earlier than requestedAt (the jiffy the send was issued at).
// It returns the jiffy at which the transmission finishes and the message
// can be considered to have left the NIC — the earliest jiffy latency
// should be added to in order to compute the message's arrival time.
//
// A broadcast is expected to call Charge exactly once per send, not once
// per recipient: the NIC is occupied by serializing the bytes onto the
// wire a single time, while each recipient still draws its own independent
// latency sample on top of the jiffy this returns.
func (m *Model) Charge(sender process.ID, byteSize int, requestedAt jiffy.Jiffy) jiffy.Jiffy {
	policy, ok := m.policies[sender]
	if !ok {
		policy = Unbounded{}
	}

	bounded, isBounded := policy.(Bounded)
	if !isBounded || bounded.BytesPerJiffy <= 0 {
		return requestedAt
	}

	start := requestedAt
	if busyUntil, ok := m.freeAt[sender]; ok && busyUntil.After(start) {
		start = busyUntil
	}

	cost := ceilDiv(int64(byteSize), bounded.BytesPerJiffy)
	finish := start.Add(jiffy.Jiffy(cost))
	m.freeAt[sender] = finish
	return finish
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
