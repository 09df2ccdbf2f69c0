// Package process defines process identity and the simulation-wide process
// table.
package process

import (
	"fmt"

	"github.com/jihwankim/dscale-sim/pkg/handler"
)

// ID identifies a single simulated process within one simulation instance.
type ID uint64

// PoolName groups processes that share a role (e.g. "replicas", "clients")
// for the purposes of latency-topology resolution and bulk process-count
// configuration.
type PoolName string

// Destination says who an outbound message is addressed to: either one
// specific process or every process in the simulation.
//
// It is an explicit two-case type rather than a nil-means-broadcast id.
// The handler-facing runtime does not take a Destination: simruntime
// exposes SendTo and Broadcast as two separate methods.
type Destination struct {
	broadcast bool
	target    ID
}

// To addresses a message to a single process.
func To(id ID) Destination {
	return Destination{target: id}
}

// Broadcast addresses a message to every process in the simulation.
func Broadcast() Destination {
	return Destination{broadcast: true}
}

// IsBroadcast reports whether d targets every process.
func (d Destination) IsBroadcast() bool {
	return d.broadcast
}

// Target returns the addressed process id. It panics if d is a broadcast
// destination; callers should check IsBroadcast first.
func (d Destination) Target() ID {
	if d.broadcast {
		panic("process: Target called on a broadcast destination")
	}
	return d.target
}

// Record is one process's entry in the simulation's process table.
type Record struct {
	ID      ID
	Pool    PoolName
	Handler handler.Handler
}

// Pool is the simulation-wide table of processes, indexed by ID and by
// PoolName. Processes are assigned ids at build time in insertion order and
// the table is immutable once a simulation starts running.
type Pool struct {
	records []*Record
	byID    map[ID]*Record
	byPool  map[PoolName][]ID
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{
		byID:   make(map[ID]*Record),
		byPool: make(map[PoolName][]ID),
	}
}

// Add assigns the next available ID to h within pool and returns it.
func (p *Pool) Add(pool PoolName, h handler.Handler) ID {
	id := ID(len(p.records) + 1)
	rec := &Record{ID: id, Pool: pool, Handler: h}
	p.records = append(p.records, rec)
	p.byID[id] = rec
	p.byPool[pool] = append(p.byPool[pool], id)
	return id
}

// SetHandler assigns h as the handler for an already-registered process id.
// It exists so a process can be reserved (to learn its ID and pool) before
// its handler, which may itself need to know the process's ID, is
// constructed.
func (p *Pool) SetHandler(id ID, h handler.Handler) {
	rec, ok := p.byID[id]
	if !ok {
		panic(fmt.Sprintf("process: SetHandler called for unregistered id %d", id))
	}
	rec.Handler = h
}

// Lookup returns the record for id, or an error if no such process exists.
func (p *Pool) Lookup(id ID) (*Record, error) {
	rec, ok := p.byID[id]
	if !ok {
		return nil, fmt.Errorf("process: no process with id %d", id)
	}
	return rec, nil
}

// All returns every process id in the pool, in the order they were added.
func (p *Pool) All() []ID {
	ids := make([]ID, len(p.records))
	for i, rec := range p.records {
		ids[i] = rec.ID
	}
	return ids
}

// InPool returns the ids of every process added under the given pool name,
// in the order they were added.
func (p *Pool) InPool(name PoolName) []ID {
	return p.byPool[name]
}

// PoolOf returns the pool name a process was registered under.
func (p *Pool) PoolOf(id ID) (PoolName, error) {
	rec, err := p.Lookup(id)
	if err != nil {
		return "", err
	}
	return rec.Pool, nil
}

// Len returns the number of processes registered in the pool.
func (p *Pool) Len() int {
	return len(p.records)
}
