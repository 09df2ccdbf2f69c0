// Package builder provides the fluent, validated configuration surface used
// to assemble a scheduler.Scheduler before running a simulation.
//
// All validation happens inside Build, at configuration time: an
// unreachable latency rule, a pool with no processes, or a missing factory
// is reported as an error there, rather than discovered mid-run.
package builder

import (
	"errors"
	"fmt"

	"github.com/jihwankim/dscale-sim/pkg/handler"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/network"
	"github.com/jihwankim/dscale-sim/pkg/network/latency"
	"github.com/jihwankim/dscale-sim/pkg/network/nic"
	"github.com/jihwankim/dscale-sim/pkg/obslog"
	"github.com/jihwankim/dscale-sim/pkg/obsmetrics"
	"github.com/jihwankim/dscale-sim/pkg/process"
	"github.com/jihwankim/dscale-sim/pkg/random"
	"github.com/jihwankim/dscale-sim/pkg/scheduler"
	"github.com/jihwankim/dscale-sim/pkg/simruntime"
)

// Factory constructs the handler for a single process. rt is the ambient
// runtime the process will use for the rest of the simulation; self is the
// ID the process has been assigned.
type Factory func(rt *simruntime.Runtime, self process.ID) handler.Handler

// DefaultPool is the pool name used by WithProcessCount/WithFactory, the
// single-pool convenience pair mirroring the original engine's
// process_count/factory configuration.
const DefaultPool process.PoolName = "default"

// DefaultMaxSteps is the value a Builder records as its time budget if
// WithMaxSteps is never called. Build does not pass it to the Scheduler; the
// budget a run actually uses is the argument given to Scheduler.Run.
const DefaultMaxSteps jiffy.Jiffy = 1000

type poolSpec struct {
	name    process.PoolName
	count   int
	factory Factory
}

// Builder assembles a scheduler.Scheduler from pools of processes, a latency
// topology, a bandwidth policy per pool, a seed, and a time budget.
type Builder struct {
	seed            random.Seed
	maxSteps        jiffy.Jiffy
	selfSendLatency jiffy.Jiffy
	log             *obslog.Logger
	metrics         *obsmetrics.Metrics

	pools []poolSpec

	singleCount   int
	singleFactory Factory

	rules          []latency.Rule
	defaultLatency random.Sampler
	hasDefault     bool

	bandwidth map[process.PoolName]nic.BandwidthType

	errs []error
}

// New returns a Builder with the engine's documented defaults: seed 0,
// a recorded 1000-jiffy budget (see DefaultMaxSteps), unbounded bandwidth
// everywhere, and 0-jiffy self-send latency.
func New() *Builder {
	return &Builder{
		maxSteps:  DefaultMaxSteps,
		bandwidth: make(map[process.PoolName]nic.BandwidthType),
	}
}

// WithSeed sets the seed driving every random draw in the simulation.
func (b *Builder) WithSeed(seed random.Seed) *Builder {
	b.seed = seed
	return b
}

// WithMaxSteps records the simulation's time budget on the Builder. Build
// does not pass it to the Scheduler: Run stops once the event queue's next
// event would deliver after the budget given to Run itself, whatever was
// set here.
func (b *Builder) WithMaxSteps(steps jiffy.Jiffy) *Builder {
	b.maxSteps = steps
	return b
}

// WithSelfSendLatency sets the delay applied when a process sends to
// itself, bypassing the latency topology. Defaults to 0.
func (b *Builder) WithSelfSendLatency(d jiffy.Jiffy) *Builder {
	b.selfSendLatency = d
	return b
}

// WithLogger attaches a logger the scheduler uses to trace event delivery.
// Optional; a nil logger (the default) disables tracing.
func (b *Builder) WithLogger(log *obslog.Logger) *Builder {
	b.log = log
	return b
}

// WithMetrics attaches a Prometheus metrics set the scheduler and ambient
// runtime report event counts, NIC bytes, and latency observations to.
// Optional; a nil set (the default) disables metrics collection.
func (b *Builder) WithMetrics(m *obsmetrics.Metrics) *Builder {
	b.metrics = m
	return b
}

// WithProcessCount sets the number of processes in the implicit default
// pool, for simulations that do not need more than one named pool. Pair
// with WithFactory.
func (b *Builder) WithProcessCount(n int) *Builder {
	b.singleCount = n
	return b
}

// WithFactory sets the handler factory for the implicit default pool. Pair
// with WithProcessCount.
func (b *Builder) WithFactory(factory Factory) *Builder {
	b.singleFactory = factory
	return b
}

// WithPool adds a named pool of count processes, each constructed by
// factory. Use this instead of WithProcessCount/WithFactory when a
// simulation needs more than one pool of processes (e.g. "replicas" and
// "clients" with different latency rules between them).
func (b *Builder) WithPool(name process.PoolName, count int, factory Factory) *Builder {
	if count <= 0 {
		b.errs = append(b.errs, fmt.Errorf("builder: pool %q must have a positive process count, got %d", name, count))
	}
	if factory == nil {
		b.errs = append(b.errs, fmt.Errorf("builder: pool %q has no factory", name))
	}
	b.pools = append(b.pools, poolSpec{name: name, count: count, factory: factory})
	return b
}

// WithinPool adds a latency rule applying sampler to messages exchanged
// between two processes both in pool.
func (b *Builder) WithinPool(pool process.PoolName, sampler random.Sampler) *Builder {
	b.rules = append(b.rules, latency.WithinPool(pool, sampler))
	return b
}

// BetweenPools adds a directional latency rule applying sampler to messages
// sent from a process in from to a process in to.
func (b *Builder) BetweenPools(from, to process.PoolName, sampler random.Sampler) *Builder {
	b.rules = append(b.rules, latency.BetweenPools(from, to, sampler))
	return b
}

// Catchall adds a latency rule applying sampler to any pool pair not
// matched by a more specific WithinPool or BetweenPools rule.
func (b *Builder) Catchall(sampler random.Sampler) *Builder {
	b.rules = append(b.rules, latency.Catchall(sampler))
	return b
}

// WithLatencyDefault sets the sampler used when no rule, including
// Catchall, resolves a pool pair. Without a default (and without a
// Catchall), Build fails if any two configured pools cannot resolve a
// latency sampler between them.
func (b *Builder) WithLatencyDefault(sampler random.Sampler) *Builder {
	b.defaultLatency = sampler
	b.hasDefault = true
	return b
}

// WithBandwidth sets the NIC bandwidth policy for every process in pool.
// Processes default to nic.Unbounded if this is never called for their
// pool.
func (b *Builder) WithBandwidth(pool process.PoolName, bw nic.BandwidthType) *Builder {
	b.bandwidth[pool] = bw
	return b
}

// Build validates the accumulated configuration and, if valid, assembles
// and returns a ready-to-run Scheduler.
func (b *Builder) Build() (*scheduler.Scheduler, error) {
	pools := b.pools
	if b.singleCount > 0 || b.singleFactory != nil {
		pools = append([]poolSpec{{name: DefaultPool, count: b.singleCount, factory: b.singleFactory}}, pools...)
	}

	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if len(pools) == 0 {
		return nil, errors.New("builder: no processes configured; call WithPool or WithProcessCount+WithFactory")
	}
	for _, spec := range pools {
		if spec.count <= 0 {
			return nil, fmt.Errorf("builder: pool %q must have a positive process count, got %d", spec.name, spec.count)
		}
		if spec.factory == nil {
			return nil, fmt.Errorf("builder: pool %q has no factory", spec.name)
		}
	}

	pool := process.NewPool()
	rng := random.New(b.seed)

	type reservation struct {
		id      process.ID
		factory Factory
	}
	var reservations []reservation
	poolNames := make([]process.PoolName, 0, len(pools))
	for _, spec := range pools {
		poolNames = append(poolNames, spec.name)
		for i := 0; i < spec.count; i++ {
			id := pool.Add(spec.name, nil)
			reservations = append(reservations, reservation{id: id, factory: spec.factory})
		}
	}

	topo := latency.NewTopology(b.rules...)
	if b.hasDefault {
		topo.WithDefault(b.defaultLatency)
	}
	if err := topo.Validate(poolNames); err != nil {
		return nil, fmt.Errorf("builder: %w", err)
	}

	nics := nic.NewModel()
	for _, spec := range pools {
		bw, ok := b.bandwidth[spec.name]
		if !ok {
			continue
		}
		for _, id := range pool.InPool(spec.name) {
			nics.SetPolicy(id, bw)
		}
	}

	net := network.New(topo, nics, pool, rng)

	sched := scheduler.New(pool, net, rng, b.selfSendLatency, b.log, b.metrics, func(rt *simruntime.Runtime) {
		for _, r := range reservations {
			pool.SetHandler(r.id, r.factory(rt, r.id))
		}
	})

	return sched, nil
}
