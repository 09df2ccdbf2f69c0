package scenario

import (
	"fmt"

	"github.com/jihwankim/dscale-sim/pkg/builder"
	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/jihwankim/dscale-sim/pkg/network/nic"
	"github.com/jihwankim/dscale-sim/pkg/process"
	"github.com/jihwankim/dscale-sim/pkg/random"
)

// Registry maps the handler names an Experiment's pools reference to the
// factories that construct them. A CLI registers one entry per handler it
// knows how to run before calling Plan.
type Registry map[string]builder.Factory

// Plan translates e into a builder.Builder configured to run it. It does not
// validate e; callers should run it through validator.Validator first so
// Plan only has to handle resolution, not structural errors.
func Plan(e *Experiment, handlers Registry) (*builder.Builder, error) {
	b := builder.New().
		WithSeed(random.Seed(e.Spec.Seed)).
		WithMaxSteps(jiffy.Jiffy(e.Spec.MaxSteps)).
		WithSelfSendLatency(jiffy.Jiffy(e.Spec.SelfSendLatency))

	for _, pool := range e.Spec.Pools {
		factory, ok := handlers[pool.Handler]
		if !ok {
			return nil, fmt.Errorf("scenario: pool %q references unknown handler %q", pool.Name, pool.Handler)
		}
		b = b.WithPool(process.PoolName(pool.Name), pool.Count, factory)
	}

	for i, rule := range e.Spec.Latency {
		sampler, err := samplerOf(rule.Distribution)
		if err != nil {
			return nil, fmt.Errorf("scenario: latency[%d]: %w", i, err)
		}
		switch rule.Kind {
		case LatencyWithinPool:
			b = b.WithinPool(process.PoolName(rule.Pool), sampler)
		case LatencyBetweenPools:
			b = b.BetweenPools(process.PoolName(rule.From), process.PoolName(rule.To), sampler)
		case LatencyCatchall:
			b = b.Catchall(sampler)
		default:
			return nil, fmt.Errorf("scenario: latency[%d]: unknown rule kind %q", i, rule.Kind)
		}
	}

	for i, cap := range e.Spec.Bandwidth {
		bw, err := bandwidthOf(cap)
		if err != nil {
			return nil, fmt.Errorf("scenario: bandwidth[%d]: %w", i, err)
		}
		b = b.WithBandwidth(process.PoolName(cap.Pool), bw)
	}

	return b, nil
}

func samplerOf(d Distribution) (random.Sampler, error) {
	switch d.Type {
	case DistConstant:
		return random.Constant(d.Value), nil
	case DistUniform:
		return random.Uniform{Lo: d.Lo, Hi: d.Hi}, nil
	case DistNormal:
		return random.Normal{Mean: d.Mean, StdDev: d.StdDev}, nil
	default:
		return nil, fmt.Errorf("unknown distribution type %q", d.Type)
	}
}

func bandwidthOf(cap BandwidthCap) (nic.BandwidthType, error) {
	switch cap.Type {
	case BandwidthUnbounded:
		return nic.Unbounded{}, nil
	case BandwidthBounded:
		return nic.Bounded{BytesPerJiffy: cap.BytesPerJiffy}, nil
	default:
		return nil, fmt.Errorf("unknown bandwidth type %q", cap.Type)
	}
}
