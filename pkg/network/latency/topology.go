// Package latency resolves the delay a message experiences travelling
// between two process pools.
package latency

import (
	"fmt"

	"github.com/jihwankim/dscale-sim/pkg/process"
	"github.com/jihwankim/dscale-sim/pkg/random"
)

// Rule associates a sampler with a pool-pair pattern. Exactly one of the
// three constructors below (WithinPool, BetweenPools, Catchall) should be
// used to build each rule.
type Rule struct {
	kind    ruleKind
	from    process.PoolName
	to      process.PoolName
	sampler random.Sampler
}

type ruleKind int

const (
	kindWithinPool ruleKind = iota
	kindBetweenPools
	kindCatchall
)

// WithinPool creates a rule applying sampler to messages sent between two
// processes that are both members of pool.
func WithinPool(pool process.PoolName, sampler random.Sampler) Rule {
	return Rule{kind: kindWithinPool, from: pool, sampler: sampler}
}

// BetweenPools creates a rule applying sampler to messages sent from a
// process in from to a process in to. It is directional: a separate rule
// is needed for the reverse direction if the latency is not symmetric.
func BetweenPools(from, to process.PoolName, sampler random.Sampler) Rule {
	return Rule{kind: kindBetweenPools, from: from, to: to, sampler: sampler}
}

// Catchall creates a rule applying sampler to any pool pair not matched by a
// more specific rule.
func Catchall(sampler random.Sampler) Rule {
	return Rule{kind: kindCatchall, sampler: sampler}
}

// Topology resolves a (from-pool, to-pool) pair to the sampler that should
// draw that message's latency, using most-specific-rule-wins precedence:
// WithinPool > BetweenPools > Catchall > the topology's default.
type Topology struct {
	withinPool   map[process.PoolName]random.Sampler
	betweenPools map[poolPair]random.Sampler
	catchall     random.Sampler
	hasCatchall  bool
	defaultSamp  random.Sampler
	hasDefault   bool
}

type poolPair struct {
	from, to process.PoolName
}

// NewTopology builds a Topology from rules, applied in the order given;
// later rules of the same specificity overwrite earlier ones for the same
// pool pair.
func NewTopology(rules ...Rule) *Topology {
	t := &Topology{
		withinPool:   make(map[process.PoolName]random.Sampler),
		betweenPools: make(map[poolPair]random.Sampler),
	}
	for _, r := range rules {
		switch r.kind {
		case kindWithinPool:
			t.withinPool[r.from] = r.sampler
		case kindBetweenPools:
			t.betweenPools[poolPair{r.from, r.to}] = r.sampler
		case kindCatchall:
			t.catchall = r.sampler
			t.hasCatchall = true
		}
	}
	return t
}

// WithDefault sets the sampler used when no rule, including Catchall,
// matches a pool pair. Without a default, Resolve returns an error for an
// unmatched pair instead of silently guessing a latency.
func (t *Topology) WithDefault(sampler random.Sampler) *Topology {
	t.defaultSamp = sampler
	t.hasDefault = true
	return t
}

// Resolve returns the sampler that should be used for a message travelling
// from the from pool to the to pool.
func (t *Topology) Resolve(from, to process.PoolName) (random.Sampler, error) {
	if from == to {
		if s, ok := t.withinPool[from]; ok {
			return s, nil
		}
	}
	if s, ok := t.betweenPools[poolPair{from, to}]; ok {
		return s, nil
	}
	if t.hasCatchall {
		return t.catchall, nil
	}
	if t.hasDefault {
		return t.defaultSamp, nil
	}
	return nil, fmt.Errorf("latency: no rule or default resolves pool pair (%s -> %s)", from, to)
}

// Validate reports an error if some reachable pool pair among pools would
// fail to resolve. Intended to be called at build time so an unreachable
// topology configuration is caught before a simulation runs, not discovered
// mid-run when a message happens to need it.
func (t *Topology) Validate(pools []process.PoolName) error {
	for _, from := range pools {
		for _, to := range pools {
			if _, err := t.Resolve(from, to); err != nil {
				return err
			}
		}
	}
	return nil
}
