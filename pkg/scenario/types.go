// Package scenario defines the declarative YAML description of an
// experiment (pools, latency topology, bandwidth policy, seed, and time
// budget) and validates it before it is handed to pkg/builder.
package scenario

// Experiment is the top-level YAML document describing one simulation run.
type Experiment struct {
	APIVersion string         `yaml:"apiVersion"`
	Kind       string         `yaml:"kind"`
	Metadata   Metadata       `yaml:"metadata"`
	Spec       ExperimentSpec `yaml:"spec"`
}

// Metadata carries human-facing information about an experiment, never
// consumed by the simulation engine itself.
type Metadata struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Author      string   `yaml:"author,omitempty"`
}

// ExperimentSpec is the part of an Experiment the CLI turns into
// builder.Builder calls.
type ExperimentSpec struct {
	Seed            int64          `yaml:"seed"`
	MaxSteps        int64          `yaml:"maxSteps"`
	SelfSendLatency int64          `yaml:"selfSendLatency,omitempty"`
	Pools           []Pool         `yaml:"pools"`
	Latency         []LatencyRule  `yaml:"latency"`
	Bandwidth       []BandwidthCap `yaml:"bandwidth,omitempty"`
}

// Pool describes one named group of processes and which registered handler
// factory they use.
type Pool struct {
	Name    string `yaml:"name"`
	Count   int    `yaml:"count"`
	Handler string `yaml:"handler"`
}

// LatencyRuleKind selects which of the three latency-topology rule shapes a
// LatencyRule describes.
type LatencyRuleKind string

const (
	LatencyWithinPool   LatencyRuleKind = "withinPool"
	LatencyBetweenPools LatencyRuleKind = "betweenPools"
	LatencyCatchall     LatencyRuleKind = "catchall"
)

// LatencyRule is one entry in an experiment's latency topology.
type LatencyRule struct {
	Kind         LatencyRuleKind `yaml:"kind"`
	Pool         string          `yaml:"pool,omitempty"`
	From         string          `yaml:"from,omitempty"`
	To           string          `yaml:"to,omitempty"`
	Distribution Distribution    `yaml:"distribution"`
}

// DistributionType selects which pkg/random.Sampler a Distribution
// describes.
type DistributionType string

const (
	DistConstant DistributionType = "constant"
	DistUniform  DistributionType = "uniform"
	DistNormal   DistributionType = "normal"
)

// Distribution is the YAML description of a pkg/random.Sampler.
type Distribution struct {
	Type   DistributionType `yaml:"type"`
	Value  float64          `yaml:"value,omitempty"`  // constant
	Lo     float64          `yaml:"lo,omitempty"`     // uniform
	Hi     float64          `yaml:"hi,omitempty"`     // uniform
	Mean   float64          `yaml:"mean,omitempty"`   // normal
	StdDev float64          `yaml:"stddev,omitempty"` // normal
}

// BandwidthKind selects a pool's NIC bandwidth policy.
type BandwidthKind string

const (
	BandwidthUnbounded BandwidthKind = "unbounded"
	BandwidthBounded   BandwidthKind = "bounded"
)

// BandwidthCap describes one pool's NIC bandwidth policy.
type BandwidthCap struct {
	Pool          string        `yaml:"pool"`
	Type          BandwidthKind `yaml:"type"`
	BytesPerJiffy int64         `yaml:"bytesPerJiffy,omitempty"`
}
