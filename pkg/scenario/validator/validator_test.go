package validator_test

import (
	"testing"

	"github.com/jihwankim/dscale-sim/pkg/scenario"
	"github.com/jihwankim/dscale-sim/pkg/scenario/validator"
)

func validExperiment() *scenario.Experiment {
	return &scenario.Experiment{
		APIVersion: "dscale.sim/v1",
		Kind:       "Experiment",
		Metadata:   scenario.Metadata{Name: "two-node-ping"},
		Spec: scenario.ExperimentSpec{
			MaxSteps: 1000,
			Pools: []scenario.Pool{
				{Name: "nodes", Count: 2, Handler: "pinger"},
			},
			Latency: []scenario.LatencyRule{
				{
					Kind:         scenario.LatencyWithinPool,
					Pool:         "nodes",
					Distribution: scenario.Distribution{Type: scenario.DistConstant, Value: 10},
				},
			},
		},
	}
}

func TestValidExperimentPasses(t *testing.T) {
	v := validator.New()
	if err := v.Validate(validExperiment()); err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, v.GetReport())
	}
	if v.HasErrors() {
		t.Fatalf("expected no errors, got %v", v.Errors)
	}
}

func TestMissingPoolsIsFatal(t *testing.T) {
	e := validExperiment()
	e.Spec.Pools = nil

	v := validator.New()
	if err := v.Validate(e); err == nil {
		t.Fatal("expected an error for an experiment with no pools")
	}
}

func TestLatencyRuleReferencingUndeclaredPoolIsFatal(t *testing.T) {
	e := validExperiment()
	e.Spec.Latency[0].Pool = "ghost"

	v := validator.New()
	if err := v.Validate(e); err == nil {
		t.Fatal("expected an error for a latency rule referencing an undeclared pool")
	}
}

func TestMultiPoolWithoutCatchallWarns(t *testing.T) {
	e := validExperiment()
	e.Spec.Pools = append(e.Spec.Pools, scenario.Pool{Name: "clients", Count: 1, Handler: "pinger"})

	v := validator.New()
	if err := v.Validate(e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.HasWarnings() {
		t.Fatal("expected a warning about a missing catchall rule across multiple pools")
	}
}

func TestBoundedBandwidthWithoutRateIsFatal(t *testing.T) {
	e := validExperiment()
	e.Spec.Bandwidth = []scenario.BandwidthCap{{Pool: "nodes", Type: scenario.BandwidthBounded}}

	v := validator.New()
	if err := v.Validate(e); err == nil {
		t.Fatal("expected an error for a bounded bandwidth cap with no rate")
	}
}
