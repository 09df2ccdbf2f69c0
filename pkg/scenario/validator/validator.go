// Package validator checks a scenario.Experiment for structural and
// semantic problems before it is translated into pkg/builder calls.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jihwankim/dscale-sim/pkg/scenario"
)

// Validator accumulates problems found in an Experiment.
type Validator struct {
	// Warnings are non-fatal issues.
	Warnings []string

	// Errors are fatal issues; a non-empty Errors makes Validate return an error.
	Errors []string
}

// New creates a new validator.
func New() *Validator {
	return &Validator{
		Warnings: make([]string, 0),
		Errors:   make([]string, 0),
	}
}

// Validate checks e and resets Warnings/Errors to the result of this call.
func (v *Validator) Validate(e *scenario.Experiment) error {
	v.Warnings = make([]string, 0)
	v.Errors = make([]string, 0)

	v.validateAPIVersion(e)
	v.validateKind(e)
	v.validateMetadata(e)
	v.validateRun(e)
	v.validatePools(e)
	v.validateLatency(e)
	v.validateBandwidth(e)
	v.checkImplausibleExperiments(e)

	if len(v.Errors) > 0 {
		return fmt.Errorf("validation failed with %d errors", len(v.Errors))
	}
	return nil
}

// HasWarnings returns true if there are warnings.
func (v *Validator) HasWarnings() bool {
	return len(v.Warnings) > 0
}

// HasErrors returns true if there are errors.
func (v *Validator) HasErrors() bool {
	return len(v.Errors) > 0
}

// GetReport returns a formatted validation report.
func (v *Validator) GetReport() string {
	var sb strings.Builder

	if len(v.Errors) > 0 {
		sb.WriteString("ERRORS:\n")
		for _, err := range v.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", err))
		}
	}

	if len(v.Warnings) > 0 {
		sb.WriteString("\nWARNINGS:\n")
		for _, warn := range v.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn))
		}
	}

	if len(v.Errors) == 0 && len(v.Warnings) == 0 {
		sb.WriteString("Validation passed with no issues.\n")
	}

	return sb.String()
}

func (v *Validator) validateAPIVersion(e *scenario.Experiment) {
	if e.APIVersion == "" {
		v.Errors = append(v.Errors, "apiVersion is required")
		return
	}
	if e.APIVersion != "dscale.sim/v1" {
		v.Warnings = append(v.Warnings, fmt.Sprintf("apiVersion '%s' may not be supported (expected: dscale.sim/v1)", e.APIVersion))
	}
}

func (v *Validator) validateKind(e *scenario.Experiment) {
	if e.Kind == "" {
		v.Errors = append(v.Errors, "kind is required")
		return
	}
	if e.Kind != "Experiment" {
		v.Warnings = append(v.Warnings, fmt.Sprintf("kind '%s' may not be supported (expected: Experiment)", e.Kind))
	}
}

var nameRegex = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

func (v *Validator) validateMetadata(e *scenario.Experiment) {
	if e.Metadata.Name == "" {
		v.Errors = append(v.Errors, "metadata.name is required")
		return
	}
	if !nameRegex.MatchString(e.Metadata.Name) {
		v.Errors = append(v.Errors, "metadata.name must be lowercase alphanumeric with hyphens")
	}
}

func (v *Validator) validateRun(e *scenario.Experiment) {
	if e.Spec.MaxSteps <= 0 {
		v.Errors = append(v.Errors, "spec.maxSteps is required and must be > 0")
	}
	if e.Spec.MaxSteps > 10_000_000 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("spec.maxSteps is very large (%d); this run may take a long time", e.Spec.MaxSteps))
	}
	if e.Spec.SelfSendLatency < 0 {
		v.Errors = append(v.Errors, "spec.selfSendLatency cannot be negative")
	}
}

func (v *Validator) validatePools(e *scenario.Experiment) {
	if len(e.Spec.Pools) == 0 {
		v.Errors = append(v.Errors, "spec.pools must have at least one pool")
		return
	}

	names := make(map[string]bool)
	for i, pool := range e.Spec.Pools {
		if pool.Name == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.pools[%d].name is required", i))
		} else if names[pool.Name] {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.pools[%d].name '%s' is duplicated", i, pool.Name))
		}
		names[pool.Name] = true

		if pool.Count <= 0 {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.pools[%d].count must be > 0", i))
		}
		if pool.Handler == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.pools[%d].handler is required", i))
		}
	}
}

func (v *Validator) validateLatency(e *scenario.Experiment) {
	poolNames := make(map[string]bool)
	for _, pool := range e.Spec.Pools {
		poolNames[pool.Name] = true
	}

	hasCatchall := false
	for i, rule := range e.Spec.Latency {
		switch rule.Kind {
		case scenario.LatencyWithinPool:
			if rule.Pool == "" {
				v.Errors = append(v.Errors, fmt.Sprintf("spec.latency[%d].pool is required for withinPool rules", i))
			} else if !poolNames[rule.Pool] {
				v.Errors = append(v.Errors, fmt.Sprintf("spec.latency[%d].pool '%s' references an undeclared pool", i, rule.Pool))
			}
		case scenario.LatencyBetweenPools:
			if rule.From == "" || rule.To == "" {
				v.Errors = append(v.Errors, fmt.Sprintf("spec.latency[%d] requires both from and to for betweenPools rules", i))
			}
			if rule.From != "" && !poolNames[rule.From] {
				v.Errors = append(v.Errors, fmt.Sprintf("spec.latency[%d].from '%s' references an undeclared pool", i, rule.From))
			}
			if rule.To != "" && !poolNames[rule.To] {
				v.Errors = append(v.Errors, fmt.Sprintf("spec.latency[%d].to '%s' references an undeclared pool", i, rule.To))
			}
		case scenario.LatencyCatchall:
			hasCatchall = true
		default:
			v.Errors = append(v.Errors, fmt.Sprintf("spec.latency[%d].kind '%s' is invalid", i, rule.Kind))
		}

		v.validateDistribution(rule.Distribution, i)
	}

	if len(e.Spec.Pools) > 1 && !hasCatchall {
		v.Warnings = append(v.Warnings, "spec.latency has no catchall rule; builder.Build will fail unless every pool pair is covered by withinPool/betweenPools rules or a default")
	}
}

func (v *Validator) validateDistribution(d scenario.Distribution, index int) {
	switch d.Type {
	case scenario.DistConstant:
		if d.Value < 0 {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.latency[%d].distribution.value cannot be negative", index))
		}
	case scenario.DistUniform:
		if d.Lo < 0 || d.Hi < d.Lo {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.latency[%d].distribution requires 0 <= lo <= hi", index))
		}
	case scenario.DistNormal:
		if d.StdDev < 0 {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.latency[%d].distribution.stddev cannot be negative", index))
		}
	default:
		v.Errors = append(v.Errors, fmt.Sprintf("spec.latency[%d].distribution.type '%s' is invalid", index, d.Type))
	}
}

func (v *Validator) validateBandwidth(e *scenario.Experiment) {
	poolNames := make(map[string]bool)
	for _, pool := range e.Spec.Pools {
		poolNames[pool.Name] = true
	}

	for i, cap := range e.Spec.Bandwidth {
		if cap.Pool == "" || !poolNames[cap.Pool] {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.bandwidth[%d].pool '%s' references an undeclared pool", i, cap.Pool))
		}
		switch cap.Type {
		case scenario.BandwidthUnbounded:
		case scenario.BandwidthBounded:
			if cap.BytesPerJiffy <= 0 {
				v.Errors = append(v.Errors, fmt.Sprintf("spec.bandwidth[%d].bytesPerJiffy must be > 0 for bounded policies", i))
			}
		default:
			v.Errors = append(v.Errors, fmt.Sprintf("spec.bandwidth[%d].type '%s' is invalid", i, cap.Type))
		}
	}
}

func (v *Validator) checkImplausibleExperiments(e *scenario.Experiment) {
	total := 0
	for _, pool := range e.Spec.Pools {
		total += pool.Count
	}
	if total > 100_000 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("spec declares %d total processes; this may exhaust memory before maxSteps is reached", total))
	}

	for i, rule := range e.Spec.Latency {
		if rule.Distribution.Type == scenario.DistConstant && rule.Distribution.Value == 0 {
			v.Warnings = append(v.Warnings, fmt.Sprintf("spec.latency[%d] has zero latency; messages will arrive in the same jiffy they were sent", i))
		}
	}
}
