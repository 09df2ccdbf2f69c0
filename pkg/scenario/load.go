package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses an Experiment from a YAML file at path. It does
// not validate the result; callers should run it through
// pkg/scenario/validator before acting on it.
func LoadFile(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))
	var e Experiment
	if err := yaml.Unmarshal([]byte(expanded), &e); err != nil {
		return nil, fmt.Errorf("scenario: parsing %s: %w", path, err)
	}
	return &e, nil
}
