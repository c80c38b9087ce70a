package lint

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy configures lint thresholds. Policies are YAML documents:
//
//	min_confidence: 0.6
//	require_context: true
//	flag_contradictions: true
type Policy struct {
	// MinConfidence is the confidence below which an assertion gets an
	// info finding. Must lie in [0,1].
	MinConfidence float64 `yaml:"min_confidence"`

	// RequireContext warns on operations with an empty context attribute.
	RequireContext bool `yaml:"require_context"`

	// FlagContradictions warns when an entity pair is both activated and
	// inhibited within one module.
	FlagContradictions bool `yaml:"flag_contradictions"`
}

// DefaultPolicy returns the policy used when no file is given.
func DefaultPolicy() Policy {
	return Policy{
		MinConfidence:      0.5,
		RequireContext:     false,
		FlagContradictions: true,
	}
}

// LoadPolicy reads a YAML policy file. Fields absent from the file keep
// their default values.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("reading policy: %w", err)
	}
	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parsing policy %s: %w", path, err)
	}
	if p.MinConfidence < 0 || p.MinConfidence > 1 {
		return Policy{}, fmt.Errorf("policy %s: min_confidence %v outside [0, 1]", path, p.MinConfidence)
	}
	return p, nil
}
