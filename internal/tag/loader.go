package tag

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// DefaultRules returns the compiled built-in rule table.
func DefaultRules() ([]Rule, error) {
	return Parse(defaultRules)
}

// LoadFromFile reads and compiles a rule table from a YAML file.
func LoadFromFile(file string) ([]Rule, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Parse(content)
}

// Parse compiles a YAML rule table of the form
//
//   - tag: high-exposure
//     kind: exposure
//     when: exposure >= exposureHigh
//
// An empty document yields an empty table. Tag names must be present and unique.
func Parse(script []byte) ([]Rule, error) {
	rules := make([]Rule, 0)
	if err := yaml.Unmarshal(script, &rules); err != nil {
		return nil, err
	}

	env, err := NewProductEnv()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rules))
	for i := range rules {
		if rules[i].Tag == "" {
			return nil, fmt.Errorf("rule %d: tag must be specified", i)
		}
		if _, dup := seen[rules[i].Tag]; dup {
			return nil, fmt.Errorf("rule %d: duplicate tag %q", i, rules[i].Tag)
		}
		seen[rules[i].Tag] = struct{}{}

		if rules[i].When == "" {
			return nil, errors.New("tag " + rules[i].Tag + ": when must be specified")
		}
		if err := rules[i].Init(env); err != nil {
			return nil, err
		}
	}
	return rules, nil
}
