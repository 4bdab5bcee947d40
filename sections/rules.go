package sections

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk shape for custom heading rules.
type ruleFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Label   string `yaml:"label"`
}

// LoadRules reads heading rules from a YAML file. File order is priority
// order. The file replaces the built-in rules entirely so deployments can
// pin the exact grammar their report templates use.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s defines no rules", path)
	}

	rules := make([]Rule, 0, len(rf.Rules))
	for i, spec := range rf.Rules {
		if spec.Pattern == "" || spec.Label == "" {
			return nil, fmt.Errorf("rule %d: pattern and label are required", i)
		}
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, spec.Name, err)
		}
		rules = append(rules, Rule{Name: spec.Name, Pattern: re, Label: spec.Label})
	}
	return rules, nil
}
