package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ruleforge/ruleforge/pkg/rule/parser"
)

// File is the on-disk format of a rules file:
//
//	rules:
//	  - "age > 30 AND department = 'Sales'"
//	  - "salary < 50000"
type File struct {
	Rules []string `yaml:"rules"`
}

// LoadFile reads a rules file and returns its rule strings. Every rule is
// parsed once to reject malformed entries up front; the rule text itself
// is what gets stored.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %q: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %q: %w", path, err)
	}

	for i, text := range f.Rules {
		if _, err := parser.Parse(text); err != nil {
			return nil, fmt.Errorf("rules file %q entry %d (%q): %w", path, i, text, err)
		}
	}

	return f.Rules, nil
}
