// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Fixture is the YAML form of a small taxonomy.
type Fixture struct {
	Taxa   []MemTaxon        `yaml:"taxa"`
	Merged map[string]string `yaml:"merged,omitempty"`
}

// LoadFixture reads a YAML taxonomy file and builds a MemResolver.
func LoadFixture(path string) (*MemResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy fixture: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing taxonomy fixture %s: %w", path, err)
	}
	return NewMemResolver(f.Taxa, f.Merged)
}
