package nav

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the navigation tree from a YAML file.
func Load(path string) ([]Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read nav tree: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML navigation tree.
func Parse(raw []byte) ([]Item, error) {
	var doc struct {
		Items []Item `yaml:"items"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse nav tree: %w", err)
	}
	return doc.Items, nil
}
