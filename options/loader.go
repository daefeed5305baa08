package options

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML policy file from the given path.
func LoadFile(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Policy. Keys missing from the document keep
// their default values.
func Parse(data []byte) (Policy, error) {
	p := Default()

	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy YAML: %w", err)
	}

	if p.DispatchCacheSize <= 0 {
		p.DispatchCacheSize = DefaultDispatchCacheSize
	}

	return p, nil
}

// Marshal serializes a Policy to YAML.
func Marshal(p Policy) ([]byte, error) {
	return yaml.Marshal(p)
}

// WriteFile writes a Policy to the given path.
func WriteFile(p Policy, path string) error {
	data, err := Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal policy: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write policy file %s: %w", path, err)
	}

	return nil
}
