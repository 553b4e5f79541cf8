package feed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ScopeRegional = "regional"
	ScopeNational = "national"
)

// LoadSeeds reads the feed source declarations from a YAML file. Missing
// "enabled" defaults to true.
func LoadSeeds(path string) ([]Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file: %w", err)
	}

	for i := range file.Feeds {
		if err := validateSeed(&file.Feeds[i]); err != nil {
			return nil, fmt.Errorf("invalid feed entry %d: %w", i, err)
		}
	}

	return file.Feeds, nil
}

func validateSeed(seed *Seed) error {
	if seed.URL == "" {
		return fmt.Errorf("url is required")
	}
	if seed.Name == "" {
		seed.Name = seed.URL
	}
	if seed.Scope == "" {
		seed.Scope = ScopeRegional
	}
	if seed.Scope != ScopeRegional && seed.Scope != ScopeNational {
		return fmt.Errorf("scope must be %q or %q, got %q", ScopeRegional, ScopeNational, seed.Scope)
	}
	return nil
}

// SeedEnabled reports the effective enabled state of a declaration
func SeedEnabled(seed Seed) bool {
	return seed.Enabled == nil || *seed.Enabled
}
