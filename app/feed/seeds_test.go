package feed

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
	return path
}

func TestLoadSeeds(t *testing.T) {
	path := writeSeedFile(t, `
feeds:
  - name: Local Paper
    url: https://example.com/rss
    scope: regional
    default_county: Laurel
  - name: Wire Service
    url: https://example.org/rss
    scope: national
    enabled: false
`)

	seeds, err := LoadSeeds(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(seeds) != 2 {
		t.Fatalf("Expected 2 seeds, got %d", len(seeds))
	}

	if seeds[0].DefaultCounty != "Laurel" {
		t.Errorf("Unexpected default county: %q", seeds[0].DefaultCounty)
	}
	if !SeedEnabled(seeds[0]) {
		t.Error("Missing enabled field should default to enabled")
	}
	if SeedEnabled(seeds[1]) {
		t.Error("Explicitly disabled seed should stay disabled")
	}
}

func TestLoadSeeds_DefaultsScope(t *testing.T) {
	path := writeSeedFile(t, `
feeds:
  - url: https://example.com/rss
`)

	seeds, err := LoadSeeds(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if seeds[0].Scope != ScopeRegional {
		t.Errorf("Expected regional default scope, got %q", seeds[0].Scope)
	}
	if seeds[0].Name != "https://example.com/rss" {
		t.Errorf("Expected URL as fallback name, got %q", seeds[0].Name)
	}
}

func TestLoadSeeds_RejectsBadScope(t *testing.T) {
	path := writeSeedFile(t, `
feeds:
  - url: https://example.com/rss
    scope: galactic
`)

	if _, err := LoadSeeds(path); err == nil {
		t.Error("Expected error for unknown scope")
	}
}
