package feed

import (
	"time"
)

// Entry is a raw candidate entry produced by the parser, one per feed item.
// Explicit record type at the parser boundary; no loosely-typed maps.
type Entry struct {
	Title        string
	Link         string
	GUID         string
	Author       string
	PublishedAt  *time.Time
	PublishedRaw string // original date string, used for identity fallback
	Summary      string
	Content      string
	ImageURL     string // enclosure/media image when the feed supplies one
}

// Seed describes a feed source as declared in the feeds file
type Seed struct {
	Name          string `yaml:"name"`
	URL           string `yaml:"url"`
	Scope         string `yaml:"scope"`          // "regional" or "national"
	DefaultCounty string `yaml:"default_county"` // optional tagging fallback
	Aggregator    bool   `yaml:"aggregator"`
	Enabled       *bool  `yaml:"enabled"` // nil means enabled
}

type seedFile struct {
	Feeds []Seed `yaml:"feeds"`
}
