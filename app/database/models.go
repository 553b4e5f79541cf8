package database

import (
	"time"
)

type Feed struct {
	ID            string // Database UUID
	Name          string
	URL           string
	Scope         string // "regional" or "national"
	DefaultCounty string // tagging fallback, empty when none declared
	Aggregator    bool   // region-focused aggregation feed, always trusted by the tagger
	Enabled       bool
	ETag          string
	LastModified  string
	LastCheckedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Item struct {
	ID            string // deterministic identity, stable across re-ingestion
	Title         string
	URL           string
	GUID          string
	Author        string
	Scope         string
	PublishedAt   *time.Time
	Summary       string
	Body          string
	ImageURL      string
	FetchedAt     time.Time
	ContentHash   string
	EnrichedAt    *time.Time
	EnrichStatus  string // "", "ok", "error", "not-html", "skipped"
	EnrichExcerpt string
}

type LocationTag struct {
	ItemID string
	State  string
	County string // empty string means "state-level only"
}

type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string // "running", "ok", "failed"
}

type FeedError struct {
	ID         int64
	FeedID     string
	OccurredAt time.Time
	Message    string
}
