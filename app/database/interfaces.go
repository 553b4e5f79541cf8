package database

import (
	"time"
)

type FeedRepository interface {
	GetFeed(feedID string) (*Feed, error)
	GetFeedByURL(url string) (*Feed, error)
	GetEnabledFeeds() ([]Feed, error)
	GetFeedCount() (int, error)

	UpsertFeed(feed Feed) (string, bool, error)
	UpdateFeedValidators(feedID string, etag string, lastModified string, checkedAt time.Time) error
	SetFeedEnabled(feedID string, enabled bool) error
}

type ItemRepository interface {
	GetItem(itemID string) (*Item, error)
	GetItemCount() (int, error)
	GetRecentItems(state string, county string, since time.Time, limit int) ([]Item, error)

	UpsertItem(item Item) error
	LinkItemToFeed(feedID string, itemID string) error
	UpdateEnrichment(itemID string, enrichedAt time.Time, status string, excerpt string, imageURL string) error

	ReplaceLocationTags(itemID string, state string, counties []string) error
	GetLocationTags(itemID string) ([]LocationTag, error)
}

type RunRepository interface {
	StartRun(runID string, startedAt time.Time) error
	FinishRun(runID string, status string, finishedAt time.Time) error
	GetLastRun() (*Run, error)
	GetRunCount() (int, error)

	RecordFeedError(feedID string, occurredAt time.Time, message string) error
}
