package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ FeedRepository = (*SQLFeedRepository)(nil)

// SQLFeedRepository handles database operations for feed sources
type SQLFeedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) *SQLFeedRepository {
	return &SQLFeedRepository{db: db}
}

// UpsertFeed inserts or updates a feed source keyed by its URL. Returns the
// database ID and whether any seeded attribute changed on an existing row.
func (r *SQLFeedRepository) UpsertFeed(feed Feed) (string, bool, error) {
	existing, err := r.GetFeedByURL(feed.URL)
	if err != nil {
		return "", false, fmt.Errorf("failed to check existing feed: %w", err)
	}

	if existing != nil {
		changed := existing.Name != feed.Name ||
			existing.Scope != feed.Scope ||
			existing.DefaultCounty != feed.DefaultCounty ||
			existing.Aggregator != feed.Aggregator

		if changed {
			_, err = r.db.Exec(`
				UPDATE feeds
				SET name = ?, scope = ?, default_county = ?, aggregator = ?, updated_at = ?
				WHERE id = ?
			`, feed.Name, feed.Scope, feed.DefaultCounty, boolToInt(feed.Aggregator),
				time.Now().UTC(), existing.ID)
			if err != nil {
				return "", false, fmt.Errorf("failed to update feed: %w", err)
			}
		}
		return existing.ID, changed, nil
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO feeds (id, name, url, scope, default_county, aggregator, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, feed.Name, feed.URL, feed.Scope, feed.DefaultCounty,
		boolToInt(feed.Aggregator), boolToInt(feed.Enabled), time.Now().UTC(), time.Now().UTC())
	if err != nil {
		return "", false, fmt.Errorf("failed to insert feed: %w", err)
	}

	return id, false, nil
}

// UpdateFeedValidators stores the cache validators after a non-failure fetch
func (r *SQLFeedRepository) UpdateFeedValidators(feedID string, etag string, lastModified string, checkedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET etag = ?, last_modified = ?, last_checked_at = ?, updated_at = ?
		WHERE id = ?
	`, etag, lastModified, checkedAt, time.Now().UTC(), feedID)

	if err != nil {
		return fmt.Errorf("failed to update feed validators: %w", err)
	}

	return nil
}

func (r *SQLFeedRepository) SetFeedEnabled(feedID string, enabled bool) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET enabled = ?, updated_at = ?
		WHERE id = ?
	`, boolToInt(enabled), time.Now().UTC(), feedID)

	if err != nil {
		return fmt.Errorf("failed to set feed enabled status: %w", err)
	}

	return nil
}

func (r *SQLFeedRepository) GetFeed(feedID string) (*Feed, error) {
	return r.getFeedWhere("id = ?", feedID)
}

func (r *SQLFeedRepository) GetFeedByURL(url string) (*Feed, error) {
	return r.getFeedWhere("url = ?", url)
}

func (r *SQLFeedRepository) getFeedWhere(where string, arg any) (*Feed, error) {
	var feed Feed
	var aggregator, enabled int
	err := r.db.QueryRow(`
		SELECT id, name, url, scope, default_county, aggregator, enabled,
		       etag, last_modified, last_checked_at, created_at, updated_at
		FROM feeds
		WHERE `+where, arg).Scan(
		&feed.ID, &feed.Name, &feed.URL, &feed.Scope, &feed.DefaultCounty,
		&aggregator, &enabled, &feed.ETag, &feed.LastModified,
		&feed.LastCheckedAt, &feed.CreatedAt, &feed.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	feed.Aggregator = aggregator != 0
	feed.Enabled = enabled != 0
	return &feed, nil
}

// GetEnabledFeeds returns all enabled feeds ordered by name
func (r *SQLFeedRepository) GetEnabledFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT id, name, url, scope, default_county, aggregator, enabled,
		       etag, last_modified, last_checked_at, created_at, updated_at
		FROM feeds
		WHERE enabled = 1
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		var feed Feed
		var aggregator, enabled int
		err := rows.Scan(
			&feed.ID, &feed.Name, &feed.URL, &feed.Scope, &feed.DefaultCounty,
			&aggregator, &enabled, &feed.ETag, &feed.LastModified,
			&feed.LastCheckedAt, &feed.CreatedAt, &feed.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feed.Aggregator = aggregator != 0
		feed.Enabled = enabled != 0
		feeds = append(feeds, feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

func (r *SQLFeedRepository) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
