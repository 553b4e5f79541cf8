package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ ItemRepository = (*SQLItemRepository)(nil)

// SQLItemRepository handles database operations for items, feed links and
// location tags
type SQLItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *SQLItemRepository {
	return &SQLItemRepository{db: db}
}

// UpsertItem inserts an item or, on conflict, overwrites every mutable field.
// Identity and region scope are never rewritten; upstream feeds frequently
// republish the same article with corrected metadata, so the upsert always
// applies (last write wins).
func (r *SQLItemRepository) UpsertItem(item Item) error {
	_, err := r.db.Exec(`
		INSERT INTO items (
			id, title, url, guid, author, scope, published_at,
			summary, body, image_url, fetched_at, content_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			guid = excluded.guid,
			author = excluded.author,
			published_at = excluded.published_at,
			summary = excluded.summary,
			body = excluded.body,
			image_url = CASE WHEN excluded.image_url != '' THEN excluded.image_url ELSE items.image_url END,
			fetched_at = excluded.fetched_at,
			content_hash = excluded.content_hash
	`, item.ID, item.Title, item.URL, item.GUID, item.Author, item.Scope,
		item.PublishedAt, item.Summary, item.Body, item.ImageURL,
		item.FetchedAt, item.ContentHash)

	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}

	return nil
}

// LinkItemToFeed records which feed surfaced the item; insert-only,
// ignore-on-conflict so an item may be linked to multiple feeds
func (r *SQLItemRepository) LinkItemToFeed(feedID string, itemID string) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO feed_items (feed_id, item_id) VALUES (?, ?)
	`, feedID, itemID)

	if err != nil {
		return fmt.Errorf("failed to link item to feed: %w", err)
	}

	return nil
}

func (r *SQLItemRepository) UpdateEnrichment(itemID string, enrichedAt time.Time, status string, excerpt string, imageURL string) error {
	_, err := r.db.Exec(`
		UPDATE items
		SET enriched_at = ?, enrich_status = ?, enrich_excerpt = ?,
		    image_url = CASE WHEN image_url = '' THEN ? ELSE image_url END
		WHERE id = ?
	`, enrichedAt, status, excerpt, imageURL, itemID)

	if err != nil {
		return fmt.Errorf("failed to update enrichment fields: %w", err)
	}

	return nil
}

// ReplaceLocationTags rewrites the full tag set for an (item, state) pair.
// An empty county entry means "belongs to the state, no finer locality".
func (r *SQLItemRepository) ReplaceLocationTags(itemID string, state string, counties []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM location_tags WHERE item_id = ? AND state = ?`, itemID, state)
	if err != nil {
		return fmt.Errorf("failed to delete location tags: %w", err)
	}

	for _, county := range counties {
		_, err = tx.Exec(`
			INSERT OR IGNORE INTO location_tags (item_id, state, county) VALUES (?, ?, ?)
		`, itemID, state, county)
		if err != nil {
			return fmt.Errorf("failed to insert location tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit location tags: %w", err)
	}

	return nil
}

func (r *SQLItemRepository) GetLocationTags(itemID string) ([]LocationTag, error) {
	rows, err := r.db.Query(`
		SELECT item_id, state, county FROM location_tags WHERE item_id = ? ORDER BY state, county
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get location tags: %w", err)
	}
	defer rows.Close()

	var tags []LocationTag
	for rows.Next() {
		var tag LocationTag
		if err := rows.Scan(&tag.ItemID, &tag.State, &tag.County); err != nil {
			return nil, fmt.Errorf("failed to scan location tag row: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating location tag rows: %w", err)
	}

	return tags, nil
}

func (r *SQLItemRepository) GetItem(itemID string) (*Item, error) {
	var item Item
	err := r.db.QueryRow(`
		SELECT id, title, url, guid, author, scope, published_at, summary, body,
		       image_url, fetched_at, content_hash, enriched_at, enrich_status, enrich_excerpt
		FROM items
		WHERE id = ?
	`, itemID).Scan(
		&item.ID, &item.Title, &item.URL, &item.GUID, &item.Author, &item.Scope,
		&item.PublishedAt, &item.Summary, &item.Body, &item.ImageURL,
		&item.FetchedAt, &item.ContentHash, &item.EnrichedAt,
		&item.EnrichStatus, &item.EnrichExcerpt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return &item, nil
}

// GetRecentItems returns the candidate pool for serving-time ranking, filtered
// by recency and, when given, by state/county tag
func (r *SQLItemRepository) GetRecentItems(state string, county string, since time.Time, limit int) ([]Item, error) {
	query := `
		SELECT DISTINCT i.id, i.title, i.url, i.guid, i.author, i.scope,
		       i.published_at, i.summary, i.body, i.image_url, i.fetched_at,
		       i.content_hash, i.enriched_at, i.enrich_status, i.enrich_excerpt
		FROM items i`
	args := []any{}

	if state != "" {
		query += ` JOIN location_tags lt ON lt.item_id = i.id AND lt.state = ?`
		args = append(args, state)
		if county != "" {
			query += ` AND lt.county = ?`
			args = append(args, county)
		}
	}

	query += `
		WHERE COALESCE(i.published_at, i.fetched_at) >= ?
		ORDER BY COALESCE(i.published_at, i.fetched_at) DESC
		LIMIT ?`
	args = append(args, since, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID, &item.Title, &item.URL, &item.GUID, &item.Author, &item.Scope,
			&item.PublishedAt, &item.Summary, &item.Body, &item.ImageURL,
			&item.FetchedAt, &item.ContentHash, &item.EnrichedAt,
			&item.EnrichStatus, &item.EnrichExcerpt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

func (r *SQLItemRepository) GetItemCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}
