package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Br0ck25/kynews-sub000/app/database"
	"github.com/Br0ck25/kynews-sub000/app/feed"
	"github.com/Br0ck25/kynews-sub000/app/geo"
)

// Run statuses recorded in the ledger
const (
	RunStatusOK     = "ok"
	RunStatusFailed = "failed"
)

// IngestRunner is the single ingestion entry point shared by the scheduler
// and the manual run-now trigger
type IngestRunner interface {
	Run(ctx context.Context) error
}

var _ IngestRunner = (*Runner)(nil)

// Runner executes one ingestion cycle: poll each enabled feed, parse, upsert
// items, tag locations, and record the outcome in the run ledger. Feeds are
// processed sequentially; a broken source never aborts the cycle.
type Runner struct {
	feedRepo database.FeedRepository
	itemRepo database.ItemRepository
	runRepo  database.RunRepository
	poller   *feed.Poller
	parser   *feed.Parser
	tagger   *geo.Tagger
}

func NewRunner(feedRepo database.FeedRepository, itemRepo database.ItemRepository,
	runRepo database.RunRepository, poller *feed.Poller, parser *feed.Parser,
	tagger *geo.Tagger) *Runner {
	return &Runner{
		feedRepo: feedRepo,
		itemRepo: itemRepo,
		runRepo:  runRepo,
		poller:   poller,
		parser:   parser,
		tagger:   tagger,
	}
}

// Run processes all enabled feeds once. Per-feed failures are caught at the
// feed boundary and written as feed_errors rows; only a ledger bookkeeping
// failure fails the run itself.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.NewString()
	startedAt := time.Now().UTC()

	if err := r.runRepo.StartRun(runID, startedAt); err != nil {
		return fmt.Errorf("failed to open run record: %w", err)
	}

	feeds, err := r.feedRepo.GetEnabledFeeds()
	if err != nil {
		r.finishRun(runID, RunStatusFailed)
		return fmt.Errorf("failed to load enabled feeds: %w", err)
	}

	errorCount := 0
	for i := range feeds {
		select {
		case <-ctx.Done():
			r.finishRun(runID, RunStatusFailed)
			return ctx.Err()
		default:
		}

		source := &feeds[i]
		if err := r.processFeed(ctx, source); err != nil {
			errorCount++
			slog.Error("Feed failed", "feed", source.Name, "url", source.URL, "error", err)

			if recErr := r.runRepo.RecordFeedError(source.ID, time.Now().UTC(), err.Error()); recErr != nil {
				// The ledger cannot self-report past this point
				r.finishRun(runID, RunStatusFailed)
				return fmt.Errorf("failed to record feed error: %w", recErr)
			}
		}
	}

	if err := r.runRepo.FinishRun(runID, RunStatusOK, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to close run record: %w", err)
	}

	slog.Info("Ingestion run completed",
		"run", runID,
		"duration", time.Since(startedAt),
		"feeds", len(feeds),
		"feed_errors", errorCount)

	return nil
}

func (r *Runner) finishRun(runID string, status string) {
	if err := r.runRepo.FinishRun(runID, status, time.Now().UTC()); err != nil {
		slog.Error("Failed to close run record", "run", runID, "error", err)
	}
}

func (r *Runner) processFeed(ctx context.Context, source *database.Feed) error {
	result, err := r.poller.Run(ctx, source.URL, source.ETag, source.LastModified)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	// Validators refresh on every non-failure outcome, including not-modified
	now := time.Now().UTC()
	if err := r.feedRepo.UpdateFeedValidators(source.ID, result.ETag, result.LastModified, now); err != nil {
		return fmt.Errorf("failed to update feed validators: %w", err)
	}

	if result.NotModified {
		slog.Debug("Feed not modified", "feed", source.Name)
		return nil
	}

	entries, err := r.parser.Run(result.Body)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	for _, entry := range entries {
		if err := r.processEntry(ctx, source, entry); err != nil {
			return err
		}
	}

	slog.Info("Feed processed", "feed", source.Name, "entries", len(entries))
	return nil
}

func (r *Runner) processEntry(ctx context.Context, source *database.Feed, entry feed.Entry) error {
	itemID := feed.ItemID(entry)

	item := database.Item{
		ID:          itemID,
		Title:       entry.Title,
		URL:         entry.Link,
		GUID:        entry.GUID,
		Author:      entry.Author,
		Scope:       source.Scope,
		PublishedAt: entry.PublishedAt,
		Summary:     entry.Summary,
		Body:        entry.Content,
		ImageURL:    entry.ImageURL,
		FetchedAt:   time.Now().UTC(),
		ContentHash: feed.ContentHash(entry),
	}

	if err := r.itemRepo.UpsertItem(item); err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}

	if err := r.itemRepo.LinkItemToFeed(source.ID, itemID); err != nil {
		return fmt.Errorf("failed to link item to feed: %w", err)
	}

	// Tag from the stored row so enrichment state from earlier cycles is
	// visible to the tagger
	stored, err := r.itemRepo.GetItem(itemID)
	if err != nil {
		return fmt.Errorf("failed to reload item: %w", err)
	}
	if stored == nil {
		stored = &item
	}

	if err := r.tagger.Run(ctx, stored, source); err != nil {
		return fmt.Errorf("failed to tag item: %w", err)
	}

	return nil
}
