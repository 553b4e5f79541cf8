package geo

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Br0ck25/kynews-sub000/app/database"
	"github.com/Br0ck25/kynews-sub000/app/feed"
)

// aggregatorHostPattern identifies region-focused aggregation feeds that are
// always trusted, even when the text mentions another state
const aggregatorHostPattern = "news.google.com"

// ArticleFetcher fetches and reduces a full article page on demand. It never
// fails: a broken fetch yields empty text and a status string.
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (text string, imageURL string, status string)
}

// Tagger decides state/county tags per item using the gazetteer plus
// on-demand article enrichment
type Tagger struct {
	matcher  Matcher
	itemRepo database.ItemRepository
	fetcher  ArticleFetcher
}

func NewTagger(matcher Matcher, itemRepo database.ItemRepository, fetcher ArticleFetcher) *Tagger {
	return &Tagger{
		matcher:  matcher,
		itemRepo: itemRepo,
		fetcher:  fetcher,
	}
}

// Run tags a single item. National-scope feeds bypass tagging entirely and
// receive no rows.
func (t *Tagger) Run(ctx context.Context, item *database.Item, source *database.Feed) error {
	if source.Scope != feed.ScopeRegional {
		return nil
	}

	text := searchableText(item)
	m := t.matcher.Match(text)

	counties := m.Counties
	signal := m.StateSignal

	// City names are only trusted when the state itself is named
	if len(counties) == 0 && signal {
		counties = t.matcher.CityCounties(text)
	}

	// An item mentioning another state, with no county hit and no state
	// signal, is judged likely to be about that other state
	suppressed := len(m.OtherStates) > 0 && len(counties) == 0 && !signal &&
		!t.trustedAggregator(source)

	if !suppressed && len(counties) == 0 && item.EnrichedAt == nil {
		counties, signal = t.enrichAndRematch(ctx, item, counties, signal)
	}

	if source.DefaultCounty != "" && !suppressed && (signal || len(counties) > 0) {
		counties = appendUnique(counties, source.DefaultCounty)
	}

	if suppressed {
		slog.Debug("Tagging suppressed, other state mentioned",
			"item", item.ID, "feed", source.Name, "other_states", m.OtherStates)
		return t.itemRepo.ReplaceLocationTags(item.ID, t.matcher.State(), nil)
	}

	// One empty-county row marks state membership; one row per county
	tags := append([]string{""}, counties...)
	return t.itemRepo.ReplaceLocationTags(item.ID, t.matcher.State(), tags)
}

// enrichAndRematch fetches the full article body once per item and re-runs
// the match against the fetched text. The recorded timestamp prevents repeat
// fetches on later cycles even if the item stays unresolved.
func (t *Tagger) enrichAndRematch(ctx context.Context, item *database.Item, counties []string, signal bool) ([]string, bool) {
	excerpt, imageURL, status := t.fetcher.Fetch(ctx, item.URL)

	now := time.Now().UTC()
	if err := t.itemRepo.UpdateEnrichment(item.ID, now, status, excerpt, imageURL); err != nil {
		slog.Error("Failed to record enrichment result", "item", item.ID, "error", err)
	}
	item.EnrichedAt = &now
	item.EnrichStatus = status
	item.EnrichExcerpt = excerpt

	if excerpt == "" {
		return counties, signal
	}

	m := t.matcher.Match(excerpt)
	counties = m.Counties
	signal = signal || m.StateSignal
	if len(counties) == 0 && signal {
		counties = t.matcher.CityCounties(searchableText(item))
	}

	return counties, signal
}

func (t *Tagger) trustedAggregator(source *database.Feed) bool {
	return source.Aggregator || strings.Contains(source.URL, aggregatorHostPattern)
}

func searchableText(item *database.Item) string {
	parts := []string{item.Title, item.Summary}
	if item.Body != "" {
		parts = append(parts, item.Body)
	}
	if item.EnrichExcerpt != "" {
		parts = append(parts, item.EnrichExcerpt)
	}
	return strings.Join(parts, " ")
}

func appendUnique(values []string, value string) []string {
	for _, v := range values {
		if v == value {
			return values
		}
	}
	return append(values, value)
}
