package geo

import (
	"context"
	"testing"
	"time"

	"github.com/Br0ck25/kynews-sub000/app/database"
)

type fakeItemRepo struct {
	tags            map[string][]string
	tagCalls        int
	enrichCalls     int
	lastEnrich0     string
	lastEnrichImage string
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{tags: map[string][]string{}}
}

func (f *fakeItemRepo) GetItem(itemID string) (*database.Item, error) { return nil, nil }
func (f *fakeItemRepo) GetItemCount() (int, error)                    { return 0, nil }
func (f *fakeItemRepo) GetRecentItems(state, county string, since time.Time, limit int) ([]database.Item, error) {
	return nil, nil
}
func (f *fakeItemRepo) UpsertItem(item database.Item) error             { return nil }
func (f *fakeItemRepo) LinkItemToFeed(feedID string, itemID string) error { return nil }

func (f *fakeItemRepo) UpdateEnrichment(itemID string, enrichedAt time.Time, status string, excerpt string, imageURL string) error {
	f.enrichCalls++
	f.lastEnrich0 = status
	f.lastEnrichImage = imageURL
	return nil
}

func (f *fakeItemRepo) ReplaceLocationTags(itemID string, state string, counties []string) error {
	f.tagCalls++
	f.tags[itemID] = counties
	return nil
}

func (f *fakeItemRepo) GetLocationTags(itemID string) ([]database.LocationTag, error) {
	return nil, nil
}

type fakeFetcher struct {
	text     string
	imageURL string
	status   string
	calls    int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, string, string) {
	f.calls++
	return f.text, f.imageURL, f.status
}

func regionalFeed() *database.Feed {
	return &database.Feed{ID: "feed-1", Name: "Local Paper", URL: "https://example.com/rss", Scope: "regional"}
}

func newTestTagger(t *testing.T, repo *fakeItemRepo, fetcher *fakeFetcher) *Tagger {
	t.Helper()
	return NewTagger(loadGazetteer(t), repo, fetcher)
}

func enriched() *time.Time {
	ts := time.Now().UTC()
	return &ts
}

func TestTagger_NationalFeedBypassed(t *testing.T) {
	repo := newFakeItemRepo()
	tagger := newTestTagger(t, repo, &fakeFetcher{})

	item := &database.Item{ID: "i1", Title: "Laurel County floods", EnrichedAt: enriched()}
	source := &database.Feed{ID: "f1", Scope: "national"}

	if err := tagger.Run(context.Background(), item, source); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if repo.tagCalls != 0 {
		t.Error("National feeds must receive no tag rows")
	}
}

func TestTagger_CountyMatch(t *testing.T) {
	repo := newFakeItemRepo()
	tagger := newTestTagger(t, repo, &fakeFetcher{})

	item := &database.Item{
		ID:         "i1",
		Title:      "Flooding closes roads in Laurel County",
		Summary:    "Heavy rain overnight.",
		EnrichedAt: enriched(),
	}

	if err := tagger.Run(context.Background(), item, regionalFeed()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tags := repo.tags["i1"]
	if len(tags) != 2 || tags[0] != "" || tags[1] != "Laurel" {
		t.Errorf("Expected [\"\" Laurel], got %v", tags)
	}
}

func TestTagger_AmbiguitySuppression(t *testing.T) {
	repo := newFakeItemRepo()
	fetcher := &fakeFetcher{}
	tagger := newTestTagger(t, repo, fetcher)

	item := &database.Item{
		ID:      "i1",
		Title:   "Crash closes interstate near Knoxville, Tennessee",
		Summary: "Traffic was rerouted for hours.",
	}

	if err := tagger.Run(context.Background(), item, regionalFeed()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if tags, ok := repo.tags["i1"]; !ok || len(tags) != 0 {
		t.Errorf("Suppressed item must get an empty tag set, got %v (called=%v)", tags, ok)
	}
	if fetcher.calls != 0 {
		t.Error("Suppressed item must not trigger enrichment")
	}
}

func TestTagger_AggregatorFeedTrusted(t *testing.T) {
	repo := newFakeItemRepo()
	tagger := newTestTagger(t, repo, &fakeFetcher{})

	item := &database.Item{
		ID:         "i1",
		Title:      "Crash closes interstate near Knoxville, Tennessee",
		EnrichedAt: enriched(),
	}
	source := &database.Feed{
		ID:    "f1",
		URL:   "https://news.google.com/rss/search?q=kentucky",
		Scope: "regional",
	}

	if err := tagger.Run(context.Background(), item, source); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tags := repo.tags["i1"]
	if len(tags) != 1 || tags[0] != "" {
		t.Errorf("Aggregator item should keep the state-level row, got %v", tags)
	}
}

func TestTagger_CityGatedByStateSignal(t *testing.T) {
	repo := newFakeItemRepo()
	tagger := newTestTagger(t, repo, &fakeFetcher{})

	// City mention without any state signal: no county tag
	item := &database.Item{
		ID:         "i1",
		Title:      "New restaurant opens in Somerset",
		EnrichedAt: enriched(),
	}
	if err := tagger.Run(context.Background(), item, regionalFeed()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tags := repo.tags["i1"]
	if len(tags) != 1 || tags[0] != "" {
		t.Errorf("City without state signal must not tag a county, got %v", tags)
	}

	// Same city with the state named: county tag applied
	item2 := &database.Item{
		ID:         "i2",
		Title:      "New restaurant opens in Somerset, Kentucky",
		EnrichedAt: enriched(),
	}
	if err := tagger.Run(context.Background(), item2, regionalFeed()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tags = repo.tags["i2"]
	if len(tags) != 2 || tags[1] != "Pulaski" {
		t.Errorf("Expected Pulaski via city gazetteer, got %v", tags)
	}
}

func TestTagger_DefaultCounty(t *testing.T) {
	repo := newFakeItemRepo()
	tagger := newTestTagger(t, repo, &fakeFetcher{})

	source := regionalFeed()
	source.DefaultCounty = "Laurel"

	// State signal present: default county applies
	item := &database.Item{
		ID:         "i1",
		Title:      "Kentucky grant funds new fire equipment",
		EnrichedAt: enriched(),
	}
	if err := tagger.Run(context.Background(), item, source); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tags := repo.tags["i1"]
	if len(tags) != 2 || tags[1] != "Laurel" {
		t.Errorf("Expected default county applied, got %v", tags)
	}

	// No signal and no match: default county withheld
	item2 := &database.Item{
		ID:         "i2",
		Title:      "Recipe of the week: cornbread",
		EnrichedAt: enriched(),
	}
	if err := tagger.Run(context.Background(), item2, source); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tags = repo.tags["i2"]
	if len(tags) != 1 || tags[0] != "" {
		t.Errorf("Default county must not apply without a signal, got %v", tags)
	}
}

func TestTagger_DefaultCountyNotDuplicated(t *testing.T) {
	repo := newFakeItemRepo()
	tagger := newTestTagger(t, repo, &fakeFetcher{})

	source := regionalFeed()
	source.DefaultCounty = "Laurel"

	item := &database.Item{
		ID:         "i1",
		Title:      "Laurel County budget approved",
		EnrichedAt: enriched(),
	}
	if err := tagger.Run(context.Background(), item, source); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tags := repo.tags["i1"]
	if len(tags) != 2 {
		t.Errorf("Default county must not duplicate a matched county, got %v", tags)
	}
}

func TestTagger_EnrichmentResolvesCounty(t *testing.T) {
	repo := newFakeItemRepo()
	fetcher := &fakeFetcher{
		text:     "The fire started on a farm in Laurel County late Thursday.",
		imageURL: "https://example.com/photo.jpg",
		status:   "ok",
	}
	tagger := newTestTagger(t, repo, fetcher)

	item := &database.Item{
		ID:      "i1",
		Title:   "Crews battle barn fire",
		Summary: "Firefighters responded late Thursday.",
		URL:     "https://example.com/barn-fire",
	}

	if err := tagger.Run(context.Background(), item, regionalFeed()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if fetcher.calls != 1 {
		t.Fatalf("Expected exactly one enrichment fetch, got %d", fetcher.calls)
	}
	if repo.enrichCalls != 1 {
		t.Errorf("Expected enrichment result to be recorded")
	}

	tags := repo.tags["i1"]
	if len(tags) != 2 || tags[1] != "Laurel" {
		t.Errorf("Expected county resolved from enriched text, got %v", tags)
	}
}

func TestTagger_EnrichmentSingleAttempt(t *testing.T) {
	repo := newFakeItemRepo()
	fetcher := &fakeFetcher{status: "error"}
	tagger := newTestTagger(t, repo, fetcher)

	// Already checked on an earlier cycle, still unresolved
	item := &database.Item{
		ID:         "i1",
		Title:      "Crews battle barn fire",
		URL:        "https://example.com/barn-fire",
		EnrichedAt: enriched(),
	}

	if err := tagger.Run(context.Background(), item, regionalFeed()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if fetcher.calls != 0 {
		t.Errorf("Enrichment-checked item must not be re-fetched, got %d calls", fetcher.calls)
	}
}

func TestTagger_EnrichmentFailureStillTagsStateLevel(t *testing.T) {
	repo := newFakeItemRepo()
	fetcher := &fakeFetcher{status: "error"}
	tagger := newTestTagger(t, repo, fetcher)

	item := &database.Item{
		ID:    "i1",
		Title: "Crews battle barn fire",
		URL:   "https://example.com/barn-fire",
	}

	if err := tagger.Run(context.Background(), item, regionalFeed()); err != nil {
		t.Fatalf("Enrichment failure must not propagate: %v", err)
	}

	tags := repo.tags["i1"]
	if len(tags) != 1 || tags[0] != "" {
		t.Errorf("Expected state-level row despite failed enrichment, got %v", tags)
	}
}
