package serving

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Br0ck25/kynews-sub000/app/database"
)

// paywallHosts is the known-paywall domain list; matched exactly or by
// subdomain against an item URL's host
var paywallHosts = []string{
	"kentucky.com",
	"courier-journal.com",
	"messenger-inquirer.com",
	"news-expressky.com",
	"thenewsenterprise.com",
	"state-journal.com",
	"dailyindependent.com",
	"thetimestribune.com",
	"sentinel-echo.com",
	"nytimes.com",
	"washingtonpost.com",
	"wsj.com",
	"bloomberg.com",
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "and": true, "or": true, "with": true,
	"as": true, "by": true, "from": true, "is": true, "are": true,
}

// trackingParams are stripped when canonicalizing URLs. utm_* is handled by
// prefix.
var trackingParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"mc_eid":  true,
	"mkt_tok": true,
}

// RankedItem is a serving-time result with internal bookkeeping stripped
type RankedItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
}

// Rank collapses near-duplicate stories syndicated by multiple outlets and
// orders the surviving items. Stateless and read-only; the candidate pool is
// expected to be over-fetched by the caller.
func Rank(items []database.Item, limit int) []RankedItem {
	sorted := make([]database.Item, len(items))
	copy(sorted, items)

	// Non-paid before paid; within the same class, most recent first
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := IsPaidSource(sorted[i].URL), IsPaidSource(sorted[j].URL)
		if pi != pj {
			return !pi
		}
		return effectiveTime(sorted[i]).After(effectiveTime(sorted[j]))
	})

	// Fingerprints held by free items; a paid copy of a syndicated wire
	// story loses to the free version
	freeFingerprints := map[string]bool{}
	for _, item := range sorted {
		if !IsPaidSource(item.URL) {
			if fp := TitleFingerprint(item.Title); fp != "" {
				freeFingerprints[fp] = true
			}
		}
	}

	seenURL := map[string]bool{}
	seenFP := map[string]bool{}
	seenPair := map[string]bool{}

	var out []RankedItem
	for _, item := range sorted {
		if limit > 0 && len(out) >= limit {
			break
		}

		fp := TitleFingerprint(item.Title)
		canonical := CanonicalURL(item.URL)
		host := hostOf(item.URL)

		if IsPaidSource(item.URL) && fp != "" && freeFingerprints[fp] {
			continue
		}
		if canonical != "" && seenURL[canonical] {
			continue
		}
		if fp != "" && seenFP[fp] {
			continue
		}

		// Titleless items fall back to their identity as the dedup key
		pairKey := fp + "|" + host
		if fp == "" {
			pairKey = item.ID
		}
		if seenPair[pairKey] {
			continue
		}

		if canonical != "" {
			seenURL[canonical] = true
		}
		if fp != "" {
			seenFP[fp] = true
		}
		seenPair[pairKey] = true

		out = append(out, stripItem(item))
	}

	return out
}

// IsPaidSource reports whether the URL's host is on the known-paywall list,
// by exact or subdomain match
func IsPaidSource(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	for _, paid := range paywallHosts {
		if host == paid || strings.HasSuffix(host, "."+paid) {
			return true
		}
	}
	return false
}

// TitleFingerprint normalizes a title for near-duplicate detection:
// lowercase, punctuation stripped, stopwords removed, whitespace collapsed
func TitleFingerprint(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	var words []string
	for _, word := range strings.Fields(b.String()) {
		if !stopwords[word] {
			words = append(words, word)
		}
	}

	return strings.Join(words, " ")
}

// CanonicalURL strips tracking query parameters, the fragment, and any
// trailing slash
func CanonicalURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	query := u.Query()
	for param := range query {
		if strings.HasPrefix(param, "utm_") || trackingParams[param] {
			query.Del(param)
		}
	}
	u.RawQuery = query.Encode()
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
}

func effectiveTime(item database.Item) time.Time {
	if item.PublishedAt != nil {
		return *item.PublishedAt
	}
	return item.FetchedAt
}

func stripItem(item database.Item) RankedItem {
	return RankedItem{
		ID:          item.ID,
		Title:       item.Title,
		URL:         item.URL,
		Author:      item.Author,
		PublishedAt: item.PublishedAt,
		Summary:     item.Summary,
		ImageURL:    item.ImageURL,
	}
}
