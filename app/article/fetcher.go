package article

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// maxPayloadBytes bounds memory before parsing
	maxPayloadBytes = 2 << 20
)

// Enrichment outcome status strings recorded on the item
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusNotHTML = "not-html"
	StatusEmpty   = "empty"
	StatusSkipped = "skipped"
)

// Fetcher fetches a full article page and reduces it to a text excerpt and a
// representative image. Best-effort: it never propagates an error, a failed
// fetch degrades to empty text and a status string.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewFetcher(httpClient *http.Client, userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, string, string) {
	if url == "" {
		return "", "", StatusSkipped
	}

	data, err := f.fetchHTML(ctx, url)
	if err != nil {
		if strings.Contains(err.Error(), "content type") {
			slog.Debug("Article fetch rejected", "url", url, "error", err)
			return "", "", StatusNotHTML
		}
		slog.Debug("Article fetch failed", "url", url, "error", err)
		return "", "", StatusError
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		slog.Debug("Article parse failed", "url", url, "error", err)
		return "", "", StatusError
	}

	text, imageURL := Extract(doc)
	if text == "" {
		return "", imageURL, StatusEmpty
	}

	return text, imageURL, StatusOK
}

func (f *Fetcher) fetchHTML(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
