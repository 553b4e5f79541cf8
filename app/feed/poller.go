package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const errorBodyLimit = 512

// FetchResult is the outcome of a conditional fetch. NotModified carries no
// payload; Success carries the payload plus refreshed validators.
type FetchResult struct {
	NotModified  bool
	Body         []byte
	ETag         string
	LastModified string
}

// Poller performs conditional HTTP fetches for feed sources, bounded by a
// fixed timeout. Timeout expiry surfaces as the same failure class as a
// transport error.
type Poller struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewPoller(httpClient *http.Client, userAgent string, timeout time.Duration) *Poller {
	return &Poller{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Run fetches the feed URL, sending conditional headers when prior validators
// exist. The caller persists the refreshed validators on every non-failure
// outcome, including not-modified.
func (p *Poller) Run(ctx context.Context, url string, etag string, lastModified string) (*FetchResult, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &FetchResult{
			NotModified:  true,
			ETag:         etag,
			LastModified: lastModified,
		}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, fmt.Errorf("HTTP error: %d %s: %s", resp.StatusCode, resp.Status, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &FetchResult{
		Body:         body,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}
