package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run turns a raw feed payload into candidate entries. A parse failure is a
// hard error for the calling feed cycle only.
func (p *Parser) Run(data []byte) ([]Entry, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, p.normalizeItem(item))
	}

	return entries, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Entry {
	entry := Entry{
		Title:        strings.TrimSpace(item.Title),
		Link:         strings.TrimSpace(item.Link),
		GUID:         strings.TrimSpace(item.GUID),
		Summary:      item.Description,
		Content:      item.Content,
		PublishedRaw: item.Published,
	}

	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		entry.PublishedAt = &t
	}

	entry.Author = p.extractAuthor(item)
	entry.ImageURL = p.extractImage(item)

	return entry
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		if name := strings.TrimSpace(item.Authors[0].Name); name != "" {
			return name
		}
		if email := strings.TrimSpace(item.Authors[0].Email); email != "" {
			return email
		}
	}
	if item.Author != nil {
		if name := strings.TrimSpace(item.Author.Name); name != "" {
			return name
		}
		if email := strings.TrimSpace(item.Author.Email); email != "" {
			return email
		}
	}
	return ""
}

func (p *Parser) extractImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	for _, enclosure := range item.Enclosures {
		if enclosure == nil || enclosure.URL == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(enclosure.Type), "image/") {
			return enclosure.URL
		}
	}

	// media:content often arrives via gofeed extensions
	if media, ok := item.Extensions["media"]; ok {
		for _, ext := range media["content"] {
			if url, ok := ext.Attrs["url"]; ok && url != "" {
				return url
			}
		}
		for _, ext := range media["thumbnail"] {
			if url, ok := ext.Attrs["url"]; ok && url != "" {
				return url
			}
		}
	}

	return ""
}
