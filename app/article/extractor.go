package article

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// maxExcerptRunes caps the stored text excerpt
	maxExcerptRunes = 10000

	minParagraphLen = 10
)

// strippedTags are removed before any text extraction
const strippedTags = "script, style, iframe, embed, object, noscript, form, nav, footer, header, aside"

// Extract reduces a parsed page to a best-effort main text block and a
// representative image URL. Either result may be empty.
func Extract(doc *goquery.Document) (string, string) {
	imageURL := extractImage(doc)

	doc.Find(strippedTags).Remove()

	text := extractText(doc)
	return text, imageURL
}

// extractText prefers a semantic article or main container, falling back to
// the whole page body
func extractText(doc *goquery.Document) string {
	containers := []string{"article", "main", "body"}

	for _, container := range containers {
		sel := doc.Find(container).First()
		if sel.Length() == 0 {
			continue
		}

		var paragraphs []string
		sel.Find("p").Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) >= minParagraphLen {
				paragraphs = append(paragraphs, text)
			}
		})

		if len(paragraphs) == 0 {
			// No paragraph markup; take the container text wholesale
			if text := collapseWhitespace(sel.Text()); text != "" {
				return truncateRunes(text, maxExcerptRunes)
			}
			continue
		}

		return truncateRunes(strings.Join(paragraphs, "\n\n"), maxExcerptRunes)
	}

	return ""
}

// extractImage prefers Open Graph and Twitter meta images, then the first
// plausible inline image
func extractImage(doc *goquery.Document) string {
	metaSelectors := []string{
		`meta[property="og:image"]`,
		`meta[name="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="twitter:image"]`,
	}

	for _, selector := range metaSelectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			content = strings.TrimSpace(content)
			if plausibleImageURL(content) {
				return content
			}
		}
	}

	var found string
	doc.Find("img").EachWithBreak(func(i int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok {
			src, ok = s.Attr("data-src")
		}
		if !ok {
			return true
		}
		src = strings.TrimSpace(src)
		if plausibleImageURL(src) {
			found = src
			return false
		}
		return true
	})

	return found
}

// plausibleImageURL skips obvious logos, icons, sprites, data URIs, and
// non-absolute URLs
func plausibleImageURL(url string) bool {
	if url == "" {
		return false
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return false
	}

	lower := strings.ToLower(url)
	for _, marker := range []string{"logo", "icon", "sprite", "avatar", "placeholder", "1x1", "pixel", "spacer", "badge"} {
		if strings.Contains(lower, marker) {
			return false
		}
	}

	return true
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
