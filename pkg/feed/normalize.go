package feed

import (
	"strings"
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
)

const untitled = "Untitled"

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	time.RFC3339Nano,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalizer converts raw feed items into articles. It never fails; every
// optional field has a fallback.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer returns a Normalizer using now for missing or invalid dates.
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize builds the canonical article for one raw item.
func (n *Normalizer) Normalize(item RawItem, topic, source string) domain.Article {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = untitled
	}

	link := strings.TrimSpace(item.Link)
	if link == "" {
		link = strings.TrimSpace(item.GUID)
	}
	normalized := NormalizeURL(link)

	id := normalized
	if id == "" {
		id = source + ":" + title
	}

	return domain.Article{
		ID:          id,
		Title:       title,
		URL:         normalized,
		Source:      source,
		Topic:       topic,
		PublishedAt: n.publishedAt(item),
		Excerpt:     excerpt(item),
		Author:      firstNonEmpty(item.Creator, item.Author, source),
		Image:       resolveImage(item),
	}
}

func (n *Normalizer) publishedAt(item RawItem) time.Time {
	if ts, ok := parseDate(item.IsoDate); ok {
		return ts
	}
	if ts, ok := parseDate(item.PubDate); ok {
		return ts
	}
	return n.now().UTC()
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range pubDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func excerpt(item RawItem) string {
	for _, candidate := range []string{item.Snippet, item.Summary, item.EncodedContent, item.Content} {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if text := stripHTML(candidate); text != "" {
			return truncateRunes(text, excerptLimit)
		}
	}
	return ""
}

// resolveImage walks media:content, media:thumbnail, enclosure, the first
// inline <img>, then whatever image gofeed attached to the item.
func resolveImage(item RawItem) *string {
	candidates := append([]string{}, item.MediaContent...)
	candidates = append(candidates, item.MediaThumbnail...)
	candidates = append(candidates, item.EnclosureURL)
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return &c
		}
	}

	for _, html := range []string{item.EncodedContent, item.Content} {
		if src := firstImage(html); src != "" {
			return &src
		}
	}
	if img := strings.TrimSpace(item.ItemImage); img != "" {
		return &img
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
