package feed

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// RawItem is a parsed feed entry before normalization. It only lives for the
// duration of one fetch and is owned by the fetcher that produced it.
type RawItem struct {
	Title          string
	Link           string
	GUID           string
	Snippet        string
	Summary        string
	EncodedContent string
	Content        string
	MediaContent   []string
	MediaThumbnail []string
	EnclosureURL   string
	ItemImage      string
	IsoDate        string
	PubDate        string
	Creator        string
	Author         string
}

func rawItemFromGofeed(item *gofeed.Item) RawItem {
	if item == nil {
		return RawItem{}
	}

	raw := RawItem{
		Title:          item.Title,
		Link:           item.Link,
		GUID:           item.GUID,
		Snippet:        item.Description,
		EncodedContent: item.Content,
		PubDate:        item.Published,
	}
	if raw.PubDate == "" {
		raw.PubDate = item.Updated
	}

	switch {
	case item.PublishedParsed != nil:
		raw.IsoDate = item.PublishedParsed.UTC().Format(time.RFC3339)
	case item.UpdatedParsed != nil:
		raw.IsoDate = item.UpdatedParsed.UTC().Format(time.RFC3339)
	}

	if item.ITunesExt != nil {
		raw.Summary = item.ITunesExt.Summary
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		raw.Creator = item.DublinCoreExt.Creator[0]
	}
	if item.Author != nil {
		raw.Author = item.Author.Name
	} else if len(item.Authors) > 0 && item.Authors[0] != nil {
		raw.Author = item.Authors[0].Name
	}

	for _, enc := range item.Enclosures {
		if enc != nil && strings.TrimSpace(enc.URL) != "" {
			raw.EnclosureURL = strings.TrimSpace(enc.URL)
			break
		}
	}

	if media, ok := item.Extensions["media"]; ok {
		raw.MediaContent = mediaURLs(media, "content")
		raw.MediaThumbnail = mediaURLs(media, "thumbnail")
		for _, group := range media["group"] {
			raw.MediaContent = append(raw.MediaContent, mediaURLs(group.Children, "content")...)
			raw.MediaThumbnail = append(raw.MediaThumbnail, mediaURLs(group.Children, "thumbnail")...)
		}
	}
	if item.Image != nil {
		raw.ItemImage = strings.TrimSpace(item.Image.URL)
	}

	return raw
}

// mediaURLs collects url attributes of the named media:* elements.
func mediaURLs(elems map[string][]ext.Extension, name string) []string {
	var out []string
	for _, e := range elems[name] {
		if u := strings.TrimSpace(e.Attrs["url"]); u != "" {
			out = append(out, u)
		}
	}
	return out
}
