package sources

import (
	"fmt"
	"strings"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
)

type knownSource struct {
	url   string
	topic string
}

// knownSources is the alias table the override string resolves against.
var knownSources = map[string]knownSource{
	"marketwatch":    {url: "https://www.marketwatch.com/rss/topstories", topic: domain.TopicFinance},
	"marketwatch-rt": {url: "https://www.marketwatch.com/rss/realtimeheadlines", topic: domain.TopicFinance},
	"theverge":       {url: "https://www.theverge.com/rss/index.xml", topic: domain.TopicTech},
	"bbc-tech":       {url: "https://feeds.bbci.co.uk/news/technology/rss.xml", topic: domain.TopicTech},
	"bbc-world":      {url: "https://feeds.bbci.co.uk/news/world/rss.xml", topic: domain.TopicWorld},
	"hackernews":     {url: "https://hnrss.org/frontpage", topic: domain.TopicTech},
	"aljazeera":      {url: "https://www.aljazeera.com/xml/rss/all.xml", topic: domain.TopicWorld},
}

// resolveAlias maps an alias to a Source. "bbc" depends on the target topic.
func resolveAlias(name, topic string) (Source, bool) {
	if k, ok := knownSources[name]; ok {
		return Source{Name: name, URL: k.url}, true
	}
	if name == "bbc" {
		if topic == domain.TopicTech {
			return Source{Name: "bbc", URL: knownSources["bbc-tech"].url}, true
		}
		return Source{Name: "bbc", URL: knownSources["bbc-world"].url}, true
	}
	return Source{}, false
}

// ParseOverride parses "topic:alias,alias;topic:alias" into per-topic lists.
// It never fails: malformed blocks and unknown aliases are dropped and described
// in the returned warnings. A nil map means nothing usable was found.
func ParseOverride(raw string) (map[string][]Source, []string) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var warnings []string
	result := make(map[string][]Source)

	for _, block := range strings.Split(raw, ";") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		parts := strings.Split(block, ":")
		if len(parts) < 2 {
			warnings = append(warnings, fmt.Sprintf("skipping malformed block %q", block))
			continue
		}
		topic := domain.NormalizeTopic(parts[0])
		csv := strings.TrimSpace(parts[1])
		if topic == "" || csv == "" {
			warnings = append(warnings, fmt.Sprintf("skipping malformed block %q", block))
			continue
		}

		var list []Source
		for _, name := range strings.Split(csv, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			src, ok := resolveAlias(name, topic)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("unknown source alias %q for topic %q", name, topic))
				continue
			}
			list = append(list, src)
		}
		if len(list) == 0 {
			warnings = append(warnings, fmt.Sprintf("topic %q resolved to no sources", topic))
			continue
		}
		result[topic] = list
	}

	if len(result) == 0 {
		return nil, warnings
	}
	return result, warnings
}
