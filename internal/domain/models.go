package domain

import (
	"strings"
	"time"
)

// Domain contains core models shared by the aggregation and summarize paths.

// Topics served by the news endpoint.
const (
	TopicTech    = "tech"
	TopicFinance = "finance"
	TopicWorld   = "world"
)

// AllowedTopics is the fixed allow-set, in display order.
var AllowedTopics = []string{TopicTech, TopicFinance, TopicWorld}

// IsAllowedTopic reports whether topic (already lowercased) is served.
func IsAllowedTopic(topic string) bool {
	for _, t := range AllowedTopics {
		if t == topic {
			return true
		}
	}
	return false
}

// NormalizeTopic trims and lowercases a raw topic value.
func NormalizeTopic(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Source is a named feed endpoint belonging to one topic.
type Source struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Article is the canonical record produced from one feed item.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Topic       string    `json:"topic"`
	PublishedAt time.Time `json:"publishedAt"`
	Excerpt     string    `json:"excerpt"`
	Author      string    `json:"author"`
	Image       *string   `json:"image"`
}
