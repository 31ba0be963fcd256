package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
)

// EventTopicRefreshed is emitted after a topic was aggregated from upstream.
const EventTopicRefreshed = "topic.refreshed"

// Event represents the payload published downstream.
type Event struct {
	Type         string           `json:"type"`
	Topic        string           `json:"topic"`
	ArticleCount int              `json:"article_count"`
	Articles     []domain.Article `json:"articles"`
	RefreshedAt  time.Time        `json:"refreshed_at"`
}

// NewTopicRefreshedEvent builds the event for a freshly aggregated topic.
func NewTopicRefreshedEvent(topic string, articles []domain.Article, at time.Time) Event {
	if articles == nil {
		articles = []domain.Article{}
	}
	return Event{
		Type:         EventTopicRefreshed,
		Topic:        topic,
		ArticleCount: len(articles),
		Articles:     articles,
		RefreshedAt:  at.UTC(),
	}
}
