package news

import (
	"context"
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
)

// ArticleCache stores full aggregated lists keyed by news:{topic}.
type ArticleCache interface {
	Get(key string) ([]domain.Article, bool)
	Set(key string, value []domain.Article, ttl time.Duration)
	Delete(key string)
}

// Aggregator produces the merged article list for a topic.
type Aggregator interface {
	Aggregate(ctx context.Context, topic string, sources []domain.Source) []domain.Article
}

// SourceRegistry resolves a topic to its feed endpoints.
type SourceRegistry interface {
	SourcesByTopic(topic string) []domain.Source
}

// RefreshNotifier is told about every successful fresh aggregation.
type RefreshNotifier interface {
	TopicRefreshed(ctx context.Context, topic string, articles []domain.Article)
}
