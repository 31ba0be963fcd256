package httpapi

import (
	"context"

	"github.com/samvad-hq/samvad-newsdesk/internal/cache"
	"github.com/samvad-hq/samvad-newsdesk/internal/news"
	"github.com/samvad-hq/samvad-newsdesk/internal/summarize"
)

// NewsService serves topic pages.
type NewsService interface {
	Get(ctx context.Context, req news.Request) (news.Page, error)
}

// Summarizer answers summarize requests.
type Summarizer interface {
	Summarize(ctx context.Context, req summarize.Request) (summarize.Response, error)
}

// StatsFunc reports cache statistics by cache name.
type StatsFunc func() map[string]cache.Stats
