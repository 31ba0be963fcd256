package aggregator

import (
	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/pkg/feed"
)

// ItemNormalizer turns one raw feed item into an article.
type ItemNormalizer interface {
	Normalize(item feed.RawItem, topic, source string) domain.Article
}
