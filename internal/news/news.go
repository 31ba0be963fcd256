// Package news serves paginated topic pages out of the topic cache, falling
// back to a fresh aggregation on a miss.
package news

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/apierr"
	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
)

// Cache status values reported on every page.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Request is a validated-later view of the query string.
type Request struct {
	Topic        string
	Page         int
	ForceRefresh bool
}

// Page is the news endpoint response body.
type Page struct {
	Topic    string           `json:"topic"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Count    int              `json:"count"`
	Cache    string           `json:"cache"`
	Items    []domain.Article `json:"items"`
}

// Options configures a Service.
type Options struct {
	PageSize     int
	StrictTopics bool
	CacheTTL     time.Duration
}

// Service orchestrates cache lookups, aggregation and pagination.
type Service struct {
	cache    ArticleCache
	agg      Aggregator
	registry SourceRegistry
	notifier RefreshNotifier
	opts     Options
	log      logger.Logger
}

// NewService wires the news service. notifier may be nil.
func NewService(cache ArticleCache, agg Aggregator, registry SourceRegistry, notifier RefreshNotifier, opts Options, log logger.Logger) *Service {
	if opts.PageSize < 1 {
		opts.PageSize = 1
	}
	if opts.PageSize > 100 {
		opts.PageSize = 100
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 300 * time.Second
	}
	return &Service{
		cache:    cache,
		agg:      agg,
		registry: registry,
		notifier: notifier,
		opts:     opts,
		log:      logger.Ensure(log),
	}
}

// CacheKey is the topic cache key.
func CacheKey(topic string) string { return "news:" + topic }

// ResolveTopic lowercases raw and checks it against the allow-set. Unknown or
// missing topics are rejected in strict mode and replaced by tech otherwise.
func ResolveTopic(raw string, strict bool) (string, error) {
	topic := domain.NormalizeTopic(raw)
	if domain.IsAllowedTopic(topic) {
		return topic, nil
	}
	if strict {
		return "", apierr.InvalidTopic("Topic must be one of: " + strings.Join(domain.AllowedTopics, ", "))
	}
	return domain.TopicTech, nil
}

// ParsePage reads the leading integer of raw; anything missing or below 1 is 1.
// Values too large for an int saturate so they land past the last page.
func ParsePage(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return 1
	}
	n, err := strconv.Atoi(raw[:end])
	if errors.Is(err, strconv.ErrRange) && raw[0] != '-' {
		return math.MaxInt
	}
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Get resolves one page of a topic.
func (s *Service) Get(ctx context.Context, req Request) (Page, error) {
	topic, err := ResolveTopic(req.Topic, s.opts.StrictTopics)
	if err != nil {
		return Page{}, err
	}
	page := req.Page
	if page < 1 {
		page = 1
	}

	key := CacheKey(topic)
	if req.ForceRefresh {
		s.cache.Delete(key)
	}

	status := CacheHit
	articles, ok := s.cache.Get(key)
	if !ok {
		status = CacheMiss
		articles = s.agg.Aggregate(ctx, topic, s.registry.SourcesByTopic(topic))
		if len(articles) == 0 {
			s.log.ErrorObj("all sources failed", "news_error", map[string]any{
				"topic":         topic,
				"force_refresh": req.ForceRefresh,
			})
			return Page{}, apierr.UpstreamFetchFailed()
		}
		s.cache.Set(key, articles, s.opts.CacheTTL)
		if s.notifier != nil {
			s.notifier.TopicRefreshed(ctx, topic, articles)
		}
	}

	s.log.DebugObj("news page served", "news_page", map[string]any{
		"topic": topic,
		"page":  page,
		"cache": status,
		"count": len(articles),
	})

	return Page{
		Topic:    topic,
		Page:     page,
		PageSize: s.opts.PageSize,
		Count:    len(articles),
		Cache:    status,
		Items:    slicePage(articles, page, s.opts.PageSize),
	}, nil
}

func slicePage(articles []domain.Article, page, size int) []domain.Article {
	// page-1 is compared first so the multiplication below cannot overflow.
	if page-1 >= len(articles) || (page-1)*size >= len(articles) {
		return []domain.Article{}
	}
	start := (page - 1) * size
	end := start + size
	if end > len(articles) {
		end = len(articles)
	}
	return articles[start:end]
}
