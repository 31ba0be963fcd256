// Package aggregator fans feed fetches out over a topic's sources and merges
// the results into one deduplicated, recency-ordered list.
package aggregator

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/pkg/feed"
)

// Options tunes a Service.
type Options struct {
	Concurrency    int
	MaxPerSource   int
	// SourcePriority merges source results in registration order instead of
	// completion order, making the dedup winner deterministic.
	SourcePriority bool
}

// Service coordinates fetching across all sources of a topic.
type Service struct {
	fetcher    feed.Fetcher
	normalizer ItemNormalizer
	opts       Options
	log        logger.Logger
}

// NewService wires an aggregator. Non-positive limits fall back to 2 in-flight
// fetches and 30 items per source.
func NewService(fetcher feed.Fetcher, normalizer ItemNormalizer, opts Options, log logger.Logger) *Service {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 2
	}
	if opts.MaxPerSource <= 0 {
		opts.MaxPerSource = 30
	}
	if normalizer == nil {
		normalizer = feed.NewNormalizer(nil)
	}
	return &Service{
		fetcher:    fetcher,
		normalizer: normalizer,
		opts:       opts,
		log:        logger.Ensure(log),
	}
}

type sourceBlock struct {
	index    int
	source   domain.Source
	articles []domain.Article
}

// Aggregate fetches every source and returns the merged articles. It never
// fails; an empty result means no source produced anything.
func (s *Service) Aggregate(ctx context.Context, topic string, sources []domain.Source) []domain.Article {
	if s == nil || s.fetcher == nil || len(sources) == 0 {
		return []domain.Article{}
	}

	start := time.Now()
	var (
		mu     sync.Mutex
		blocks = make([]sourceBlock, 0, len(sources))
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i, src := range sources {
		g.Go(func() error {
			articles, err := s.runSource(gctx, topic, src)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				return nil
			}
			blocks = append(blocks, sourceBlock{index: i, source: src, articles: articles})
			return nil
		})
	}
	_ = g.Wait()

	if s.opts.SourcePriority {
		sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].index < blocks[j].index })
	}

	merged := dedupe(blocks)
	sortByRecency(merged)

	s.log.InfoObj("topic aggregation completed", "aggregation", map[string]any{
		"topic":             topic,
		"sources_total":     len(sources),
		"sources_succeeded": len(blocks),
		"sources_failed":    failed,
		"articles":          len(merged),
		"elapsed_ms":        time.Since(start).Milliseconds(),
	})
	return merged
}

func (s *Service) runSource(ctx context.Context, topic string, src domain.Source) ([]domain.Article, error) {
	items, err := s.fetcher.Fetch(ctx, src)
	if err != nil {
		s.logSourceFailure(topic, src, err)
		return nil, err
	}

	if len(items) > s.opts.MaxPerSource {
		items = items[:s.opts.MaxPerSource]
	}

	articles := make([]domain.Article, 0, len(items))
	for _, it := range items {
		articles = append(articles, s.normalizer.Normalize(it, topic, src.Name))
	}
	return articles, nil
}

func (s *Service) logSourceFailure(topic string, src domain.Source, err error) {
	fields := map[string]any{
		"topic":  topic,
		"source": src.Name,
		"url":    src.URL,
		"error":  err.Error(),
	}
	var fe *feed.FetchError
	if errors.As(err, &fe) {
		fields["attempts"] = fe.Attempts
		fields["timeout"] = fe.Timeout()
	}
	s.log.WarnObj("source fetch failed", "source_error", fields)
}

// dedupe keeps the first article seen for each canonical key.
func dedupe(blocks []sourceBlock) []domain.Article {
	total := 0
	for _, b := range blocks {
		total += len(b.articles)
	}

	seen := make(map[string]struct{}, total)
	out := make([]domain.Article, 0, total)
	for _, b := range blocks {
		for _, a := range b.articles {
			key := feed.CanonicalKey(a)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

func sortByRecency(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
