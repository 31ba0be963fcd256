// Package app wires configuration, feeds, caches, the AI provider and the HTTP
// router into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/samvad-newsdesk/internal/aggregator"
	"github.com/samvad-hq/samvad-newsdesk/internal/cache"
	"github.com/samvad-hq/samvad-newsdesk/internal/config"
	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/internal/httpapi"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/internal/news"
	"github.com/samvad-hq/samvad-newsdesk/internal/summarize"
	"github.com/samvad-hq/samvad-newsdesk/pkg/feed"
	"github.com/samvad-hq/samvad-newsdesk/pkg/httpclient"
	"github.com/samvad-hq/samvad-newsdesk/pkg/llm"
	"github.com/samvad-hq/samvad-newsdesk/pkg/sources"
)

const shutdownTimeout = 10 * time.Second

// Server is the newsdesk runtime.
type Server struct {
	cfg      *config.Config
	log      logger.Logger
	news     *news.Service
	handler  http.Handler
	provider llm.Provider
	notifier *refreshNotifier
}

// NewServer builds every dependency from cfg. Nothing listens until Run.
func NewServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	registry, err := buildSourceRegistry(cfg, log)
	if err != nil {
		return nil, err
	}

	fetcher := feed.NewRSSFetcher(
		httpclient.NewRestyClient(0, httpclient.WithUserAgent(cfg.NewsUserAgent)),
		cfg.NewsTimeout,
		cfg.NewsRetry,
		cfg.NewsUserAgent,
	)
	agg := aggregator.NewService(fetcher, feed.NewNormalizer(nil), aggregator.Options{
		Concurrency:    cfg.NewsConcurrency,
		MaxPerSource:   cfg.NewsMaxPerSource,
		SourcePriority: cfg.DedupBySourcePriority,
	}, log)

	fanout, err := buildPublishers(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	notifier := newRefreshNotifier(fanout, cfg.PublishTimeout, log)

	newsCache := cache.New[[]domain.Article](nil)
	newsSvc := news.NewService(newsCache, agg, registry, notifier, news.Options{
		PageSize:     cfg.NewsPageSize,
		StrictTopics: cfg.ValidateTopicStrict,
		CacheTTL:     cfg.NewsCacheTTL,
	}, log)

	provider, err := llm.New(ctx, llm.Config{
		Provider:     cfg.AIProvider,
		APIKey:       cfg.AIAPIKey,
		GeminiAPIKey: cfg.GeminiAPIKey,
		Model:        cfg.AIModel,
		BaseURL:      cfg.AIBaseURL,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("init ai provider: %w", err), fanout.Close())
	}
	log.InfoObj("ai provider selected", "ai_provider", map[string]any{
		"name":           provider.Name(),
		"model":          provider.Model(),
		"allow_fallback": cfg.AIFallbackAllowed(),
	})

	summaryCache := cache.New[summarize.Entry](nil)
	summarizeSvc := summarize.NewService(provider, summaryCache, summarize.Options{
		MaxInputChars: cfg.MaxSummaryInputChars,
		CacheTTL:      cfg.SummarizeCacheTTL,
		Timeout:       cfg.SummarizeTimeout,
		DefaultLang:   cfg.DefaultSummaryLang,
		DefaultMode:   cfg.DefaultSummaryMode,
		AllowFallback: cfg.AIFallbackAllowed(),
	}, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.Deps{
		News:      newsSvc,
		Summarize: summarizeSvc,
		Stats: func() map[string]cache.Stats {
			return map[string]cache.Stats{
				"news":      newsCache.Stats(),
				"summaries": summaryCache.Stats(),
			}
		},
	}, httpapi.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		RateWindow:     cfg.AIRateWindow,
		RateMax:        cfg.AIRateMax,
	}, log)

	return &Server{
		cfg:      cfg,
		log:      log,
		news:     newsSvc,
		handler:  router,
		provider: provider,
		notifier: notifier,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Fetch runs one news request through the same service the HTTP route uses.
func (s *Server) Fetch(ctx context.Context, req news.Request) (news.Page, error) {
	return s.news.Get(ctx, req)
}

// Run serves HTTP on the configured port until ctx is cancelled, then drains
// in-flight requests and pending refresh events.
func (s *Server) Run(ctx context.Context) error {
	if s == nil || s.handler == nil {
		return errors.New("server is not initialized")
	}
	defer s.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("http server listening", "http_server", map[string]any{
			"addr": srv.Addr,
			"env":  s.cfg.Env,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.log.InfoObj("http server shutting down", "reason", ctx.Err().Error())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close waits for pending refresh events and releases provider and publisher clients.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.notifier != nil {
		errs = append(errs, s.notifier.Close())
	}
	if c, ok := s.provider.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if err := errors.Join(errs...); err != nil {
		s.log.ErrorObj("server close failed", "error", err.Error())
		return err
	}
	return nil
}

func buildSourceRegistry(cfg *config.Config, log logger.Logger) (*sources.Registry, error) {
	var layers []map[string][]sources.Source

	if cfg.NewsSourcesFile != "" {
		fromFile, err := sources.LoadFile(cfg.NewsSourcesFile)
		if err != nil {
			return nil, fmt.Errorf("load sources file: %w", err)
		}
		layers = append(layers, fromFile)
	}

	override, warnings := sources.ParseOverride(cfg.NewsSources)
	for _, w := range warnings {
		log.WarnObj("news source override ignored", "news_sources", w)
	}
	if override != nil {
		layers = append(layers, override)
	}

	reg := sources.NewRegistry(layers...)
	counts := make(map[string]int)
	for topic, list := range reg.All() {
		counts[topic] = len(list)
	}
	log.InfoObj("source registry loaded", "sources_meta", map[string]any{
		"file":   cfg.NewsSourcesFile,
		"topics": counts,
	})
	return reg, nil
}
