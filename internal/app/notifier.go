package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/config"
	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/pkg/publishers"
)

// eventPublisher is the part of publishers.Fanout the notifier needs.
type eventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
	Close() error
}

// refreshNotifier publishes topic.refreshed events off the request path.
type refreshNotifier struct {
	pub     eventPublisher
	timeout time.Duration
	now     func() time.Time
	log     logger.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func newRefreshNotifier(pub eventPublisher, timeout time.Duration, log logger.Logger) *refreshNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &refreshNotifier{pub: pub, timeout: timeout, now: time.Now, log: logger.Ensure(log)}
}

// TopicRefreshed returns immediately; delivery outlives the request context.
// Events arriving after Close has started are dropped.
func (n *refreshNotifier) TopicRefreshed(ctx context.Context, topic string, articles []domain.Article) {
	if n == nil || n.pub == nil || n.pub.Size() == 0 {
		return
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		n.log.WarnObj("refresh event dropped during shutdown", "refresh_event", map[string]any{
			"topic":         topic,
			"article_count": len(articles),
		})
		return
	}
	n.wg.Add(1)
	n.mu.Unlock()

	evt := publishers.NewTopicRefreshedEvent(topic, articles, n.now())
	ctx = context.WithoutCancel(ctx)

	go func() {
		defer n.wg.Done()
		pubCtx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()

		start := time.Now()
		delivered, err := n.pub.Publish(pubCtx, evt)
		meta := map[string]any{
			"topic":         topic,
			"article_count": evt.ArticleCount,
			"delivered":     delivered,
			"publishers":    n.pub.Size(),
			"elapsed_ms":    time.Since(start).Milliseconds(),
		}
		if err != nil {
			meta["error"] = err.Error()
			n.log.WarnObj("refresh event delivery incomplete", "refresh_event", meta)
			return
		}
		n.log.DebugObj("refresh event delivered", "refresh_event", meta)
	}()
}

// Close stops accepting events, waits for in-flight deliveries, then closes
// the publishers. Later calls are no-ops.
func (n *refreshNotifier) Close() error {
	if n == nil || n.pub == nil {
		return nil
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()

	n.wg.Wait()
	return n.pub.Close()
}

// buildPublishers returns an empty fanout when no publishers file is configured.
func buildPublishers(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		log.InfoObj("no publishers configured", "publishers_meta", map[string]any{"count": 0})
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	clients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	if len(clients) == 0 && len(reg.All()) > 0 {
		log.WarnObj("all publishers disabled", "publishers_file", cfg.PublishersFile)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(clients), nil
}
