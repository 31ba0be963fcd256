package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/pkg/publishers"
)

type recordingPublisher struct {
	mu     sync.Mutex
	size   int
	events []publishers.Event
	ctxErr error
	err    error
	closed bool
}

func (r *recordingPublisher) Publish(ctx context.Context, evt publishers.Event) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	r.ctxErr = ctx.Err()
	if r.err != nil {
		return 0, r.err
	}
	return r.size, nil
}

func (r *recordingPublisher) Size() int { return r.size }

func (r *recordingPublisher) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func TestRefreshNotifierPublishesAfterRequestEnds(t *testing.T) {
	pub := &recordingPublisher{size: 1}
	n := newRefreshNotifier(pub, time.Second, logger.NopLogger{})
	n.now = func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.FixedZone("X", 3600)) }

	ctx, cancel := context.WithCancel(context.Background())
	n.TopicRefreshed(ctx, "world", []domain.Article{{ID: "a"}, {ID: "b"}})
	cancel()

	if err := n.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected one event, got %d", len(pub.events))
	}
	evt := pub.events[0]
	if evt.Type != publishers.EventTopicRefreshed || evt.Topic != "world" || evt.ArticleCount != 2 {
		t.Fatalf("unexpected event %#v", evt)
	}
	if evt.RefreshedAt.Location() != time.UTC {
		t.Fatalf("refreshed_at should be UTC, got %v", evt.RefreshedAt)
	}
	if pub.ctxErr != nil {
		t.Fatalf("publish context should not inherit request cancellation, got %v", pub.ctxErr)
	}
	if !pub.closed {
		t.Fatalf("publishers should be closed")
	}
}

func TestRefreshNotifierSkipsWithoutPublishers(t *testing.T) {
	pub := &recordingPublisher{size: 0}
	n := newRefreshNotifier(pub, 0, nil)
	n.TopicRefreshed(context.Background(), "tech", nil)
	_ = n.Close()

	if len(pub.events) != 0 {
		t.Fatalf("no event expected when nothing is configured")
	}
}

func TestRefreshNotifierSwallowsFailures(t *testing.T) {
	pub := &recordingPublisher{size: 2, err: errors.New("queue down")}
	n := newRefreshNotifier(pub, time.Second, logger.NopLogger{})
	n.TopicRefreshed(context.Background(), "tech", []domain.Article{{ID: "a"}})

	if err := n.Close(); err != nil {
		t.Fatalf("delivery failures must not surface on Close: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected delivery attempt")
	}
}

func TestRefreshNotifierDropsEventsAfterClose(t *testing.T) {
	pub := &recordingPublisher{size: 1}
	n := newRefreshNotifier(pub, time.Second, logger.NopLogger{})

	if err := n.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	n.TopicRefreshed(context.Background(), "tech", []domain.Article{{ID: "late"}})
	if err := n.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if len(pub.events) != 0 {
		t.Fatalf("events after Close must be dropped, got %d", len(pub.events))
	}
}

func TestRefreshNotifierConcurrentCloseAndRefresh(t *testing.T) {
	pub := &recordingPublisher{size: 1}
	n := newRefreshNotifier(pub, time.Second, logger.NopLogger{})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.TopicRefreshed(context.Background(), "tech", []domain.Article{{ID: "a"}})
		}()
	}
	if err := n.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	pub.mu.Lock()
	atClose := len(pub.events)
	pub.mu.Unlock()

	wg.Wait()
	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.events) != atClose {
		t.Fatalf("no delivery may start once Close returned: %d then %d", atClose, len(pub.events))
	}
}
