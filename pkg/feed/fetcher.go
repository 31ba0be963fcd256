package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
)

const acceptHeader = "application/rss+xml, application/xml, text/xml, */*"

// FetchError reports a source that failed on every attempt.
type FetchError struct {
	Source   string
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s) failed after %d attempt(s): %v", e.Source, e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the last attempt hit its deadline.
func (e *FetchError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// RSSFetcher downloads feeds over HTTP and parses RSS, Atom or JSON Feed documents.
type RSSFetcher struct {
	client    HTTPClient
	timeout   time.Duration
	retries   int
	userAgent string
}

// NewRSSFetcher builds a fetcher. Each attempt gets its own timeout and
// retries are immediate.
func NewRSSFetcher(client HTTPClient, timeout time.Duration, retries int, userAgent string) *RSSFetcher {
	if retries < 0 {
		retries = 0
	}
	return &RSSFetcher{client: client, timeout: timeout, retries: retries, userAgent: userAgent}
}

// Fetch returns the raw items of src or a *FetchError once all attempts failed.
func (f *RSSFetcher) Fetch(ctx context.Context, src domain.Source) ([]RawItem, error) {
	if f == nil || f.client == nil {
		return nil, errors.New("rss fetcher is not initialized")
	}

	attempts := f.retries + 1
	var lastErr error
	for i := 0; i < attempts; i++ {
		items, err := f.attempt(ctx, src)
		if err == nil {
			return items, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			attempts = i + 1
			break
		}
	}

	return nil, &FetchError{Source: src.Name, URL: src.URL, Attempts: attempts, Err: lastErr}
}

func (f *RSSFetcher) attempt(parent context.Context, src domain.Source) ([]RawItem, error) {
	ctx := parent
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, f.timeout)
		defer cancel()
	}

	headers := map[string]string{"Accept": acceptHeader}
	if f.userAgent != "" {
		headers["User-Agent"] = f.userAgent
	}

	resp, err := f.client.Get(ctx, src.URL, headers)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request %s: %w", src.URL, ctx.Err())
		}
		return nil, fmt.Errorf("request %s: %w", src.URL, err)
	}

	if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s returned status %d body: %s", src.URL, code, responseSnippet(resp.Body()))
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s feed: %w", src.Name, err)
	}

	items := make([]RawItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		items = append(items, rawItemFromGofeed(it))
	}
	return items, nil
}

func responseSnippet(body []byte) string {
	const maxLen = 256
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
