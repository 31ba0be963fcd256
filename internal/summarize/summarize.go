// Package summarize validates summarize requests, serves repeated requests from
// a short-TTL cache and otherwise delegates to the configured LLM provider.
package summarize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samvad-hq/samvad-newsdesk/internal/apierr"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/pkg/llm"
)

// Request is the POST /api/v1/summarize body.
type Request struct {
	Text  string `json:"text"`
	Lang  string `json:"lang,omitempty"`
	Mode  string `json:"mode,omitempty"`
	Title string `json:"title,omitempty"`
	Topic string `json:"topic,omitempty"`
}

// Meta describes how a response was produced.
type Meta struct {
	Hash      string `json:"hash"`
	Provider  string `json:"provider"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// Response is the summarize endpoint body. Content is []string for bullets and
// string for paragraph mode.
type Response struct {
	Content any       `json:"content"`
	Mode    string    `json:"mode"`
	Lang    string    `json:"lang"`
	Model   string    `json:"model"`
	Cached  bool      `json:"cached"`
	Usage   llm.Usage `json:"usage"`
	Meta    Meta      `json:"meta"`
}

// Entry is what the summary cache keeps per key.
type Entry struct {
	Content  any
	Usage    llm.Usage
	Provider string
}

// Cache stores summaries keyed by sum:{model}:{lang}:{mode}:{sha256}.
type Cache interface {
	Get(key string) (Entry, bool)
	Set(key string, value Entry, ttl time.Duration)
}

// Options configures a Service.
type Options struct {
	MaxInputChars int
	CacheTTL      time.Duration
	Timeout       time.Duration
	DefaultLang   string
	DefaultMode   string
	// AllowFallback answers provider failures with the mock summary.
	AllowFallback bool
}

// Service runs the validate, lookup, call, store sequence. No retries.
type Service struct {
	provider llm.Provider
	cache    Cache
	opts     Options
	log      logger.Logger
	now      func() time.Time
}

// NewService fills zero Options with defaults and wires the provider and cache.
func NewService(provider llm.Provider, cache Cache, opts Options, log logger.Logger) *Service {
	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = 8000
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 600 * time.Second
	}
	if opts.DefaultLang == "" {
		opts.DefaultLang = "en"
	}
	if opts.DefaultMode == "" {
		opts.DefaultMode = llm.ModeBullets
	}
	return &Service{
		provider: provider,
		cache:    cache,
		opts:     opts,
		log:      logger.Ensure(log),
		now:      time.Now,
	}
}

// NormalizeText collapses whitespace and truncates to limit runes.
func NormalizeText(raw string, limit int) string {
	s := strings.Join(strings.Fields(raw), " ")
	if limit > 0 && utf8.RuneCountInString(s) > limit {
		s = string([]rune(s)[:limit])
	}
	return s
}

// CacheKey scopes a content hash by model, language and mode.
func CacheKey(model, lang, mode, normalized string) (key, hash string) {
	sum := sha256.Sum256([]byte(normalized))
	hash = hex.EncodeToString(sum[:])
	return fmt.Sprintf("sum:%s:%s:%s:%s", model, lang, mode, hash), hash
}

// Summarize validates req, serves from cache when possible and otherwise calls the provider.
func (s *Service) Summarize(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Response{}, apierr.InvalidInput("Field 'text' is required.")
	}
	if utf8.RuneCountInString(req.Text) > 3*s.opts.MaxInputChars {
		return Response{}, apierr.InputTooLarge("Text exceeds MAX_SUMMARY_INPUT_CHARS hard limit.")
	}

	lang := strings.TrimSpace(req.Lang)
	if lang == "" {
		lang = s.opts.DefaultLang
	}
	mode := req.Mode
	if strings.TrimSpace(mode) == "" {
		mode = s.opts.DefaultMode
	}
	mode = llm.NormalizeMode(mode)

	normalized := NormalizeText(req.Text, s.opts.MaxInputChars)
	model := s.provider.Model()
	key, hash := CacheKey(model, lang, mode, normalized)

	resp := Response{Mode: mode, Lang: lang, Model: model, Meta: Meta{Hash: hash}}

	if entry, ok := s.cache.Get(key); ok {
		resp.Content = entry.Content
		resp.Usage = entry.Usage
		resp.Cached = true
		resp.Meta.Provider = entry.Provider
		return resp, nil
	}

	hints := llm.StyleHints{Mode: mode, Lang: lang, Title: req.Title, Topic: req.Topic}
	started := s.now()
	res, err := s.call(ctx, normalized, hints)
	elapsed := s.now().Sub(started).Milliseconds()

	if err != nil {
		s.log.ErrorObj("summarize provider failed", "summarize_error", map[string]any{
			"provider":   s.provider.Name(),
			"model":      model,
			"elapsed_ms": elapsed,
			"fallback":   s.opts.AllowFallback,
			"error":      err.Error(),
		})
		if s.opts.AllowFallback {
			fb := llm.MockSummary(normalized, mode)
			resp.Content = llm.Content(mode, fb)
			resp.Meta.Provider = llm.ProviderFallback
			resp.Meta.ElapsedMs = elapsed
			return resp, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return Response{}, apierr.AIProviderTimeout(err)
		}
		return Response{}, apierr.AIProviderError(err)
	}

	resp.Content = llm.Content(mode, res)
	resp.Usage = res.Usage
	resp.Meta.Provider = s.provider.Name()
	resp.Meta.ElapsedMs = elapsed

	s.cache.Set(key, Entry{Content: resp.Content, Usage: resp.Usage, Provider: resp.Meta.Provider}, s.opts.CacheTTL)
	return resp, nil
}

func (s *Service) call(ctx context.Context, text string, hints llm.StyleHints) (llm.Result, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	res, err := s.provider.Summarize(ctx, text, hints)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return res, err
}
