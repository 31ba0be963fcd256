package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/samvad-newsdesk/internal/apierr"
	"github.com/samvad-hq/samvad-newsdesk/internal/cache"
	"github.com/samvad-hq/samvad-newsdesk/internal/domain"
	"github.com/samvad-hq/samvad-newsdesk/internal/news"
	"github.com/samvad-hq/samvad-newsdesk/internal/summarize"
	"github.com/samvad-hq/samvad-newsdesk/pkg/llm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeNews struct {
	last  news.Request
	page  news.Page
	err   error
	panic bool
}

func (f *fakeNews) Get(_ context.Context, req news.Request) (news.Page, error) {
	if f.panic {
		panic("something internal at 0xdeadbeef")
	}
	f.last = req
	return f.page, f.err
}

func newTestRouter(n NewsService, opts Options) *gin.Engine {
	sum := summarize.NewService(llm.NewMock("mock"), cache.New[summarize.Entry](nil), summarize.Options{MaxInputChars: 100}, nil)
	deps := Deps{
		News:      n,
		Summarize: sum,
		Stats: func() map[string]cache.Stats {
			return map[string]cache.Stats{"news": {Hits: 2, Misses: 1, Entries: 1}}
		},
	}
	return NewRouter(deps, opts, nil)
}

func do(r http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierr.Body {
	t.Helper()
	var body apierr.Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %q", w.Body.String())
	}
	return body
}

func TestHealthRoutes(t *testing.T) {
	r := newTestRouter(&fakeNews{}, Options{})
	for _, path := range []string{"/api/health", "/api/v1/health"} {
		w := do(r, http.MethodGet, path, "", nil)
		if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"ok":true}` {
			t.Fatalf("%s: unexpected response %d %s", path, w.Code, w.Body.String())
		}
		if w.Header().Get(requestIDHeader) == "" {
			t.Fatalf("%s: missing request id header", path)
		}
	}
}

func TestNewsRoute(t *testing.T) {
	n := &fakeNews{page: news.Page{Topic: "finance", Page: 2, PageSize: 30, Count: 1, Cache: "miss", Items: []domain.Article{{ID: "a"}}}}
	r := newTestRouter(n, Options{})

	w := do(r, http.MethodGet, "/api/v1/news?topic=finance&page=2abc&forceRefresh=1&pageSize=5&limit=7", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	if n.last.Topic != "finance" || n.last.Page != 2 || !n.last.ForceRefresh {
		t.Fatalf("query not forwarded correctly: %+v", n.last)
	}

	var page map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	for _, key := range []string{"topic", "page", "pageSize", "count", "cache", "items"} {
		if _, ok := page[key]; !ok {
			t.Fatalf("missing key %q in %s", key, w.Body.String())
		}
	}

	do(r, http.MethodGet, "/api/v1/news?forceRefresh=true", "", nil)
	if n.last.ForceRefresh || n.last.Page != 1 {
		t.Fatalf("only forceRefresh=1 forces a refresh and page defaults to 1: %+v", n.last)
	}
}

func TestNewsRouteErrors(t *testing.T) {
	r := newTestRouter(&fakeNews{err: apierr.UpstreamFetchFailed()}, Options{})
	w := do(r, http.MethodGet, "/api/v1/news?topic=tech", "", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Error != "UPSTREAM_FETCH_FAILED" || body.Message == "" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestSummarizeRoute(t *testing.T) {
	r := newTestRouter(&fakeNews{}, Options{RateMax: 100})

	w := do(r, http.MethodPost, "/api/v1/summarize", `{"text":"One. Two. Three.","mode":"paragraph"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	var resp summarize.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Content != "One. Two. Three." || resp.Meta.Provider != "mock" || resp.Cached {
		t.Fatalf("unexpected response %+v", resp)
	}

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty text", `{"text":"  "}`, http.StatusBadRequest, apierr.CodeInvalidInput},
		{"missing body", "", http.StatusBadRequest, apierr.CodeInvalidInput},
		{"bad json", `{"text":`, http.StatusBadRequest, apierr.CodeInvalidInput},
		{"wrong type", `{"text":42}`, http.StatusBadRequest, apierr.CodeInvalidInput},
		{"too long", `{"text":"` + strings.Repeat("a", 301) + `"}`, http.StatusRequestEntityTooLarge, apierr.CodeInputTooLarge},
		{"body too large", `{"text":"` + strings.Repeat("a", 2<<20) + `"}`, http.StatusRequestEntityTooLarge, apierr.CodeInputTooLarge},
	}
	for _, tc := range cases {
		w := do(r, http.MethodPost, "/api/v1/summarize", tc.body, nil)
		if w.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.status, w.Code, w.Body.String())
		}
		if body := decodeError(t, w); body.Error != tc.code {
			t.Fatalf("%s: expected %s, got %+v", tc.name, tc.code, body)
		}
	}
}

func TestSummarizeRateLimited(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newTestRouter(&fakeNews{}, Options{RateMax: 5, RateWindow: time.Minute, Now: func() time.Time { return now }})

	for i := 0; i < 5; i++ {
		if w := do(r, http.MethodPost, "/api/v1/summarize", `{"text":"Hi."}`, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	now = now.Add(15 * time.Second)
	w := do(r, http.MethodPost, "/api/v1/summarize", `{"text":"Hi."}`, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on sixth request, got %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Error != "RATE_LIMITED" || body.Message != "Too many requests, please try later." {
		t.Fatalf("unexpected body %+v", body)
	}
	if w.Header().Get("Retry-After") != "45" {
		t.Fatalf("unexpected Retry-After %q", w.Header().Get("Retry-After"))
	}

	if w := do(r, http.MethodGet, "/api/v1/news", "", nil); w.Code != http.StatusOK {
		t.Fatalf("news must not be rate limited, got %d", w.Code)
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	r := newTestRouter(&fakeNews{}, Options{})
	w := do(r, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Error != apierr.CodeNotFound {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestPanicIsJSON500(t *testing.T) {
	r := newTestRouter(&fakeNews{panic: true}, Options{})
	w := do(r, http.MethodGet, "/api/v1/news", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Error != apierr.CodeInternal || strings.Contains(body.Message, "deadbeef") {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestCORS(t *testing.T) {
	r := newTestRouter(&fakeNews{}, Options{AllowedOrigins: []string{"https://app.example"}})

	w := do(r, http.MethodGet, "/api/health", "", map[string]string{"Origin": "https://app.example"})
	if w.Header().Get("Access-Control-Allow-Origin") != "https://app.example" {
		t.Fatalf("allowed origin not reflected: %v", w.Header())
	}

	w = do(r, http.MethodGet, "/api/health", "", map[string]string{"Origin": "https://evil.example"})
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("disallowed origin must not get CORS headers")
	}

	w = do(r, http.MethodOptions, "/api/v1/summarize", "", map[string]string{
		"Origin":                        "https://app.example",
		"Access-Control-Request-Method": "POST",
	})
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Fatalf("unexpected preflight response %d %v", w.Code, w.Header())
	}
}

func TestStatsRoute(t *testing.T) {
	r := newTestRouter(&fakeNews{}, Options{})
	w := do(r, http.MethodGet, "/api/v1/stats", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"hits":2`) {
		t.Fatalf("unexpected stats response %d %s", w.Code, w.Body.String())
	}
}

func TestRequestIDPropagated(t *testing.T) {
	r := newTestRouter(&fakeNews{}, Options{})
	w := do(r, http.MethodGet, "/api/health", "", map[string]string{requestIDHeader: "abc-123"})
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected caller request id, got %q", got)
	}
}
