package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
)

func TestMockSummaryBullets(t *testing.T) {
	text := "One. Two! Three? Four. Five. Six. Seven."
	res := MockSummary(text, ModeBullets)
	want := []string{"One.", "Two!", "Three?", "Four.", "Five."}
	if len(res.Items) != len(want) {
		t.Fatalf("expected %d items, got %#v", len(want), res.Items)
	}
	for i := range want {
		if res.Items[i] != want[i] {
			t.Fatalf("item %d: want %q got %q", i, want[i], res.Items[i])
		}
	}
}

func TestMockSummaryParagraph(t *testing.T) {
	res := MockSummary("Prices rose 3.5 percent. Markets fell.", ModeParagraph)
	if res.Text != "Prices rose 3.5 percent. Markets fell." {
		t.Fatalf("unexpected paragraph %q", res.Text)
	}
	if got := Content(ModeParagraph, res); got != res.Text {
		t.Fatalf("paragraph content should be a string, got %#v", got)
	}
}

func TestMockIsDeterministic(t *testing.T) {
	m := NewMock("")
	a, _ := m.Summarize(context.Background(), "Alpha beta. Gamma.", StyleHints{Mode: "bullets"})
	b, _ := m.Summarize(context.Background(), "Alpha beta. Gamma.", StyleHints{Mode: "bullets"})
	if strings.Join(a.Items, "|") != strings.Join(b.Items, "|") {
		t.Fatalf("mock output differs between calls")
	}
	if m.Name() != "mock" || m.Model() != "mock" {
		t.Fatalf("unexpected mock identity %s/%s", m.Name(), m.Model())
	}
}

func TestParseBullets(t *testing.T) {
	got := ParseBullets("- First point\n\n* Second\n3. Third\n• Fourth\n3.5% growth continues")
	want := []string{"First point", "Second", "Third", "Fourth", "3.5% growth continues"}
	if len(got) != len(want) {
		t.Fatalf("unexpected bullets %#v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bullet %d: want %q got %q", i, want[i], got[i])
		}
	}
}

func TestBuildUserPrompt(t *testing.T) {
	p := buildUserPrompt("Body text", StyleHints{Mode: "paragraph", Lang: "vi", Title: "Headline", Topic: "finance"})
	for _, want := range []string{
		"Title: Headline",
		"Topic: finance.",
		"Style: Write one compact paragraph (~80–120 words).",
		"Write in vi.",
		"=== ARTICLE START ===\nBody text\n=== ARTICLE END ===",
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}

	auto := buildUserPrompt("x", StyleHints{Lang: "auto"})
	if !strings.Contains(auto, "Detect the input language") || !strings.Contains(auto, "3–5 concise bullet points") {
		t.Fatalf("unexpected auto prompt:\n%s", auto)
	}
	if strings.Contains(auto, "Title:") || strings.Contains(auto, "Topic:") {
		t.Fatalf("empty hints should be omitted:\n%s", auto)
	}
}

func TestOpenAISummarize(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  - a\n- b  "}}],"usage":{"prompt_tokens":10,"completion_tokens":4,"total_tokens":14}}`))
	}))
	defer srv.Close()

	p, err := NewOpenAI("sk-test", "", srv.URL+"/")
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	res, err := p.Summarize(context.Background(), "text", StyleHints{Mode: ModeBullets, Lang: "en"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if auth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if got.Model != "gpt-4o-mini" || got.Temperature != 0.2 || len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("unexpected request %+v", got)
	}
	if res.Usage.TotalTokens != 14 {
		t.Fatalf("unexpected usage %+v", res.Usage)
	}
	items, ok := Content(ModeBullets, res).([]string)
	if !ok || len(items) != 2 || items[1] != "b" {
		t.Fatalf("unexpected content %#v", Content(ModeBullets, res))
	}
}

func TestOpenAIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"auth"}}`))
	}))
	defer srv.Close()

	p, _ := NewOpenAI("sk-test", "m", srv.URL)
	_, err := p.Summarize(context.Background(), "text", StyleHints{})
	if err == nil || !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("expected api error, got %v", err)
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	}))
	defer empty.Close()

	p, _ = NewOpenAI("sk-test", "m", empty.URL)
	if _, err := p.Summarize(context.Background(), "text", StyleHints{}); err == nil {
		t.Fatalf("expected empty completion error")
	}
}

func TestOpenAIHonoursDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	p, _ := NewOpenAI("sk-test", "m", srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Summarize(ctx, "text", StyleHints{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		cfg  Config
		name string
	}{
		{Config{Provider: "mock", APIKey: "k"}, ProviderMock},
		{Config{}, ProviderFallback},
		{Config{Provider: "openai"}, ProviderFallback},
		{Config{APIKey: "k"}, ProviderOpenAI},
		{Config{Provider: "OpenAI", APIKey: "k"}, ProviderOpenAI},
	}
	for _, tc := range cases {
		p, err := New(ctx, tc.cfg)
		if err != nil {
			t.Fatalf("New(%+v): %v", tc.cfg, err)
		}
		if p.Name() != tc.name {
			t.Fatalf("New(%+v) picked %q, want %q", tc.cfg, p.Name(), tc.name)
		}
	}

	if _, err := New(ctx, Config{Provider: "llama"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestGeminiResult(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("- one\n"), genai.Text("- two")}},
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 7, CandidatesTokenCount: 3, TotalTokenCount: 10},
	}
	res, err := geminiResult(resp)
	if err != nil {
		t.Fatalf("geminiResult: %v", err)
	}
	if res.Usage.TotalTokens != 10 || res.Usage.PromptTokens != 7 {
		t.Fatalf("unexpected usage %+v", res.Usage)
	}
	if items := ParseBullets(res.Text); len(items) != 2 {
		t.Fatalf("unexpected items %#v", items)
	}

	if _, err := geminiResult(&genai.GenerateContentResponse{}); err == nil {
		t.Fatalf("expected error for empty response")
	}
}
