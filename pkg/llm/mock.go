package llm

import (
	"context"
	"strings"
	"unicode"
)

const mockSentences = 5

// Mock echoes the leading sentences of the input. It never fails.
type Mock struct {
	name string
}

// NewMock returns a mock reporting name as its provider ("mock" or "fallback").
func NewMock(name string) *Mock {
	if name == "" {
		name = "mock"
	}
	return &Mock{name: name}
}

// Name returns the provider name given to NewMock.
func (m *Mock) Name() string { return m.name }

// Model always returns "mock".
func (m *Mock) Model() string { return "mock" }

// Summarize returns the leading sentences of text shaped by hints.
func (m *Mock) Summarize(ctx context.Context, text string, hints StyleHints) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return MockSummary(text, hints.Mode), nil
}

// MockSummary is the deterministic stand-in summary for text: its first five
// sentences as a list, or joined into one paragraph.
func MockSummary(text, mode string) Result {
	sentences := splitSentences(text)
	if len(sentences) > mockSentences {
		sentences = sentences[:mockSentences]
	}
	if sentences == nil {
		sentences = []string{}
	}
	if NormalizeMode(mode) == ModeParagraph {
		return Result{Text: strings.Join(sentences, " ")}
	}
	return Result{Items: sentences}
}

// splitSentences breaks after ., ! or ? when followed by whitespace.
func splitSentences(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}
