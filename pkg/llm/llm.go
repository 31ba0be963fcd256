// Package llm contains the summarization providers: an OpenAI-compatible chat
// client, a Gemini client and a deterministic mock.
package llm

import (
	"context"
	"strings"
)

// Summary modes.
const (
	ModeBullets   = "bullets"
	ModeParagraph = "paragraph"
)

// LangAuto asks the provider to answer in the input's language.
const LangAuto = "auto"

// StyleHints shape the generated summary.
type StyleHints struct {
	Mode  string
	Lang  string
	Title string
	Topic string
}

// Usage mirrors OpenAI token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is a provider's answer. Providers that already know the list
// structure fill Items; otherwise bullets are parsed out of Text.
type Result struct {
	Text  string
	Items []string
	Usage Usage
}

// Provider summarizes text. Implementations must honour ctx cancellation.
type Provider interface {
	Name() string
	Model() string
	Summarize(ctx context.Context, text string, hints StyleHints) (Result, error)
}

// NormalizeMode maps anything other than "paragraph" to bullets.
func NormalizeMode(mode string) string {
	if strings.EqualFold(strings.TrimSpace(mode), ModeParagraph) {
		return ModeParagraph
	}
	return ModeBullets
}
