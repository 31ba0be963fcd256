package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// Gemini summarizes through the Google Generative AI SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini opens a client authenticated with apiKey. Close releases it.
func NewGemini(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Name returns "gemini".
func (g *Gemini) Name() string { return "gemini" }

// Model returns the configured Gemini model.
func (g *Gemini) Model() string { return g.model }

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Summarize sends text with the shared system prompt and parses the reply.
func (g *Gemini) Summarize(ctx context.Context, text string, hints StyleHints) (Result, error) {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(summaryTemperature)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	resp, err := m.GenerateContent(ctx, genai.Text(buildUserPrompt(text, hints)))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("gemini request: %w", ctxErr)
		}
		return Result{}, fmt.Errorf("gemini request: %w", err)
	}
	return geminiResult(resp)
}

// geminiResult flattens the first candidate's text parts.
func geminiResult(resp *genai.GenerateContentResponse) (Result, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Result{}, errors.New("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	content := strings.TrimSpace(b.String())
	if content == "" {
		return Result{}, errors.New("empty completion from model")
	}

	res := Result{Text: content}
	if u := resp.UsageMetadata; u != nil {
		res.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return res, nil
}
