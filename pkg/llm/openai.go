package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-newsdesk/pkg/httpclient"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	summaryTemperature   = 0.2
)

// OpenAI talks to any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client *resty.Client
	apiKey string
	model  string
}

// NewOpenAI builds the chat completions provider. Deadlines come from the
// caller's context.
func NewOpenAI(apiKey, model, baseURL string) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAI{
		client: httpclient.NewRestyHTTPClient(0, httpclient.WithBaseURL(strings.TrimRight(baseURL, "/"))),
		apiKey: apiKey,
		model:  model,
	}, nil
}

// Name returns "openai".
func (o *OpenAI) Name() string { return "openai" }

// Model returns the configured chat model.
func (o *OpenAI) Model() string { return o.model }

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Summarize posts a chat completion request and parses the reply.
func (o *OpenAI) Summarize(ctx context.Context, text string, hints StyleHints) (Result, error) {
	body := chatRequest{
		Model:       o.model,
		Temperature: summaryTemperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(text, hints)},
		},
	}

	var (
		out    chatResponse
		apiErr chatError
	)
	resp, err := o.client.R().
		SetContext(ctx).
		SetAuthToken(o.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("openai request: %w", ctxErr)
		}
		return Result{}, fmt.Errorf("openai request: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error.Message != "" {
			return Result{}, fmt.Errorf("openai api error (%d): %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return Result{}, fmt.Errorf("openai api error (%d)", resp.StatusCode())
	}

	if len(out.Choices) == 0 {
		return Result{}, errors.New("openai returned no choices")
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return Result{}, errors.New("empty completion from model")
	}

	res := Result{Text: content}
	if out.Usage != nil {
		res.Usage = *out.Usage
	}
	return res, nil
}
