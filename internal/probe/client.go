// Package probe exercises a deployed OpenAI-compatible inference endpoint:
// health check, model discovery, single-turn completion, and multi-turn
// chat. Every call is independent and stateless aside from the shared base
// URL.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultModel is the model id the fine-tuning demo serves.
	DefaultModel = "gemma-2-27b-finetuned"

	probeTimeout    = 10 * time.Second
	generateTimeout = 60 * time.Second
)

// defaultStop mirrors the stop sequences the serving config uses for
// instruction-formatted prompts.
var defaultStop = []string{"\n\n", "###"}

type Client struct {
	client *resty.Client
	model  string
}

// NewClient returns a probe bound to baseURL (e.g. "http://10.0.0.1:8000").
// An empty model falls back to DefaultModel.
func NewClient(baseURL, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client: resty.New().SetBaseURL(baseURL),
		model:  model,
	}
}

// Health reports whether the endpoint answers GET /health with HTTP 200.
// Any other status or a transport fault yields false, never an error.
func (c *Client) Health(ctx context.Context) bool {
	reqCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	res, err := c.client.R().SetContext(reqCtx).Get("/health")
	if err != nil {
		slog.Error("health check failed", "error", err)
		return false
	}
	if res.StatusCode() != 200 {
		slog.Error("health check failed", "status_code", res.StatusCode())
		return false
	}
	return true
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ListModels returns the ids of the models the endpoint serves.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	res, err := c.client.R().
		SetContext(reqCtx).
		SetResult(&modelsResponse{}).
		Get("/v1/models")
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("failed to list models: status %d: %s", res.StatusCode(), res.String())
	}

	models := res.Result().(*modelsResponse)
	ids := make([]string, 0, len(models.Data))
	for _, model := range models.Data {
		ids = append(ids, model.ID)
	}
	return ids, nil
}

type completionRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Complete generates text for a single prompt via POST /v1/completions. A
// non-200 response or transport fault logs a diagnostic and returns the
// empty string; it never returns an error.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) string {
	reqCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	res, err := c.client.R().
		SetContext(reqCtx).
		SetHeader("Content-Type", "application/json").
		SetBody(completionRequest{
			Model:       c.model,
			Prompt:      prompt,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			Stop:        defaultStop,
		}).
		SetResult(&completionResponse{}).
		Post("/v1/completions")
	if err != nil {
		slog.Error("completion request failed", "error", err)
		return ""
	}
	if !res.IsSuccess() {
		slog.Error("completion request failed", "status_code", res.StatusCode(), "body", res.String())
		return ""
	}

	result := res.Result().(*completionResponse)
	if len(result.Choices) == 0 {
		slog.Error("completion response contained no choices")
		return ""
	}
	return result.Choices[0].Text
}

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Chat generates a reply to a conversation via POST /v1/chat/completions,
// with the same failure contract as Complete.
func (c *Client) Chat(ctx context.Context, messages []Message, maxTokens int, temperature float64) string {
	reqCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	res, err := c.client.R().
		SetContext(reqCtx).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    messages,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		}).
		SetResult(&chatResponse{}).
		Post("/v1/chat/completions")
	if err != nil {
		slog.Error("chat completion failed", "error", err)
		return ""
	}
	if !res.IsSuccess() {
		slog.Error("chat completion failed", "status_code", res.StatusCode(), "body", res.String())
		return ""
	}

	result := res.Result().(*chatResponse)
	if len(result.Choices) == 0 {
		slog.Error("chat response contained no choices")
		return ""
	}
	return result.Choices[0].Message.Content
}
