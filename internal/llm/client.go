// Package llm adapts the text-generation service: grounded answers,
// contextual answers and the short judgments used by the chat flow.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cswnn/Capstone-Homefix2/internal/domain"
	"github.com/cswnn/Capstone-Homefix2/internal/metrics"
)

// Request is one single-turn chat completion.
type Request struct {
	Model       string
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Completer returns the completion text for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config holds client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	api *openai.Client
}

// NewClient creates a new LLM client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ConfigError("API key is required", nil)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{api: openai.NewClientWithConfig(oc)}, nil
}

// Complete sends req once and returns the trimmed completion. There are no
// retries; failures are GenerationErrors.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	metrics.ObserveExternalCall("llm", start, err)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", domain.GenerationError(fmt.Sprintf("completion failed with status %d", apiErr.HTTPStatusCode), err)
		}
		return "", domain.GenerationError("completion failed", err)
	}

	if len(resp.Choices) == 0 {
		return "", domain.GenerationError("completion returned no choices", nil)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ Completer = (*Client)(nil)
