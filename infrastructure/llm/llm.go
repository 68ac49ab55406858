// Package llm wraps the LLM collaborator used by the optional document
// quality analysis. Single attempt, no retries; callers treat failures
// as best-effort.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dealdeck/dataroom-api/infrastructure/config"
	pkgerrors "github.com/pkg/errors"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	MaxTokens   int
	Temperature float64
}

type Result struct {
	Content  string
	Provider string
}

type Client interface {
	Complete(ctx context.Context, messages []Message, opts Options) (*Result, error)
}

// HTTPClient speaks the OpenAI-compatible chat-completions wire shape.
type HTTPClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(cfg *config.Config) *HTTPClient {
	timeout := cfg.LLM.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		endpoint: cfg.LLM.Endpoint,
		apiKey:   cfg.LLM.APIKey,
		model:    cfg.LLM.Model,
		client:   &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *HTTPClient) Complete(ctx context.Context, messages []Message, opts Options) (*Result, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to encode llm request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build llm request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "llm request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read llm response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm provider returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to decode llm response")
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("llm provider returned no choices")
	}

	return &Result{
		Content:  parsed.Choices[0].Message.Content,
		Provider: parsed.Model,
	}, nil
}
