// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm generates answer text through an OpenAI-compatible chat
// completions endpoint. One request per answer; a slow model surfaces as
// ErrTimeout rather than being retried.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// ErrTimeout indicates the model did not respond within the configured
// generation timeout.
var ErrTimeout = errors.New("generation timed out")

// Client calls a chat completions endpoint such as llama.cpp, vLLM, or any
// OpenAI-compatible server.
type Client struct {
	cfg    types.LLMConfig
	client *http.Client
}

// NewClient returns a client for cfg. The generation timeout is enforced
// per call, not on the shared HTTP client, so a caller-supplied context can
// still cancel earlier.
func NewClient(cfg types.LLMConfig) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces answer text for the user query. When contextBlock is
// non-empty it is appended to the search-aware system prompt so the model
// answers from the retrieved evidence; otherwise the plain system prompt is
// used and the model answers from its own knowledge.
func (c *Client) Generate(ctx context.Context, query, contextBlock string) (string, error) {
	system := c.cfg.SystemPrompt
	if contextBlock != "" {
		system = c.cfg.SearchSystemPrompt + "\n\n" + contextBlock
	}

	body := chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: query},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("calling chat completions: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("reading chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions returned HTTP %d: %s",
			resp.StatusCode, truncateForError(data))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("chat completions error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat response contains no choices")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat response contains empty content")
	}
	return text, nil
}

func truncateForError(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
