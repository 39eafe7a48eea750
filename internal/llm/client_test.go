// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

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

	"github.com/pdiddy/answer-engine/pkg/types"
)

func completionHandler(t *testing.T, capture *chatRequest, reply string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}
}

func TestGenerateWithoutContext(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(completionHandler(t, &got, "Recursion is self-reference."))
	defer server.Close()

	c := NewClient(types.LLMConfig{
		URL:          server.URL + "/v1/chat/completions",
		Model:        "test-model",
		SystemPrompt: "You are a helpful assistant.",
		Temperature:  0.7,
	})

	text, err := c.Generate(context.Background(), "Explain recursion", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "Recursion is self-reference." {
		t.Errorf("unexpected text %q", text)
	}
	if got.Model != "test-model" {
		t.Errorf("model = %q", got.Model)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(got.Messages))
	}
	if got.Messages[0].Content != "You are a helpful assistant." {
		t.Errorf("system prompt = %q", got.Messages[0].Content)
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "Explain recursion" {
		t.Errorf("user message = %+v", got.Messages[1])
	}
}

func TestGenerateWithContextUsesSearchPrompt(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(completionHandler(t, &got, "Answer from evidence [1]."))
	defer server.Close()

	c := NewClient(types.LLMConfig{
		URL:                server.URL + "/v1/chat/completions",
		SystemPrompt:       "plain",
		SearchSystemPrompt: "Answer using only the provided results.",
	})

	_, err := c.Generate(context.Background(), "who is the ceo", "[1] Some result\n    Source: https://example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	system := got.Messages[0].Content
	if !strings.HasPrefix(system, "Answer using only the provided results.") {
		t.Errorf("search prompt not used: %q", system)
	}
	if !strings.Contains(system, "https://example.com") {
		t.Errorf("context block missing from system message: %q", system)
	}
}

func TestGenerateSendsAuthHeader(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "ok"}}},
		})
	}))
	defer server.Close()

	c := NewClient(types.LLMConfig{URL: server.URL, APIKey: "sk-test"})
	if _, err := c.Generate(context.Background(), "q", ""); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if auth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestGenerateTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := NewClient(types.LLMConfig{URL: server.URL, Timeout: 20 * time.Millisecond})
	_, err := c.Generate(context.Background(), "q", "")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestGenerateHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(types.LLMConfig{URL: server.URL})
	_, err := c.Generate(context.Background(), "q", "")
	if err == nil || !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("err = %v, want HTTP 500", err)
	}
}

func TestGenerateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	c := NewClient(types.LLMConfig{URL: server.URL})
	_, err := c.Generate(context.Background(), "q", "")
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Errorf("err = %v, want no choices", err)
	}
}
