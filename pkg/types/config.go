// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout for a single backend call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "answer-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the evidence retrieval stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of evidence items to return (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SearXNGURL is the base URL of the SearXNG instance. Empty disables
	// the SearXNG backend.
	SearXNGURL string `json:"searxng_url" yaml:"searxng_url"`

	// SearXNGDisabledEngines lists SearXNG-internal engines to exclude,
	// passed through on each request.
	SearXNGDisabledEngines []string `json:"searxng_disabled_engines,omitempty" yaml:"searxng_disabled_engines,omitempty"`

	// BraveAPIKey enables the Brave web search backend when set.
	BraveAPIKey string `json:"brave_api_key,omitempty" yaml:"brave_api_key,omitempty"`

	// AllowBackends restricts retrieval to the named backends. Empty allows all.
	AllowBackends []string `json:"allow_backends,omitempty" yaml:"allow_backends,omitempty"`

	// DenyBackends excludes the named backends from retrieval.
	DenyBackends []string `json:"deny_backends,omitempty" yaml:"deny_backends,omitempty"`

	// MaxRetries is the number of retry attempts per backend call (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryBaseDelay is the starting backoff delay, doubled each attempt (default 500ms).
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay"`

	// OverallTimeout bounds one whole retrieval across all backend calls
	// (default 30s). Results already collected when it fires are kept.
	OverallTimeout time.Duration `json:"overall_timeout" yaml:"overall_timeout"`

	// MaxSnippetLength caps snippet text during normalization (default 300).
	MaxSnippetLength int `json:"max_snippet_length" yaml:"max_snippet_length"`
}

// RankConfig holds scoring weights and the context budget for the ranker.
type RankConfig struct {
	// MaxContextUnits is the evidence budget in estimated tokens (default 3000).
	MaxContextUnits int `json:"max_context_units" yaml:"max_context_units"`

	// TitleMatchWeight scores each query term found in the title (default 3.0).
	TitleMatchWeight float64 `json:"title_match_weight" yaml:"title_match_weight"`

	// SnippetMatchWeight scores each query term found in the snippet (default 1.0).
	SnippetMatchWeight float64 `json:"snippet_match_weight" yaml:"snippet_match_weight"`

	// ExactPhraseBonus rewards the full query appearing verbatim in the title (default 5.0).
	ExactPhraseBonus float64 `json:"exact_phrase_bonus" yaml:"exact_phrase_bonus"`

	// DomainAuthorityBonus rewards results from TrustedDomains (default 1.5).
	DomainAuthorityBonus float64 `json:"domain_authority_bonus" yaml:"domain_authority_bonus"`

	// RecencyBonus rewards fresh results for time-sensitive queries (default 1.0).
	RecencyBonus float64 `json:"recency_bonus" yaml:"recency_bonus"`

	// TrustedDomains is the high-authority domain allow-list
	// (e.g. "wikipedia.org", "reuters.com").
	TrustedDomains []string `json:"trusted_domains,omitempty" yaml:"trusted_domains,omitempty"`
}

// LLMConfig holds settings for the language model endpoint.
type LLMConfig struct {
	// URL is the OpenAI-compatible chat completions endpoint
	// (e.g. "http://localhost:1235/v1/chat/completions").
	URL string `json:"url" yaml:"url"`

	// Model is the model identifier sent with each request.
	Model string `json:"model" yaml:"model"`

	// APIKey is an optional bearer token for hosted endpoints.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature is the sampling temperature (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens caps the generated output size (default 2000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Timeout bounds one generation call (default 120s). Generation is never
	// retried; on timeout the caller falls back to a fixed apology answer.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// SystemPrompt is used for answer-only generation.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`

	// SearchSystemPrompt is used when retrieved evidence accompanies the query.
	SearchSystemPrompt string `json:"search_system_prompt,omitempty" yaml:"search_system_prompt,omitempty"`
}

// CacheConfig holds settings for the answer cache store.
type CacheConfig struct {
	// Enabled turns caching on (default true).
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding the cache database (default "cache").
	Dir string `json:"dir" yaml:"dir"`

	// ShortTTL applies to time-sensitive queries (default 1h).
	ShortTTL time.Duration `json:"short_ttl" yaml:"short_ttl"`

	// DefaultTTL applies when no other tier matches (default 24h).
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl"`

	// StaticTTL applies to static-fact queries (default 720h).
	StaticTTL time.Duration `json:"static_ttl" yaml:"static_ttl"`

	// MaxEntries triggers pruning of the oldest rows when exceeded (default 1000).
	MaxEntries int `json:"max_entries" yaml:"max_entries"`

	// CleanupOnStart removes expired rows when the store opens (default true).
	CleanupOnStart bool `json:"cleanup_on_start" yaml:"cleanup_on_start"`
}

// CitationConfig holds settings for citation verification.
type CitationConfig struct {
	// MaxSources caps the displayed source list (default 5).
	MaxSources int `json:"max_sources" yaml:"max_sources"`
}

// Config groups all stage configurations for the pipeline.
type Config struct {
	Search   SearchConfig   `json:"search" yaml:"search"`
	Rank     RankConfig     `json:"rank" yaml:"rank"`
	LLM      LLMConfig      `json:"llm" yaml:"llm"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
	Citation CitationConfig `json:"citation" yaml:"citation"`
}
