// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/answer-engine/internal/search"
	"github.com/pdiddy/answer-engine/pkg/types"
)

const defaultUserAgent = "answer-engine/0.1"

// defaultSystemPrompt is used for answer-only generation.
const defaultSystemPrompt = `You are a helpful assistant. Answer the user's question clearly and
concisely from your own knowledge.`

// defaultSearchSystemPrompt is used when retrieved evidence accompanies the
// query. The evidence block is appended below it.
const defaultSearchSystemPrompt = `You are a helpful assistant with access to current web search results.
Answer the user's question using ONLY the search results below. Cite results
with their bracketed numbers, for example [1]. If the results do not contain
the answer, say so instead of guessing.`

// loadConfig assembles the pipeline configuration from viper, applying
// defaults for everything the config file and environment leave unset.
// Secrets loaded from .secrets/ back-fill the API keys.
func loadConfig() types.Config {
	v := viper.GetViper()

	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.timeout", 15*time.Second)
	v.SetDefault("search.overall_timeout", 30*time.Second)
	v.SetDefault("search.max_retries", 3)
	v.SetDefault("search.retry_base_delay", 500*time.Millisecond)
	v.SetDefault("search.max_snippet_length", 300)
	v.SetDefault("search.searxng_url", "http://localhost:8080")

	v.SetDefault("rank.max_context_units", 3000)
	v.SetDefault("rank.trusted_domains", []string{
		"wikipedia.org", "reuters.com", "apnews.com", "bbc.com",
		"nature.com", "arxiv.org", "github.com", "stackoverflow.com",
	})

	v.SetDefault("llm.url", "http://localhost:1235/v1/chat/completions")
	v.SetDefault("llm.model", "local-model")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.timeout", 120*time.Second)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dir", "cache")
	v.SetDefault("cache.short_ttl", time.Hour)
	v.SetDefault("cache.default_ttl", 24*time.Hour)
	v.SetDefault("cache.static_ttl", 720*time.Hour)
	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("cache.cleanup_on_start", true)

	v.SetDefault("citation.max_sources", 5)

	cfg := types.Config{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("search.timeout"),
				UserAgent: defaultUserAgent,
			},
			MaxResults:             v.GetInt("search.max_results"),
			SearXNGURL:             v.GetString("search.searxng_url"),
			SearXNGDisabledEngines: v.GetStringSlice("search.searxng_disabled_engines"),
			BraveAPIKey:            secretDefault("brave-api-key", v.GetString("search.brave_api_key")),
			AllowBackends:          v.GetStringSlice("search.allow_backends"),
			DenyBackends:           v.GetStringSlice("search.deny_backends"),
			MaxRetries:             v.GetInt("search.max_retries"),
			RetryBaseDelay:         v.GetDuration("search.retry_base_delay"),
			OverallTimeout:         v.GetDuration("search.overall_timeout"),
			MaxSnippetLength:       v.GetInt("search.max_snippet_length"),
		},
		Rank: types.RankConfig{
			MaxContextUnits:      v.GetInt("rank.max_context_units"),
			TitleMatchWeight:     v.GetFloat64("rank.title_match_weight"),
			SnippetMatchWeight:   v.GetFloat64("rank.snippet_match_weight"),
			ExactPhraseBonus:     v.GetFloat64("rank.exact_phrase_bonus"),
			DomainAuthorityBonus: v.GetFloat64("rank.domain_authority_bonus"),
			RecencyBonus:         v.GetFloat64("rank.recency_bonus"),
			TrustedDomains:       v.GetStringSlice("rank.trusted_domains"),
		},
		LLM: types.LLMConfig{
			URL:                v.GetString("llm.url"),
			Model:              v.GetString("llm.model"),
			APIKey:             secretDefault("llm-api-key", v.GetString("llm.api_key")),
			Temperature:        v.GetFloat64("llm.temperature"),
			MaxTokens:          v.GetInt("llm.max_tokens"),
			Timeout:            v.GetDuration("llm.timeout"),
			SystemPrompt:       v.GetString("llm.system_prompt"),
			SearchSystemPrompt: v.GetString("llm.search_system_prompt"),
		},
		Cache: types.CacheConfig{
			Enabled:        v.GetBool("cache.enabled"),
			Dir:            v.GetString("cache.dir"),
			ShortTTL:       v.GetDuration("cache.short_ttl"),
			DefaultTTL:     v.GetDuration("cache.default_ttl"),
			StaticTTL:      v.GetDuration("cache.static_ttl"),
			MaxEntries:     v.GetInt("cache.max_entries"),
			CleanupOnStart: v.GetBool("cache.cleanup_on_start"),
		},
		Citation: types.CitationConfig{
			MaxSources: v.GetInt("citation.max_sources"),
		},
	}

	if cfg.LLM.SystemPrompt == "" {
		cfg.LLM.SystemPrompt = defaultSystemPrompt
	}
	if cfg.LLM.SearchSystemPrompt == "" {
		cfg.LLM.SearchSystemPrompt = defaultSearchSystemPrompt
	}

	return cfg
}

// buildBackends constructs the configured search backends in priority order
// and applies the allow and deny lists. SearXNG comes first so its results
// win first-seen deduplication.
func buildBackends(cfg types.SearchConfig) []search.Backend {
	client := &http.Client{Timeout: cfg.Timeout}

	var backends []search.Backend
	if cfg.SearXNGURL != "" {
		backends = append(backends, &search.SearXNGBackend{Client: client, BaseURL: cfg.SearXNGURL})
	}
	if cfg.BraveAPIKey != "" {
		backends = append(backends, &search.BraveBackend{Client: client, APIKey: cfg.BraveAPIKey})
	}
	return search.FilterBackends(backends, cfg.AllowBackends, cfg.DenyBackends)
}
