// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/answer-engine/internal/httputil"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// searxngCategories maps query categories to SearXNG category names.
var searxngCategories = map[types.QueryCategory]string{
	types.CategoryGeneral:   "general",
	types.CategoryNews:      "news",
	types.CategoryTechnical: "it",
	types.CategoryScience:   "science",
}

// SearXNGBackend queries a SearXNG metasearch instance via its JSON API.
type SearXNGBackend struct {
	Client  *http.Client
	BaseURL string
}

// Name returns the backend identifier.
func (b *SearXNGBackend) Name() string { return "searxng" }

// Search queries the SearXNG instance and returns raw evidence items.
func (b *SearXNGBackend) Search(ctx context.Context, query string, category types.QueryCategory, cfg types.SearchConfig) ([]types.Evidence, error) {
	if query == "" {
		return nil, fmt.Errorf("empty SearXNG query")
	}

	cat, ok := searxngCategories[category]
	if !ok {
		cat = "general"
	}

	params := url.Values{
		"q":          {query},
		"format":     {"json"},
		"categories": {cat},
		"language":   {"en"},
	}
	if len(cfg.SearXNGDisabledEngines) > 0 {
		params.Set("disabled_engines", strings.Join(cfg.SearXNGDisabledEngines, ","))
	}

	reqURL := strings.TrimSuffix(b.BaseURL, "/") + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, cfg.MaxRetries, cfg.RetryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("SearXNG request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SearXNG returned HTTP %d", resp.StatusCode)
	}

	var sr searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing SearXNG response: %w", err)
	}

	now := time.Now()
	var results []types.Evidence
	for _, r := range sr.Results {
		engine := "searxng"
		if r.Engine != "" {
			engine = "searxng/" + r.Engine
		}
		results = append(results, types.Evidence{
			Title:     r.Title,
			URL:       r.URL,
			Snippet:   r.Content,
			Engine:    engine,
			Score:     r.Score,
			FetchedAt: now,
		})
	}
	return results, nil
}

// SearXNG JSON API structures.
type searxngResponse struct {
	Query   string          `json:"query"`
	Results []searxngResult `json:"results"`
}

type searxngResult struct {
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Content  string  `json:"content"`
	Engine   string  `json:"engine"`
	Score    float64 `json:"score"`
	Category string  `json:"category"`
}
