// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/answer-engine/internal/httputil"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// braveAPIBase is the Brave web search endpoint. Declared as a var so tests
// can substitute an httptest server.
var braveAPIBase = "https://api.search.brave.com/res/v1/web/search"

// BraveBackend queries the Brave Search API.
type BraveBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *BraveBackend) Name() string { return "brave" }

// Search queries the Brave Search API and returns raw evidence items.
func (b *BraveBackend) Search(ctx context.Context, query string, category types.QueryCategory, cfg types.SearchConfig) ([]types.Evidence, error) {
	if query == "" {
		return nil, fmt.Errorf("empty Brave query")
	}

	count := cfg.MaxResults
	if count <= 0 || count > 20 {
		count = 10
	}

	params := url.Values{
		"q":     {query},
		"count": {fmt.Sprintf("%d", count)},
	}
	if category == types.CategoryNews {
		params.Set("freshness", "pw")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, braveAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("X-Subscription-Token", b.APIKey)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, cfg.MaxRetries, cfg.RetryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("Brave API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Brave API returned HTTP %d", resp.StatusCode)
	}

	var br braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("parsing Brave response: %w", err)
	}

	now := time.Now()
	var results []types.Evidence
	for _, r := range br.Web.Results {
		results = append(results, types.Evidence{
			Title:     r.Title,
			URL:       r.URL,
			Snippet:   r.Description,
			Engine:    "brave",
			FetchedAt: now,
		})
	}
	return results, nil
}

// Brave Search API JSON structures.
type braveResponse struct {
	Web braveWebResults `json:"web"`
}

type braveWebResults struct {
	Results []braveResult `json:"results"`
}

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
