// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search retrieves web evidence from one or more search backends and
// returns a unified, deduplicated result set. A retrieval tolerates partial
// backend failure: it succeeds while at least one backend call succeeds.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// Backend queries a single search provider. Each backend (SearXNG, Brave)
// implements this interface and is registered by configuration.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, category types.QueryCategory, cfg types.SearchConfig) ([]types.Evidence, error)
}

// ErrRetrievalFailed reports that every backend call failed. The orchestrator
// degrades to answer-only generation when it sees this error.
var ErrRetrievalFailed = errors.New("all search backends failed")

// Output holds the merged evidence and per-retrieval statistics.
type Output struct {
	Items         []types.Evidence
	DupsRemoved   int
	Dropped       int
	BackendErrors []string
}

// maxExpandedQueries caps the number of derived queries in expanded mode:
// the original plus up to two reformulations.
const maxExpandedQueries = 3

// Retrieve fans the query out to all backends concurrently and merges the
// results. Direct mode issues one backend query; expanded mode issues the
// original plus fixed heuristic reformulations. The whole retrieval is
// bounded by cfg.OverallTimeout; calls still pending when it fires are
// abandoned and already-collected results are used.
func Retrieve(ctx context.Context, q types.Query, c types.Classification, backends []Backend, cfg types.SearchConfig, w io.Writer) (Output, error) {
	if q.IsEmpty() {
		return Output{}, fmt.Errorf("query is empty")
	}
	if len(backends) == 0 {
		return Output{}, fmt.Errorf("no search backends configured: %w", ErrRetrievalFailed)
	}

	queries := []string{q.Normalized}
	if c.Mode == types.ModeExpanded {
		queries = expandQueries(q)
	}

	if cfg.OverallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.OverallTimeout)
		defer cancel()
	}

	type callResult struct {
		slot    int
		backend string
		items   []types.Evidence
		err     error
	}

	total := len(backends) * len(queries)
	ch := make(chan callResult, total)
	var wg sync.WaitGroup

	// Slot order encodes backend priority: all queries of backend 0 come
	// before backend 1, so first-seen dedup keeps the higher-priority entry.
	for bi, b := range backends {
		for qi, query := range queries {
			wg.Add(1)
			go func(slot int, b Backend, query string) {
				defer wg.Done()
				items, err := b.Search(ctx, query, c.Category, cfg)
				ch <- callResult{slot: slot, backend: b.Name(), items: items, err: err}
			}(bi*len(queries)+qi, b, query)
		}
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	slots := make([][]types.Evidence, total)
	var backendErrors []string
	received := 0
	succeeded := false

collect:
	for received < total {
		select {
		case cr, ok := <-ch:
			if !ok {
				break collect
			}
			received++
			if cr.err != nil {
				msg := fmt.Sprintf("%s: %v", cr.backend, cr.err)
				backendErrors = append(backendErrors, msg)
				fmt.Fprintf(w, "warning: backend %s failed: %v\n", cr.backend, cr.err)
				continue
			}
			succeeded = true
			slots[cr.slot] = cr.items
		case <-ctx.Done():
			fmt.Fprintf(w, "warning: retrieval timeout, using %d of %d backend responses\n", received, total)
			break collect
		}
	}

	out := Output{BackendErrors: backendErrors}

	if !succeeded {
		if received == 0 {
			return out, fmt.Errorf("retrieval timed out before any backend responded: %w", ErrRetrievalFailed)
		}
		return out, fmt.Errorf("%d backend call(s) failed: %w", len(backendErrors), ErrRetrievalFailed)
	}

	var all []types.Evidence
	for _, items := range slots {
		all = append(all, items...)
	}

	cleaned, dropped := normalize(all, cfg, w)
	deduped, removed := deduplicate(cleaned)

	if cfg.MaxResults > 0 && len(deduped) > cfg.MaxResults {
		deduped = deduped[:cfg.MaxResults]
	}

	out.Items = deduped
	out.DupsRemoved = removed
	out.Dropped = dropped
	return out, nil
}

// FilterBackends applies the configured allow and deny lists before dispatch.
// An empty allow list admits every backend not explicitly denied.
func FilterBackends(backends []Backend, allow, deny []string) []Backend {
	allowed := make(map[string]bool, len(allow))
	for _, name := range allow {
		allowed[name] = true
	}
	denied := make(map[string]bool, len(deny))
	for _, name := range deny {
		denied[name] = true
	}

	var out []Backend
	for _, b := range backends {
		if denied[b.Name()] {
			continue
		}
		if len(allowed) > 0 && !allowed[b.Name()] {
			continue
		}
		out = append(out, b)
	}
	return out
}

// questionPrefixes are scaffolding phrases stripped when deriving a
// keyword-focused reformulation.
var questionPrefixes = []string{
	"explain why ", "explain how ", "explain ", "how does ", "how do ",
	"what is the difference between ", "compare ", "analyze ",
	"what are ", "what is ", "why does ", "why is ",
}

// expandQueries derives the backend query set for expanded mode: the
// original, a keyword form with question scaffolding stripped, and an
// "explained" variant. Duplicates are removed and the set is capped.
func expandQueries(q types.Query) []string {
	base := q.Normalized
	candidates := []string{base, stripQuestionPrefix(base), base + " explained"}

	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if len(out) == maxExpandedQueries {
			break
		}
	}
	return out
}

// stripQuestionPrefix removes the first matching scaffolding phrase and any
// trailing question mark.
func stripQuestionPrefix(text string) string {
	stripped := text
	for _, p := range questionPrefixes {
		if strings.HasPrefix(stripped, p) {
			stripped = strings.TrimPrefix(stripped, p)
			break
		}
	}
	return strings.TrimSuffix(strings.TrimSpace(stripped), "?")
}

// normalize validates and cleans raw backend results. Items without a title
// or a parseable http(s) URL are dropped and logged, never propagated.
func normalize(items []types.Evidence, cfg types.SearchConfig, w io.Writer) ([]types.Evidence, int) {
	maxSnippet := cfg.MaxSnippetLength
	if maxSnippet <= 0 {
		maxSnippet = 300
	}

	var out []types.Evidence
	dropped := 0
	for _, item := range items {
		if item.Title == "" || NormalizeURL(item.URL) == "" {
			fmt.Fprintf(w, "warning: dropping malformed result from %s (title=%q url=%q)\n",
				item.Engine, item.Title, item.URL)
			dropped++
			continue
		}

		item.Title = collapseWhitespace(item.Title)
		item.Snippet = collapseWhitespace(item.Snippet)
		if len(item.Snippet) > maxSnippet {
			item.Snippet = item.Snippet[:maxSnippet] + "..."
		}
		if item.FetchedAt.IsZero() {
			item.FetchedAt = time.Now()
		}
		out = append(out, item)
	}
	return out, dropped
}

// deduplicate merges results that share a normalized URL, keeping the
// first-seen entry. Input order encodes backend priority.
func deduplicate(items []types.Evidence) ([]types.Evidence, int) {
	seen := make(map[string]bool, len(items))
	var out []types.Evidence
	removed := 0

	for _, item := range items {
		key := NormalizeURL(item.URL)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out, removed
}

// NormalizeURL canonicalizes a URL for dedup and citation matching: host is
// lowercased with any "www." prefix removed, the fragment is dropped, and a
// trailing slash is trimmed. Returns "" for unparseable or non-http(s) URLs.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Host == "" {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if port := u.Port(); port != "" && port != "80" && port != "443" {
		host += ":" + port
	}

	path := strings.TrimSuffix(u.Path, "/")

	normalized := u.Scheme + "://" + host + path
	if u.RawQuery != "" {
		normalized += "?" + u.RawQuery
	}
	return normalized
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FormatTable writes evidence as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Items) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-50s  %-10s  %-6s  %s\n",
		"Rank", "Title", "Engine", "Score", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, item := range out.Items {
		title := item.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%-4d  %-50s  %-10s  %-6.2f  %s\n",
			i+1, title, item.Engine, item.Score, item.URL)
	}

	fmt.Fprintf(w, "\n%d results", len(out.Items))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes evidence as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Items)
}
