// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Evidence is a single retrieved web result normalized to title, URL, and
// snippet. Within one retrieved set no two items share a normalized URL.
type Evidence struct {
	// Title is the result title as returned by the backend.
	Title string `json:"title" yaml:"title"`

	// URL is the result location. It is unique within a retrieved set after
	// deduplication by normalized form.
	URL string `json:"url" yaml:"url"`

	// Snippet is the result summary text, whitespace-normalized and capped.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Engine identifies which backend found this result (e.g. "searxng", "brave").
	Engine string `json:"engine" yaml:"engine"`

	// Score is the relevance score assigned by the ranker. Backends may seed
	// it with a position-based value.
	Score float64 `json:"score" yaml:"score"`

	// FetchedAt is when the backend returned this result.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}
