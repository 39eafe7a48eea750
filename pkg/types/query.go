// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the answer-engine pipeline:
// queries, classifications, retrieved evidence, answers, and the configuration
// structs each stage consumes.
package types

import "strings"

// RetrievalMode selects how the evidence provider derives backend queries.
type RetrievalMode string

const (
	// ModeDirect issues a single backend query built from the original text.
	ModeDirect RetrievalMode = "direct"

	// ModeExpanded issues the original query plus heuristic reformulations
	// and merges the results.
	ModeExpanded RetrievalMode = "expanded"
)

// Query is a user question. It is immutable once constructed; the normalized
// form is the basis for classification and cache addressing.
type Query struct {
	// Raw is the query text exactly as the user entered it.
	Raw string `json:"raw" yaml:"raw"`

	// Normalized is the lowercased, whitespace-collapsed, trimmed form of Raw.
	Normalized string `json:"normalized" yaml:"normalized"`

	// ForceRetrieval requests evidence retrieval regardless of classification.
	ForceRetrieval bool `json:"force_retrieval,omitempty" yaml:"force_retrieval,omitempty"`
}

// NewQuery constructs a Query, deriving the normalized form from raw.
func NewQuery(raw string, forceRetrieval bool) Query {
	return Query{
		Raw:            raw,
		Normalized:     NormalizeQueryText(raw),
		ForceRetrieval: forceRetrieval,
	}
}

// NormalizeQueryText lowercases text, collapses runs of whitespace to single
// spaces, and trims the result.
func NormalizeQueryText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// IsEmpty reports whether the query contains no searchable text.
func (q Query) IsEmpty() bool {
	return q.Normalized == ""
}

// QueryCategory groups queries for backend category hints and TTL policy.
type QueryCategory string

const (
	CategoryGeneral   QueryCategory = "general"
	CategoryNews      QueryCategory = "news"
	CategoryTechnical QueryCategory = "it"
	CategoryScience   QueryCategory = "science"
)

// Classification is the retrieval decision derived from a Query. It carries
// no side effects and is a pure function of the query text and flags.
type Classification struct {
	// NeedsRetrieval reports whether web evidence should be fetched.
	NeedsRetrieval bool `json:"needs_retrieval" yaml:"needs_retrieval"`

	// Mode is the retrieval mode to use when NeedsRetrieval is true.
	Mode RetrievalMode `json:"mode,omitempty" yaml:"mode,omitempty"`

	// MatchedRule names the trigger that decided the classification, for
	// diagnostics only (e.g. "temporal:latest", "forced").
	MatchedRule string `json:"matched_rule,omitempty" yaml:"matched_rule,omitempty"`

	// Category is the search category hint for backends that support one.
	Category QueryCategory `json:"category" yaml:"category"`
}
