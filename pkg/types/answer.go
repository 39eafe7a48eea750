// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Answer is the final result of one request. It is constructed once by the
// orchestrator and never mutated after citation verification; a cached
// request reconstructs it from the stored payload with Cached set.
type Answer struct {
	// Text is the generated answer with the verified source list appended.
	Text string `json:"text" yaml:"text"`

	// Citations lists the evidence items supplied to the generator, in rank
	// order. Every URL in the answer's source list comes from this set.
	Citations []Evidence `json:"citations" yaml:"citations"`

	// SearchUsed reports whether retrieved evidence informed the answer.
	// False on the search-free path and after total retrieval failure.
	SearchUsed bool `json:"search_used" yaml:"search_used"`

	// Cached reports whether the answer was served from the cache store.
	Cached bool `json:"cached" yaml:"cached"`

	// Latency is the wall-clock time spent serving the request.
	Latency time.Duration `json:"latency" yaml:"latency"`
}
