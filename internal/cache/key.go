// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// Key derives the canonical cache key for a query. It is a pure function of
// the normalized query text, the retrieval mode, and the backend
// configuration fingerprint, so distinct (query, mode, config) tuples never
// collide and true duplicates always do.
func Key(q types.Query, mode types.RetrievalMode, fingerprint string) string {
	h := sha256.New()
	h.Write([]byte(q.Normalized))
	h.Write([]byte{0})
	h.Write([]byte(mode))
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Fingerprint hashes the parts of the search configuration that change what
// evidence a query can retrieve. Timeouts and retry counts are excluded:
// they affect latency, not results.
func Fingerprint(cfg types.SearchConfig) string {
	h := sha256.New()
	fmt.Fprintf(h, "searxng=%s\n", cfg.SearXNGURL)
	fmt.Fprintf(h, "searxng_disabled=%s\n", strings.Join(cfg.SearXNGDisabledEngines, ","))
	fmt.Fprintf(h, "brave=%t\n", cfg.BraveAPIKey != "")
	fmt.Fprintf(h, "allow=%s\n", strings.Join(cfg.AllowBackends, ","))
	fmt.Fprintf(h, "deny=%s\n", strings.Join(cfg.DenyBackends, ","))
	fmt.Fprintf(h, "max_results=%d\n", cfg.MaxResults)
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
