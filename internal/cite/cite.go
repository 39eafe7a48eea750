// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite post-processes generated answer text against the evidence set
// that was actually supplied to the generator. Citation markers that do not
// resolve to a supplied item are treated as hallucinated and stripped; the
// canonical source list is rebuilt from the evidence set, never from the
// generator's prose.
package cite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/answer-engine/internal/search"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// defaultMaxSources caps the displayed source list.
const defaultMaxSources = 5

// bracketNumberPattern matches numeric citation markers like [1] or [2].
var bracketNumberPattern = regexp.MustCompile(`\[(\d+)\]`)

// markdownLinkPattern matches inline links like [title](https://...).
var markdownLinkPattern = regexp.MustCompile(`\[([^\[\]]*)\]\((https?://[^\s()]+)\)`)

// bareURLPattern matches URLs the generator asserted outside any link syntax.
var bareURLPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

var (
	multiSpacePattern      = regexp.MustCompile(` +`)
	spaceBeforePunctuation = regexp.MustCompile(` +([.,;:!?])`)
)

// Verify strips unsupported citation markers from text and appends a
// numbered source list built from used, capped at maxSources (default 5).
// Every URL in the appended list comes from used; numeric markers are kept
// only when they index into used, and linked or bare URLs are kept only
// when their normalized form matches a supplied item.
func Verify(text string, used []types.Evidence, maxSources int) string {
	if maxSources <= 0 {
		maxSources = defaultMaxSources
	}

	supplied := make(map[string]bool, len(used))
	for _, item := range used {
		if key := search.NormalizeURL(item.URL); key != "" {
			supplied[key] = true
		}
	}

	verified := stripUnsupportedMarkers(text, len(used), supplied)
	verified = strings.TrimSpace(verified)

	if len(used) == 0 {
		return verified
	}

	display := used
	if len(display) > maxSources {
		display = display[:maxSources]
	}

	var b strings.Builder
	b.WriteString(verified)
	b.WriteString("\n\nSources:\n")
	for i, item := range display {
		fmt.Fprintf(&b, "[%d] %s\n    %s\n", i+1, item.Title, item.URL)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// stripUnsupportedMarkers removes citation markers that do not resolve to a
// supplied evidence item.
func stripUnsupportedMarkers(text string, evidenceCount int, supplied map[string]bool) string {
	// Markdown links first: an unsupported link collapses to its anchor
	// text, a supported one keeps only the text and its bracket form would
	// duplicate the source list, so keep the plain text plus URL.
	text = markdownLinkPattern.ReplaceAllStringFunc(text, func(m string) string {
		parts := markdownLinkPattern.FindStringSubmatch(m)
		anchor, link := parts[1], parts[2]
		if supplied[search.NormalizeURL(link)] {
			return m
		}
		return anchor
	})

	// Bare URLs asserted by the generator: drop any not in the supplied set.
	text = bareURLPattern.ReplaceAllStringFunc(text, func(m string) string {
		trimmed := strings.TrimRight(m, ".,;:")
		if supplied[search.NormalizeURL(trimmed)] {
			return m
		}
		return ""
	})

	// Numeric markers: valid only when they index into the supplied set.
	text = bracketNumberPattern.ReplaceAllStringFunc(text, func(m string) string {
		n, err := strconv.Atoi(strings.Trim(m, "[]"))
		if err != nil || n < 1 || n > evidenceCount {
			return ""
		}
		return m
	})

	// Tidy whitespace left behind by stripped markers.
	text = multiSpacePattern.ReplaceAllString(text, " ")
	text = spaceBeforePunctuation.ReplaceAllString(text, "$1")
	return text
}
