// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"fmt"
	"strings"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// FormatItem renders one evidence item the way it appears in the generation
// prompt. The budget accumulates over this exact form.
func FormatItem(index int, item types.Evidence) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s\n", index, item.Title)
	fmt.Fprintf(&b, "    %s\n", item.Snippet)
	fmt.Fprintf(&b, "    Source: %s\n", item.URL)
	return b.String()
}

// BuildContext formats a budgeted evidence set into the block handed to the
// generator, with the query restated in the header.
func BuildContext(q types.Query, items []types.Evidence) string {
	if len(items) == 0 {
		return "No search results available."
	}

	var b strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "%s\nSEARCH RESULTS FOR: %s\n%s\n\n", rule, q.Raw, rule)

	for i, item := range items {
		b.WriteString(FormatItem(i+1, item))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s\nTotal results: %d\n%s", rule, len(items), rule)
	return b.String()
}
