// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides whether a query needs web evidence and which
// retrieval mode to use. Classification is a pure function of the query
// text: no I/O, deterministic, and total.
package classify

import (
	"strings"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// rule pairs a trigger keyword with the diagnostic name recorded on a match.
type rule struct {
	keyword string
	name    string
}

// directRules trigger direct-mode retrieval. Evaluated in order, before
// expandedRules: temporal markers first, then factual-lookup markers, then
// data-request markers.
var directRules = []rule{
	{"latest", "temporal:latest"},
	{"current", "temporal:current"},
	{"today", "temporal:today"},
	{"right now", "temporal:now"},
	{"recent", "temporal:recent"},
	{"this week", "temporal:this-week"},
	{"this month", "temporal:this-month"},
	{"this year", "temporal:this-year"},
	{"who is", "lookup:who-is"},
	{"who are", "lookup:who-are"},
	{"what is the", "lookup:what-is-the"},
	{"when did", "lookup:when-did"},
	{"when was", "lookup:when-was"},
	{"where is", "lookup:where-is"},
	{"how many", "lookup:how-many"},
	{"how much", "lookup:how-much"},
	{"price", "data:price"},
	{"cost", "data:cost"},
	{"salary", "data:salary"},
	{"budget", "data:budget"},
	{"statistics", "data:statistics"},
	{"weather", "data:weather"},
	{"stock", "data:stock"},
	{"news", "data:news"},
}

// expandedRules trigger expanded-mode retrieval for comparison and analysis
// queries that benefit from merging several reformulated searches.
var expandedRules = []rule{
	{"compare", "analysis:compare"},
	{"comparison", "analysis:comparison"},
	{"versus", "analysis:versus"},
	{" vs ", "analysis:vs"},
	{"analyze", "analysis:analyze"},
	{"analysis of", "analysis:analysis-of"},
	{"explain why", "analysis:explain-why"},
	{"how does", "analysis:how-does"},
	{"difference between", "analysis:difference"},
	{"pros and cons", "analysis:pros-cons"},
	{"impact of", "analysis:impact"},
	{"trends", "analysis:trends"},
}

// timeSensitiveKeywords mark queries whose answers go stale quickly. Shared
// with the ranker's recency bonus and the orchestrator's TTL policy.
var timeSensitiveKeywords = []string{
	"latest", "current", "today", "now", "recent", "news",
	"weather", "breaking", "this week", "this month",
}

// staticKeywords mark archival queries whose answers rarely change.
var staticKeywords = []string{
	"history", "historical", "statistics", "data", "report", "founded",
	"invented", "definition",
}

// Classify derives the retrieval decision for a query. An empty or
// whitespace-only query short-circuits to no retrieval before any rule is
// evaluated; the force-retrieval flag overrides the rules and selects
// direct mode.
func Classify(q types.Query) types.Classification {
	if q.IsEmpty() {
		return types.Classification{Category: types.CategoryGeneral}
	}

	if q.ForceRetrieval {
		return types.Classification{
			NeedsRetrieval: true,
			Mode:           types.ModeDirect,
			MatchedRule:    "forced",
			Category:       Category(q),
		}
	}

	text := q.Normalized

	for _, r := range directRules {
		if strings.Contains(text, r.keyword) {
			return types.Classification{
				NeedsRetrieval: true,
				Mode:           types.ModeDirect,
				MatchedRule:    r.name,
				Category:       Category(q),
			}
		}
	}

	for _, r := range expandedRules {
		if strings.Contains(text, r.keyword) {
			return types.Classification{
				NeedsRetrieval: true,
				Mode:           types.ModeExpanded,
				MatchedRule:    r.name,
				Category:       Category(q),
			}
		}
	}

	// No trigger matched: favor the cheap answer-only path.
	return types.Classification{Category: Category(q)}
}

// Category maps a query to a search category hint for backends and TTL policy.
func Category(q types.Query) types.QueryCategory {
	text := q.Normalized
	switch {
	case containsAny(text, "news", "latest", "breaking", "today"):
		return types.CategoryNews
	case containsAny(text, "code", "programming", "error", "debug", "api", "software"):
		return types.CategoryTechnical
	case containsAny(text, "research", "study", "paper", "journal", "academic"):
		return types.CategoryScience
	default:
		return types.CategoryGeneral
	}
}

// TimeSensitive reports whether the query carries temporal markers.
func TimeSensitive(q types.Query) bool {
	return containsAny(q.Normalized, timeSensitiveKeywords...)
}

// Static reports whether the query asks for archival facts.
func Static(q types.Query) bool {
	return containsAny(q.Normalized, staticKeywords...)
}

func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
