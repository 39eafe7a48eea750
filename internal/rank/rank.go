// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores retrieved evidence against the query and assembles a
// bounded evidence set that fits the context budget. Scoring uses lexical
// signals only; the package performs no I/O.
package rank

import (
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/answer-engine/internal/classify"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// freshWindow is how recently an item must have been fetched to earn the
// recency bonus on a time-sensitive query.
const freshWindow = 24 * time.Hour

// RankAndBudget scores items against the query, orders them by descending
// score (ties keep backend order), and accumulates them greedily until the
// next item's formatted size would exceed maxUnits. Items that do not fit
// are dropped whole, never truncated. An empty result is valid.
func RankAndBudget(q types.Query, items []types.Evidence, maxUnits int, cfg types.RankConfig) []types.Evidence {
	if len(items) == 0 {
		return nil
	}

	scored := make([]types.Evidence, len(items))
	copy(scored, items)

	timeSensitive := classify.TimeSensitive(q)
	for i := range scored {
		scored[i].Score = Score(q, scored[i], timeSensitive, cfg)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if maxUnits <= 0 {
		maxUnits = 3000
	}

	var budgeted []types.Evidence
	used := 0
	for _, item := range scored {
		size := EstimateTokens(FormatItem(len(budgeted)+1, item))
		if used+size > maxUnits {
			break
		}
		used += size
		budgeted = append(budgeted, item)
	}
	return budgeted
}

// Score combines the lexical signals into one relevance value: title keyword
// overlap weighs most, then a trusted-domain bonus, then recency, then
// snippet overlap.
func Score(q types.Query, item types.Evidence, timeSensitive bool, cfg types.RankConfig) float64 {
	titleWeight := cfg.TitleMatchWeight
	if titleWeight == 0 {
		titleWeight = 3.0
	}
	snippetWeight := cfg.SnippetMatchWeight
	if snippetWeight == 0 {
		snippetWeight = 1.0
	}
	phraseBonus := cfg.ExactPhraseBonus
	if phraseBonus == 0 {
		phraseBonus = 5.0
	}
	domainBonus := cfg.DomainAuthorityBonus
	if domainBonus == 0 {
		domainBonus = 1.5
	}
	recencyBonus := cfg.RecencyBonus
	if recencyBonus == 0 {
		recencyBonus = 1.0
	}

	queryTerms := termSet(q.Normalized)
	title := strings.ToLower(item.Title)
	snippet := strings.ToLower(item.Snippet)

	score := 0.0
	score += float64(overlap(queryTerms, termSet(title))) * titleWeight
	score += float64(overlap(queryTerms, termSet(snippet))) * snippetWeight

	if strings.Contains(title, q.Normalized) {
		score += phraseBonus
	} else if strings.Contains(snippet, q.Normalized) {
		score += phraseBonus / 2
	}

	lowURL := strings.ToLower(item.URL)
	for _, domain := range cfg.TrustedDomains {
		if strings.Contains(lowURL, strings.ToLower(domain)) {
			score += domainBonus
			break
		}
	}

	if timeSensitive && !item.FetchedAt.IsZero() && time.Since(item.FetchedAt) <= freshWindow {
		score += recencyBonus
	}

	return score
}

// EstimateTokens approximates the token count of text as len/4.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// stopwords are excluded from keyword overlap so scaffolding words do not
// dominate the score.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"of": true, "in": true, "on": true, "for": true, "to": true, "and": true,
	"or": true, "what": true, "who": true, "when": true, "where": true,
	"how": true, "why": true, "does": true, "did": true,
}

func termSet(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, t := range strings.Fields(text) {
		t = strings.Trim(t, ".,;:!?\"'()")
		if t != "" && !stopwords[t] {
			terms[t] = true
		}
	}
	return terms
}

func overlap(a, b map[string]bool) int {
	n := 0
	for t := range a {
		if b[t] {
			n++
		}
	}
	return n
}
