package classify

import (
	"testing"

	"github.com/pdiddy/answer-engine/pkg/types"
)

func TestClassifyDirectTriggers(t *testing.T) {
	tests := []struct {
		name  string
		query string
		rule  string
	}{
		{"temporal latest", "What's the latest news about AI?", "temporal:latest"},
		{"temporal current", "Who is the current CEO of Microsoft?", "temporal:current"},
		{"factual lookup", "Who is Marie Curie?", "lookup:who-is"},
		{"when did", "When did the Berlin Wall fall?", "lookup:when-did"},
		{"data price", "price of a Tesla Model 3", "data:price"},
		{"data budget", "What have been the budget trends for education?", "data:budget"},
		{"weather", "weather in Bhopal", "data:weather"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(types.NewQuery(tt.query, false))
			if !c.NeedsRetrieval {
				t.Fatalf("NeedsRetrieval = false, want true")
			}
			if c.Mode != types.ModeDirect {
				t.Errorf("Mode = %q, want direct", c.Mode)
			}
			if c.MatchedRule != tt.rule {
				t.Errorf("MatchedRule = %q, want %q", c.MatchedRule, tt.rule)
			}
		})
	}
}

func TestClassifyExpandedTriggers(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"compare", "compare Go and Rust for systems programming"},
		{"explain why", "explain why interest rates affect housing markets"},
		{"how does", "how does photosynthesis respond to drought"},
		{"difference", "difference between TCP and UDP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(types.NewQuery(tt.query, false))
			if !c.NeedsRetrieval {
				t.Fatalf("NeedsRetrieval = false, want true")
			}
			if c.Mode != types.ModeExpanded {
				t.Errorf("Mode = %q, want expanded", c.Mode)
			}
		})
	}
}

func TestClassifyNoRetrievalDefault(t *testing.T) {
	tests := []string{
		"Explain recursion",
		"What is Python?",
		"write a haiku about autumn",
	}
	for _, query := range tests {
		c := Classify(types.NewQuery(query, false))
		if c.NeedsRetrieval {
			t.Errorf("Classify(%q).NeedsRetrieval = true, want false (rule %q)", query, c.MatchedRule)
		}
	}
}

func TestClassifyEmptyQuery(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		c := Classify(types.NewQuery(raw, false))
		if c.NeedsRetrieval {
			t.Errorf("Classify(%q).NeedsRetrieval = true, want false", raw)
		}
	}
}

func TestClassifyForceOverride(t *testing.T) {
	c := Classify(types.NewQuery("Explain recursion", true))
	if !c.NeedsRetrieval {
		t.Fatal("forced query should need retrieval")
	}
	if c.Mode != types.ModeDirect {
		t.Errorf("Mode = %q, want direct", c.Mode)
	}
	if c.MatchedRule != "forced" {
		t.Errorf("MatchedRule = %q, want forced", c.MatchedRule)
	}
}

func TestClassifyDirectWinsOverExpanded(t *testing.T) {
	// Carries both a temporal marker and a comparison marker; direct rules
	// are evaluated first.
	c := Classify(types.NewQuery("compare the latest GPU prices", false))
	if c.Mode != types.ModeDirect {
		t.Errorf("Mode = %q, want direct", c.Mode)
	}
}

func TestClassifyIsTotal(t *testing.T) {
	inputs := []string{
		"", " ", "?", "a", "ÜBER latest NEWS", "\x00\x01", "日本語のクエリ",
		"who is      the   current    president",
	}
	for _, raw := range inputs {
		c := Classify(types.NewQuery(raw, false))
		if c.NeedsRetrieval && c.Mode == "" {
			t.Errorf("Classify(%q) returned retrieval without a mode", raw)
		}
		if c.Category == "" {
			t.Errorf("Classify(%q) returned empty category", raw)
		}
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		query string
		want  types.QueryCategory
	}{
		{"latest news about AI", types.CategoryNews},
		{"debug this go api error", types.CategoryTechnical},
		{"research papers on transformers", types.CategoryScience},
		{"capital of France", types.CategoryGeneral},
	}
	for _, tt := range tests {
		if got := Category(types.NewQuery(tt.query, false)); got != tt.want {
			t.Errorf("Category(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestTimeSensitive(t *testing.T) {
	if !TimeSensitive(types.NewQuery("latest election results", false)) {
		t.Error("latest should be time-sensitive")
	}
	if TimeSensitive(types.NewQuery("history of the Roman empire", false)) {
		t.Error("historical query should not be time-sensitive")
	}
}

func TestStatic(t *testing.T) {
	if !Static(types.NewQuery("history of the Roman empire", false)) {
		t.Error("historical query should be static")
	}
	if Static(types.NewQuery("best pizza nearby", false)) {
		t.Error("local query should not be static")
	}
}
