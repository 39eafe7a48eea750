package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	name    string
	results []types.Evidence
	err     error
	calls   atomic.Int32
	delay   time.Duration
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Search(ctx context.Context, _ string, _ types.QueryCategory, _ types.SearchConfig) ([]types.Evidence, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.results, m.err
}

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		MaxResults:       10,
		MaxRetries:       1,
		RetryBaseDelay:   time.Millisecond,
		OverallTimeout:   5 * time.Second,
		MaxSnippetLength: 300,
	}
}

func directClassification() types.Classification {
	return types.Classification{
		NeedsRetrieval: true,
		Mode:           types.ModeDirect,
		Category:       types.CategoryGeneral,
	}
}

func ev(title, url string) types.Evidence {
	return types.Evidence{Title: title, URL: url, Snippet: "snippet for " + title}
}

// --- Retrieve ---

func TestRetrieveEmptyQuery(t *testing.T) {
	var buf bytes.Buffer
	_, err := Retrieve(context.Background(), types.NewQuery("  ", false), directClassification(),
		[]Backend{&mockBackend{name: "mock"}}, testCfg(), &buf)
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected empty query error, got: %v", err)
	}
}

func TestRetrieveNoBackends(t *testing.T) {
	var buf bytes.Buffer
	_, err := Retrieve(context.Background(), types.NewQuery("test", false), directClassification(),
		nil, testCfg(), &buf)
	if !errors.Is(err, ErrRetrievalFailed) {
		t.Errorf("expected ErrRetrievalFailed, got: %v", err)
	}
}

func TestRetrieveDedupAcrossBackends(t *testing.T) {
	primary := &mockBackend{name: "searxng", results: []types.Evidence{
		ev("Microsoft leadership", "https://www.microsoft.com/leadership/"),
		ev("Satya Nadella", "https://en.wikipedia.org/wiki/Satya_Nadella"),
	}}
	secondary := &mockBackend{name: "brave", results: []types.Evidence{
		// Same page, differently spelled URL.
		{Title: "Microsoft leadership (brave)", URL: "https://microsoft.com/leadership", Snippet: "dup", Engine: "brave"},
		ev("Microsoft history", "https://example.com/microsoft"),
	}}

	var buf bytes.Buffer
	out, err := Retrieve(context.Background(), types.NewQuery("who is the current ceo of microsoft", false),
		directClassification(), []Backend{primary, secondary}, testCfg(), &buf)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if out.DupsRemoved != 1 {
		t.Errorf("DupsRemoved = %d, want 1", out.DupsRemoved)
	}
	if len(out.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(out.Items))
	}

	// Dedup invariant: no two items share a normalized URL.
	seen := make(map[string]bool)
	for _, item := range out.Items {
		key := NormalizeURL(item.URL)
		if seen[key] {
			t.Errorf("duplicate normalized URL in result set: %s", key)
		}
		seen[key] = true
	}

	// First-seen wins: the primary backend's entry survives.
	if out.Items[0].Title != "Microsoft leadership" {
		t.Errorf("Items[0].Title = %q, want primary backend's entry", out.Items[0].Title)
	}
}

func TestRetrievePartialFailure(t *testing.T) {
	good := &mockBackend{name: "searxng", results: []types.Evidence{ev("A", "https://a.example.com/a")}}
	bad := &mockBackend{name: "brave", err: fmt.Errorf("connection refused")}

	var buf bytes.Buffer
	out, err := Retrieve(context.Background(), types.NewQuery("test query", false),
		directClassification(), []Backend{good, bad}, testCfg(), &buf)
	if err != nil {
		t.Fatalf("Retrieve should tolerate partial failure: %v", err)
	}
	if len(out.Items) != 1 {
		t.Errorf("len(Items) = %d, want 1", len(out.Items))
	}
	if len(out.BackendErrors) != 1 {
		t.Errorf("len(BackendErrors) = %d, want 1", len(out.BackendErrors))
	}
	if !strings.Contains(buf.String(), "brave") {
		t.Errorf("expected failure warning for brave, got: %s", buf.String())
	}
}

func TestRetrieveAllBackendsFailed(t *testing.T) {
	b1 := &mockBackend{name: "searxng", err: fmt.Errorf("timeout")}
	b2 := &mockBackend{name: "brave", err: fmt.Errorf("HTTP 500")}

	var buf bytes.Buffer
	_, err := Retrieve(context.Background(), types.NewQuery("test query", false),
		directClassification(), []Backend{b1, b2}, testCfg(), &buf)
	if !errors.Is(err, ErrRetrievalFailed) {
		t.Errorf("expected ErrRetrievalFailed, got: %v", err)
	}
}

func TestRetrieveExpandedFansOut(t *testing.T) {
	b := &mockBackend{name: "searxng", results: []types.Evidence{ev("A", "https://a.example.com")}}

	cls := directClassification()
	cls.Mode = types.ModeExpanded

	var buf bytes.Buffer
	_, err := Retrieve(context.Background(), types.NewQuery("explain why interest rates matter", false),
		cls, []Backend{b}, testCfg(), &buf)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if got := b.calls.Load(); got != 3 {
		t.Errorf("backend calls = %d, want 3 (original + two reformulations)", got)
	}
}

func TestRetrieveDropsMalformed(t *testing.T) {
	b := &mockBackend{name: "searxng", results: []types.Evidence{
		ev("Good", "https://good.example.com"),
		{Title: "", URL: "https://no-title.example.com"},
		{Title: "No URL"},
		{Title: "Bad scheme", URL: "ftp://files.example.com"},
	}}

	var buf bytes.Buffer
	out, err := Retrieve(context.Background(), types.NewQuery("test query", false),
		directClassification(), []Backend{b}, testCfg(), &buf)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(out.Items) != 1 {
		t.Errorf("len(Items) = %d, want 1", len(out.Items))
	}
	if out.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", out.Dropped)
	}
}

func TestRetrieveOverallTimeoutUsesCompleted(t *testing.T) {
	fast := &mockBackend{name: "searxng", results: []types.Evidence{ev("Fast", "https://fast.example.com")}}
	slow := &mockBackend{name: "brave", delay: time.Minute,
		results: []types.Evidence{ev("Slow", "https://slow.example.com")}}

	cfg := testCfg()
	cfg.OverallTimeout = 200 * time.Millisecond

	var buf bytes.Buffer
	out, err := Retrieve(context.Background(), types.NewQuery("test query", false),
		directClassification(), []Backend{fast, slow}, cfg, &buf)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].Title != "Fast" {
		t.Errorf("expected only the fast backend's result, got %+v", out.Items)
	}
}

func TestRetrieveCapsAtMaxResults(t *testing.T) {
	var results []types.Evidence
	for i := 0; i < 25; i++ {
		results = append(results, ev(fmt.Sprintf("R%d", i), fmt.Sprintf("https://example.com/%d", i)))
	}
	b := &mockBackend{name: "searxng", results: results}

	cfg := testCfg()
	cfg.MaxResults = 5

	var buf bytes.Buffer
	out, err := Retrieve(context.Background(), types.NewQuery("test query", false),
		directClassification(), []Backend{b}, cfg, &buf)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(out.Items) != 5 {
		t.Errorf("len(Items) = %d, want 5", len(out.Items))
	}
}

// --- FilterBackends ---

func TestFilterBackends(t *testing.T) {
	a := &mockBackend{name: "searxng"}
	b := &mockBackend{name: "brave"}

	tests := []struct {
		name  string
		allow []string
		deny  []string
		want  []string
	}{
		{"no filters", nil, nil, []string{"searxng", "brave"}},
		{"deny one", nil, []string{"brave"}, []string{"searxng"}},
		{"allow one", []string{"brave"}, nil, []string{"brave"}},
		{"deny wins", []string{"brave"}, []string{"brave"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterBackends([]Backend{a, b}, tt.allow, tt.deny)
			var names []string
			for _, bk := range got {
				names = append(names, bk.Name())
			}
			if len(names) != len(tt.want) {
				t.Fatalf("got %v, want %v", names, tt.want)
			}
			for i := range names {
				if names[i] != tt.want[i] {
					t.Errorf("got %v, want %v", names, tt.want)
				}
			}
		})
	}
}

// --- URL normalization ---

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.Example.com/Path/", "https://example.com/Path"},
		{"https://example.com/path#section", "https://example.com/path"},
		{"https://example.com:443/path", "https://example.com/path"},
		{"http://example.com:8080/path", "http://example.com:8080/path"},
		{"https://example.com/search?q=go", "https://example.com/search?q=go"},
		{"ftp://example.com/file", ""},
		{"not a url", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- query expansion ---

func TestExpandQueries(t *testing.T) {
	got := expandQueries(types.NewQuery("explain why interest rates matter", false))
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3: %v", len(got), got)
	}
	if got[0] != "explain why interest rates matter" {
		t.Errorf("first derived query should be the original, got %q", got[0])
	}
	if got[1] != "interest rates matter" {
		t.Errorf("second derived query should strip scaffolding, got %q", got[1])
	}
}

func TestExpandQueriesDedupes(t *testing.T) {
	// No scaffolding to strip: the stripped form equals the original.
	got := expandQueries(types.NewQuery("quantum computing", false))
	seen := make(map[string]bool)
	for _, q := range got {
		if seen[q] {
			t.Errorf("duplicate derived query %q in %v", q, got)
		}
		seen[q] = true
	}
	if len(got) > maxExpandedQueries {
		t.Errorf("len = %d exceeds cap", len(got))
	}
}
