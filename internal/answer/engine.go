// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package answer orchestrates the full question pipeline: classify the
// query, consult the cache, retrieve and rank evidence, generate the answer
// text, verify its citations, and store the result. Each request moves
// through the stages in order and partial failures degrade the answer
// instead of failing the request wherever the contract allows.
package answer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/answer-engine/internal/cache"
	"github.com/pdiddy/answer-engine/internal/cite"
	"github.com/pdiddy/answer-engine/internal/classify"
	"github.com/pdiddy/answer-engine/internal/llm"
	"github.com/pdiddy/answer-engine/internal/rank"
	"github.com/pdiddy/answer-engine/internal/search"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// timeoutApology is returned as the answer text when generation exceeds its
// deadline. Slow generation is a degraded answer, not a request failure.
const timeoutApology = "I'm sorry, but it took too long to generate an answer to your question. Please try again in a moment."

// Generator produces answer text from the user query and an optional
// evidence context block. *llm.Client is the production implementation.
type Generator interface {
	Generate(ctx context.Context, query, contextBlock string) (string, error)
}

// Engine wires the pipeline stages together. The cache store may be nil, in
// which case every request takes the uncached path.
type Engine struct {
	cfg      types.Config
	backends []search.Backend
	gen      Generator
	store    *cache.Store
	logw     io.Writer
}

// Options carries per-request overrides.
type Options struct {
	// ForceSearch retrieves evidence even when classification would skip it.
	ForceSearch bool

	// NoCache bypasses the cache for this request, both read and write.
	NoCache bool
}

// NewEngine returns an engine over the given stages. Warnings and stage
// diagnostics are written to w.
func NewEngine(cfg types.Config, backends []search.Backend, gen Generator, store *cache.Store, w io.Writer) *Engine {
	if w == nil {
		w = io.Discard
	}
	return &Engine{cfg: cfg, backends: backends, gen: gen, store: store, logw: w}
}

// cachedPayload is the JSON document stored per cache entry. Only answers
// produced from successfully retrieved evidence are cached, so a hit always
// reconstructs a search-backed answer.
type cachedPayload struct {
	Text      string           `json:"text"`
	Citations []types.Evidence `json:"citations"`
}

// Ask answers one question. The returned error is non-nil only for an empty
// query or a non-timeout generation failure; retrieval problems degrade to
// answer-only generation and a generation timeout degrades to a fixed
// apology.
func (e *Engine) Ask(ctx context.Context, raw string, opts Options) (types.Answer, error) {
	start := time.Now()

	q := types.NewQuery(raw, opts.ForceSearch)
	if q.IsEmpty() {
		return types.Answer{}, fmt.Errorf("query is empty")
	}

	c := classify.Classify(q)
	if !c.NeedsRetrieval {
		return e.answerOnly(ctx, q, start)
	}

	useCache := e.store != nil && e.cfg.Cache.Enabled && !opts.NoCache
	key := cache.Key(q, c.Mode, cache.Fingerprint(e.cfg.Search))

	if useCache {
		if a, ok := e.lookup(ctx, key); ok {
			a.Latency = time.Since(start)
			return a, nil
		}
	}

	out, err := search.Retrieve(ctx, q, c, e.backends, e.cfg.Search, e.logw)
	if err != nil {
		if !errors.Is(err, search.ErrRetrievalFailed) {
			return types.Answer{}, err
		}
		fmt.Fprintf(e.logw, "warning: retrieval failed, answering without search: %v\n", err)
		return e.answerOnly(ctx, q, start)
	}

	budgeted := rank.RankAndBudget(q, out.Items, e.cfg.Rank.MaxContextUnits, e.cfg.Rank)
	if len(budgeted) == 0 {
		fmt.Fprintln(e.logw, "warning: no usable evidence after ranking, answering without search")
		return e.answerOnly(ctx, q, start)
	}

	contextBlock := rank.BuildContext(q, budgeted)
	text, err := e.gen.Generate(ctx, q.Raw, contextBlock)
	if err != nil {
		if errors.Is(err, llm.ErrTimeout) {
			return types.Answer{Text: timeoutApology, Latency: time.Since(start)}, nil
		}
		return types.Answer{}, fmt.Errorf("generating answer: %w", err)
	}

	verified := cite.Verify(text, budgeted, e.cfg.Citation.MaxSources)

	a := types.Answer{
		Text:       verified,
		Citations:  budgeted,
		SearchUsed: true,
	}

	if useCache {
		e.storeAnswer(ctx, key, q, a)
	}

	a.Latency = time.Since(start)
	return a, nil
}

// answerOnly generates without evidence. Nothing on this path reads or
// writes the cache.
func (e *Engine) answerOnly(ctx context.Context, q types.Query, start time.Time) (types.Answer, error) {
	text, err := e.gen.Generate(ctx, q.Raw, "")
	if err != nil {
		if errors.Is(err, llm.ErrTimeout) {
			return types.Answer{Text: timeoutApology, Latency: time.Since(start)}, nil
		}
		return types.Answer{}, fmt.Errorf("generating answer: %w", err)
	}
	return types.Answer{Text: text, Latency: time.Since(start)}, nil
}

// lookup returns the reconstructed answer for key when a live entry exists.
// Cache errors are downgraded to a miss so a broken store never blocks an
// answer.
func (e *Engine) lookup(ctx context.Context, key string) (types.Answer, bool) {
	entry, err := e.store.Get(ctx, key)
	if err != nil {
		fmt.Fprintf(e.logw, "warning: cache read failed: %v\n", err)
		return types.Answer{}, false
	}
	if entry == nil {
		return types.Answer{}, false
	}

	var p cachedPayload
	if err := json.Unmarshal([]byte(entry.Value), &p); err != nil {
		fmt.Fprintf(e.logw, "warning: discarding undecodable cache entry: %v\n", err)
		e.store.Delete(ctx, key)
		return types.Answer{}, false
	}

	return types.Answer{
		Text:       p.Text,
		Citations:  p.Citations,
		SearchUsed: true,
		Cached:     true,
	}, true
}

// storeAnswer writes a freshly generated answer under key with the TTL tier
// for the query. Write failures are warnings; the answer is already in hand.
func (e *Engine) storeAnswer(ctx context.Context, key string, q types.Query, a types.Answer) {
	payload, err := json.Marshal(cachedPayload{Text: a.Text, Citations: a.Citations})
	if err != nil {
		fmt.Fprintf(e.logw, "warning: cache encode failed: %v\n", err)
		return
	}
	if err := e.store.Put(ctx, key, string(payload), ttlFor(q, e.cfg.Cache)); err != nil {
		fmt.Fprintf(e.logw, "warning: cache write failed: %v\n", err)
	}
}

// ttlFor selects the cache lifetime tier for a query: a short tier for
// time-sensitive queries, a long tier for static facts, and the default tier
// otherwise. Time sensitivity wins when both match.
func ttlFor(q types.Query, cfg types.CacheConfig) time.Duration {
	shortTTL := cfg.ShortTTL
	if shortTTL <= 0 {
		shortTTL = time.Hour
	}
	defaultTTL := cfg.DefaultTTL
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	staticTTL := cfg.StaticTTL
	if staticTTL <= 0 {
		staticTTL = 720 * time.Hour
	}

	switch {
	case classify.TimeSensitive(q):
		return shortTTL
	case classify.Static(q):
		return staticTTL
	default:
		return defaultTTL
	}
}
