// Package normalize maps many raw spellings of the same real-world
// component or substrate to one canonical label, reusing prior decisions
// through a persistent cache and falling back to an external grouping
// service for names it has never seen.
package normalize

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pbscan/pbscan-cli/internal/model"
)

// Store is the persistent cache collaborator. Get returns entries keyed by
// lowercased original name; Put is an idempotent last-write-wins upsert
// that increments a usage counter.
type Store interface {
	Get(ctx context.Context, names []string) (map[string]model.NormalizationEntry, error)
	Put(ctx context.Context, entries []model.NormalizationEntry) error
}

// Grouper is the external AI grouping collaborator.
type Grouper interface {
	GroupNames(ctx context.Context, names []string) ([]model.NameGroup, error)
}

// Stage identifies a progress checkpoint during a Normalize call.
type Stage string

const (
	StageCheckingCache Stage = "checking-cache"
	StageCallingAI     Stage = "calling-ai"
	StageSavingCache   Stage = "saving-cache"
	StageComplete      Stage = "complete"
)

// Progress is an advisory stage report; it never affects correctness.
type Progress struct {
	Stage     Stage
	Processed int
	Total     int
}

// fallbackConfidence is assigned to title-cased names when the grouping
// collaborator is unavailable.
const fallbackConfidence = 0.5

// defaultChunkSize bounds cache query batches to respect backing-store
// query-size limits.
const defaultChunkSize = 100

// Engine deduplicates and canonicalizes one kind of name (component or
// substrate). Construct one per kind with explicit collaborators; either
// collaborator may be nil, which degrades to deterministic local fallbacks.
type Engine struct {
	store      Store
	grouper    Grouper
	chunkSize  int
	onProgress func(Progress)
}

// Option customizes an Engine.
type Option func(*Engine)

// WithChunkSize overrides the cache lookup batch size.
func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithProgress installs an advisory progress callback.
func WithProgress(fn func(Progress)) Option {
	return func(e *Engine) { e.onProgress = fn }
}

func NewEngine(store Store, grouper Grouper, opts ...Option) *Engine {
	e := &Engine{store: store, grouper: grouper, chunkSize: defaultChunkSize}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Normalize maps the given raw names to canonical labels. Input is
// lowercase-trimmed and deduplicated; empty strings are dropped, and empty
// input returns an empty result with no collaborator calls. Cached names
// short-circuit the grouping service entirely. Collaborator failures
// degrade to title-cased fallbacks, so the pipeline never blocks on an
// outage; newly decided names are persisted best-effort.
func (e *Engine) Normalize(ctx context.Context, names []string) ([]model.NormalizationEntry, error) {
	unique := dedupe(names)
	if len(unique) == 0 {
		return nil, nil
	}

	e.report(Progress{Stage: StageCheckingCache, Total: len(unique)})
	cached := e.lookupCache(ctx, unique)

	var uncached []string
	for _, n := range unique {
		if _, ok := cached[n]; !ok {
			uncached = append(uncached, n)
		}
	}

	entries := make([]model.NormalizationEntry, 0, len(unique))
	for _, n := range unique {
		if hit, ok := cached[n]; ok {
			hit.Source = model.SourceCache
			entries = append(entries, hit)
		}
	}

	var fresh []model.NormalizationEntry
	if len(uncached) > 0 {
		e.report(Progress{Stage: StageCallingAI, Processed: len(cached), Total: len(unique)})
		fresh = e.groupUncached(ctx, uncached)
		entries = append(entries, fresh...)
	}

	if len(fresh) > 0 && e.store != nil {
		e.report(Progress{Stage: StageSavingCache, Processed: len(entries), Total: len(unique)})
		if err := e.store.Put(ctx, fresh); err != nil {
			// Best-effort persistence: the in-memory result for this run
			// is unaffected.
			fmt.Fprintf(os.Stderr, "⚠ Warning: failed to save normalization cache: %v\n", err)
		}
	}

	e.report(Progress{Stage: StageComplete, Processed: len(entries), Total: len(unique)})
	return entries, ctx.Err()
}

// lookupCache fetches cache entries in chunks. A failing store reads as a
// full miss; another session may still be writing, and re-running simply
// re-reads.
func (e *Engine) lookupCache(ctx context.Context, names []string) map[string]model.NormalizationEntry {
	out := make(map[string]model.NormalizationEntry)
	if e.store == nil {
		return out
	}
	for start := 0; start < len(names); start += e.chunkSize {
		end := start + e.chunkSize
		if end > len(names) {
			end = len(names)
		}
		hits, err := e.store.Get(ctx, names[start:end])
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: normalization cache read failed: %v\n", err)
			continue
		}
		for k, v := range hits {
			out[k] = v
		}
	}
	return out
}

// groupUncached submits one batch to the grouping collaborator and
// reconciles the result. Names the collaborator did not place in any group
// get their own title-cased form with full confidence; a failed call falls
// back to title-casing everything at reduced confidence.
func (e *Engine) groupUncached(ctx context.Context, names []string) []model.NormalizationEntry {
	if e.grouper == nil {
		return titleCaseAll(names, 1.0)
	}
	groups, err := e.grouper.GroupNames(ctx, names)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: AI name grouping failed, using title-case fallback: %v\n", err)
		return titleCaseAll(names, fallbackConfidence)
	}

	submitted := make(map[string]bool, len(names))
	for _, n := range names {
		submitted[n] = true
	}
	claimed := make(map[string]model.NormalizationEntry)
	for _, g := range groups {
		for _, variant := range g.Variants {
			key := strings.ToLower(strings.TrimSpace(variant))
			if !submitted[key] {
				continue // hallucinated or duplicate variant
			}
			if _, done := claimed[key]; done {
				continue
			}
			claimed[key] = model.NormalizationEntry{
				OriginalName:   key,
				NormalizedName: g.Canonical,
				Confidence:     g.Confidence,
				Source:         model.SourceAI,
			}
		}
	}

	entries := make([]model.NormalizationEntry, 0, len(names))
	for _, n := range names {
		if e, ok := claimed[n]; ok {
			entries = append(entries, e)
			continue
		}
		// Never leave a submitted name unnormalized.
		entries = append(entries, model.NormalizationEntry{
			OriginalName:   n,
			NormalizedName: TitleCase(n),
			Confidence:     1.0,
			Source:         model.SourceAI,
		})
	}
	return entries
}

func titleCaseAll(names []string, confidence float64) []model.NormalizationEntry {
	entries := make([]model.NormalizationEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, model.NormalizationEntry{
			OriginalName:   n,
			NormalizedName: TitleCase(n),
			Confidence:     confidence,
			Source:         model.SourceAI,
		})
	}
	return entries
}

func (e *Engine) report(p Progress) {
	if e.onProgress != nil {
		e.onProgress(p)
	}
}

// dedupe lowercase-trims names, drops empties, and returns the unique set
// in stable sorted order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
