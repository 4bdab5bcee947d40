// Package compare orchestrates version comparisons: it resolves versions,
// fetches and extracts them concurrently, and diffs the selected pairs.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/kartik-devs/lcp-compare/catalog"
	"github.com/kartik-devs/lcp-compare/config"
	"github.com/kartik-devs/lcp-compare/diff"
	"github.com/kartik-devs/lcp-compare/extract"
	"github.com/kartik-devs/lcp-compare/sections"
	"github.com/kartik-devs/lcp-compare/storage"
)

// Engine runs comparisons. It is stateless between calls; every call
// produces one self-contained Result.
type Engine struct {
	store     storage.ObjectStore
	catalog   *catalog.Catalog
	chain     *extract.Chain
	segmenter *sections.Segmenter
	cfg       config.CompareCfg
	log       *slog.Logger
}

// New creates an engine. A nil chain gets the default extraction chain, a
// nil segmenter the default heading rules, and a nil logger slog.Default.
func New(store storage.ObjectStore, chain *extract.Chain, seg *sections.Segmenter, cfg config.CompareCfg, log *slog.Logger) *Engine {
	if chain == nil {
		chain = extract.DefaultChain()
	}
	if seg == nil {
		seg = sections.NewSegmenter()
	}
	if log == nil {
		log = slog.Default()
	}
	def := config.DefaultConfig().Compare
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = def.MaxWorkers
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = def.RetryAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Engine{
		store:     store,
		catalog:   catalog.New(store, log),
		chain:     chain,
		segmenter: seg,
		cfg:       cfg,
		log:       log,
	}
}

// ListVersions enumerates the case's document versions, oldest first.
func (e *Engine) ListVersions(ctx context.Context, caseID string) ([]catalog.Version, error) {
	return e.catalog.ListVersions(ctx, caseID)
}

// Compare runs one comparison. Selective mode diffs the first against the
// last of the supplied key ordering; sequential mode diffs all catalog
// versions pairwise in chronological order. Versions that fail fetch or
// extraction are skipped and recorded; the call only fails when fewer than
// two usable versions remain, the catalog is unreachable, or the timeout
// expires.
func (e *Engine) Compare(ctx context.Context, caseID string, sel Selection) (*Result, error) {
	runID := uuid.New().String()
	log := e.log.With("run_id", runID, "case_id", caseID, "mode", sel.Mode)

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	var keys []string
	switch sel.Mode {
	case ModeSelective:
		if len(sel.VersionKeys) < 2 {
			return nil, &ComparisonError{CaseID: caseID, Err: fmt.Errorf("%w: %d selected", ErrInsufficientVersions, len(sel.VersionKeys))}
		}
		// Only the endpoints of the selection are compared; interior
		// versions are ignored and never fetched.
		keys = []string{sel.VersionKeys[0], sel.VersionKeys[len(sel.VersionKeys)-1]}
	case ModeSequential:
		versions, err := e.catalog.ListVersions(ctx, caseID)
		if err != nil {
			return nil, err
		}
		if len(versions) < 2 {
			return nil, &ComparisonError{CaseID: caseID, Err: fmt.Errorf("%w: %d in catalog", ErrInsufficientVersions, len(versions))}
		}
		keys = make([]string, len(versions))
		for i, v := range versions {
			keys[i] = v.Key
		}
	default:
		return nil, &ComparisonError{CaseID: caseID, Err: fmt.Errorf("unknown comparison mode %q", sel.Mode)}
	}

	log.Info("starting comparison", "versions", len(keys))

	docs, verrs := e.loadAll(ctx, keys)
	if err := ctx.Err(); err != nil {
		// Timeout or cancellation: no partial result.
		return nil, fmt.Errorf("comparison aborted: %w", err)
	}

	if len(docs) < 2 {
		return nil, &ComparisonError{
			CaseID: caseID,
			Errors: verrs,
			Err:    fmt.Errorf("%w: %d of %d extracted", ErrInsufficientVersions, len(docs), len(keys)),
		}
	}

	pairs := make([]Pair, 0, len(keys)-1)
	for i := 1; i < len(keys); i++ {
		pairs = append(pairs, e.buildPair(keys[i-1], keys[i], docs))
	}

	log.Info("comparison complete", "pairs", len(pairs), "version_errors", len(verrs))

	return &Result{
		RunID:         runID,
		CaseID:        caseID,
		Mode:          sel.Mode,
		GeneratedAt:   time.Now().UTC(),
		Pairs:         pairs,
		VersionErrors: verrs,
	}, nil
}

// buildPair diffs two versions, or marks the pair not comparable when a
// side failed to load.
func (e *Engine) buildPair(leftKey, rightKey string, docs map[string]*sections.Document) Pair {
	left, leftOK := docs[leftKey]
	right, rightOK := docs[rightKey]

	if !leftOK || !rightOK {
		var failed []string
		if !leftOK {
			failed = append(failed, leftKey)
		}
		if !rightOK {
			failed = append(failed, rightKey)
		}
		return Pair{LeftKey: leftKey, RightKey: rightKey, FailedKeys: failed}
	}

	sectionDiffs, summary := diff.Compare(left, right)
	return Pair{
		LeftKey:    leftKey,
		RightKey:   rightKey,
		Comparable: true,
		Sections:   sectionDiffs,
		Summary:    summary,
	}
}

// loadResult carries one version's fetch+extract outcome off a worker.
type loadResult struct {
	key  string
	doc  *sections.Document
	verr *VersionError
}

// loadAll fetches and extracts every key under a bounded worker pool.
// Distinct versions are independent, so they run concurrently up to
// MaxWorkers to respect the storage backend's capacity.
func (e *Engine) loadAll(ctx context.Context, keys []string) (map[string]*sections.Document, []VersionError) {
	unique := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if !seen[key] {
			seen[key] = true
			unique = append(unique, key)
		}
	}

	results := make(chan loadResult, len(unique))
	sem := make(chan struct{}, e.cfg.MaxWorkers)

	for _, key := range unique {
		sem <- struct{}{} // acquire
		go func(key string) {
			defer func() { <-sem }() // release
			results <- e.loadOne(ctx, key)
		}(key)
	}

	docs := make(map[string]*sections.Document, len(unique))
	// Collect errors keyed first so the reported order is deterministic.
	verrByKey := make(map[string]VersionError)
	for range unique {
		r := <-results
		if r.verr != nil {
			verrByKey[r.key] = *r.verr
			continue
		}
		docs[r.key] = r.doc
	}

	var verrs []VersionError
	for _, key := range unique {
		if ve, ok := verrByKey[key]; ok {
			verrs = append(verrs, ve)
		}
	}
	return docs, verrs
}

// loadOne fetches one version with bounded retry on transient storage
// failures, then extracts and segments it. Extraction failures are
// deterministic and are not retried.
func (e *Engine) loadOne(ctx context.Context, key string) loadResult {
	var data []byte
	err := retry.Do(
		func() error {
			var getErr error
			data, getErr = e.store.Get(ctx, key)
			return getErr
		},
		retry.Context(ctx),
		retry.Attempts(e.cfg.RetryAttempts),
		retry.Delay(e.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(storage.IsTransient),
	)
	if err != nil {
		e.log.Warn("fetch failed", "key", key, "error", err)
		return loadResult{key: key, verr: &VersionError{Key: key, Stage: "fetch", Err: err}}
	}

	doc, err := e.chain.Extract(data)
	if err != nil {
		e.log.Warn("extraction failed", "key", key, "error", err)
		return loadResult{key: key, verr: &VersionError{Key: key, Stage: "extract", Err: err}}
	}
	doc.VersionKey = key

	e.log.Debug("extracted version", "key", key, "method", doc.Method, "chars", len(doc.Text))
	return loadResult{key: key, doc: e.segmenter.Segment(doc.Text)}
}
