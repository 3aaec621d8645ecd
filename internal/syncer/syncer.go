package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anacondy/examwatch/internal/logger"
	"github.com/anacondy/examwatch/internal/models"
	"github.com/anacondy/examwatch/internal/store"
)

// ErrSyncInFlight is returned when a sync trigger arrives while a cycle is
// already running. Cycles never run concurrently: interleaved cleanup passes
// could evict rows a sibling cycle just inserted.
var ErrSyncInFlight = errors.New("sync cycle already in flight")

// Fetcher retrieves candidate links from the source listing page.
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.CandidateLink, error)
}

// Analyzer produces an analysis result for one document URL.
type Analyzer interface {
	Analyze(ctx context.Context, url, title string, force bool) (*models.AnalysisResult, error)
}

// Options configures an Orchestrator.
type Options struct {
	Workers          int
	MaxAnnouncements int
	AnalyzeTimeout   time.Duration
}

// Orchestrator drives one ingestion cycle: fetch, parallel per-candidate
// analysis, serialized store upserts, retention cleanup, stats.
type Orchestrator struct {
	fetcher  Fetcher
	analyzer Analyzer
	store    *store.Store
	opts     Options
	running  atomic.Bool
}

func New(f Fetcher, a Analyzer, s *store.Store, opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 5
	}
	if opts.AnalyzeTimeout <= 0 {
		opts.AnalyzeTimeout = time.Minute
	}
	return &Orchestrator{fetcher: f, analyzer: a, store: s, opts: opts}
}

type analyzed struct {
	link   models.CandidateLink
	result *models.AnalysisResult
}

// RunSync executes one complete sync cycle. A fully failed fetch is not
// fatal: the cycle proceeds with zero candidates and still reports cleanup
// stats. Only a store failure aborts the cycle with an error.
func (o *Orchestrator) RunSync(ctx context.Context) (models.SyncStats, error) {
	if !o.running.CompareAndSwap(false, true) {
		return models.SyncStats{}, ErrSyncInFlight
	}
	defer o.running.Store(false)

	log := logger.Get()
	start := time.Now()
	stats := models.SyncStats{MaxLimit: o.opts.MaxAnnouncements}

	candidates, err := o.fetcher.Fetch(ctx)
	if err != nil {
		// Failed candidates are simply retried on the next cycle; upsert
		// keyed by url makes that safe.
		log.Error().Err(err).Msg("fetch failed, proceeding with zero candidates")
		stats.Message = fmt.Sprintf("fetch failed: %v", err)
		candidates = nil
	}

	results := o.analyzeAll(ctx, candidates)

	// Single-writer path: analyzer workers never touch the store directly.
	for _, r := range results {
		a := models.Announcement{
			DateText:  r.link.DateText,
			Title:     r.link.Title,
			URL:       r.link.URL,
			CrawledAt: time.Now().UTC(),
		}
		// Every candidate is stored, analyzed or not; a document with failed
		// analysis is still listed, just without summary and category.
		if r.result != nil && r.result.Error == "" {
			a.Summary = r.result.Summary
			a.Category = r.result.Category
			a.TranslatedTitle = r.result.TranslatedTitle
		}
		if err := o.store.Upsert(ctx, a); err != nil {
			return stats, fmt.Errorf("upserting %s: %w", a.URL, err)
		}
		stats.Processed++
	}

	deleted, err := o.store.Cleanup(ctx, o.opts.MaxAnnouncements)
	if err != nil {
		return stats, fmt.Errorf("cleanup: %w", err)
	}
	stats.Deleted = deleted

	total, err := o.store.Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("counting after cleanup: %w", err)
	}
	stats.Total = total

	log.Info().
		Int("processed", stats.Processed).
		Int("deleted", stats.Deleted).
		Int("total", stats.Total).
		Dur("duration", time.Since(start)).
		Msg("sync cycle complete")

	return stats, nil
}

// analyzeAll runs document analysis for the candidates on a bounded worker
// pool and collects the results. Already-stored URLs are not re-analyzed.
// A per-task timeout cancels only that task, never its siblings.
func (o *Orchestrator) analyzeAll(ctx context.Context, candidates []models.CandidateLink) []analyzed {
	log := logger.Get()

	results := make([]analyzed, len(candidates))
	for i, link := range candidates {
		results[i] = analyzed{link: link}
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, o.opts.Workers)

dispatch:
	for i, link := range candidates {
		known, err := o.store.HasURL(ctx, link.URL)
		if err != nil {
			log.Error().Err(err).Str("url", link.URL).Msg("store lookup failed, skipping analysis")
			continue
		}
		if known {
			continue
		}

		select {
		case <-ctx.Done():
			// Stop dispatching, but the in-flight workers must finish before
			// the caller may read the shared results slice.
			break dispatch
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, link models.CandidateLink) {
			defer wg.Done()
			defer func() { <-semaphore }()

			taskCtx, cancel := context.WithTimeout(ctx, o.opts.AnalyzeTimeout)
			defer cancel()

			res, err := o.analyzer.Analyze(taskCtx, link.URL, link.Title, false)
			if err != nil {
				log.Warn().Err(err).Str("url", link.URL).Msg("analysis failed, storing candidate without enrichment")
			}
			results[i].result = res
		}(i, link)
	}

	wg.Wait()
	return results
}
