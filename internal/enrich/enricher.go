package enrich

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"BulletinTimeline/internal/domain"
	"BulletinTimeline/internal/ports"
)

const (
	DefaultBatchSize  = 8
	DefaultBatchDelay = 600 * time.Millisecond
	progressEvery     = 50
)

// Options tune batching. Zero values fall back to the defaults.
type Options struct {
	BatchSize  int
	BatchDelay time.Duration
	Observer   ports.Observer
}

// Enricher translates article titles in rate-limited batches.
type Enricher struct {
	translator ports.Translator
	observer   ports.Observer
	batchSize  int
	batchDelay time.Duration
	wait       func(ctx context.Context, d time.Duration) error
}

// New wires a translator with batching options.
func New(translator ports.Translator, opts Options) *Enricher {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BatchDelay <= 0 {
		opts.BatchDelay = DefaultBatchDelay
	}
	return &Enricher{
		translator: translator,
		observer:   opts.Observer,
		batchSize:  opts.BatchSize,
		batchDelay: opts.BatchDelay,
		wait:       sleep,
	}
}

// Result is the outcome of one enrichment pass.
type Result struct {
	Dataset domain.Dataset
	Cache   map[string]string
	Stats   ports.TranslateStats
}

// Enrich translates every unique title missing from cache, merges the
// results into a copy of the cache and sets titleEn on every article. When
// ctx is cancelled, the translations completed so far are still returned
// together with the context error; titles whose request was interrupted stay
// missing from the cache.
func (e *Enricher) Enrich(ctx context.Context, dataset domain.Dataset, cache map[string]string) (Result, error) {
	merged := make(map[string]string, len(cache))
	for k, v := range cache {
		merged[k] = v
	}

	titles := UniqueTitles(dataset.Issues)
	var pending []string
	for _, t := range titles {
		if merged[t] == "" {
			pending = append(pending, t)
		}
	}

	stats := ports.TranslateStats{
		UniqueTitles: len(titles),
		Cached:       len(titles) - len(pending),
	}

	translated, failed, runErr := e.translateAll(ctx, pending)
	for title, value := range translated {
		merged[title] = value
	}
	stats.Requested = len(translated)
	stats.Failed = failed

	out, applied := Apply(dataset, merged)
	stats.Applied = applied
	if e.observer != nil {
		e.observer.Translated(stats)
	}
	return Result{Dataset: out, Cache: merged, Stats: stats}, runErr
}

// translateAll runs bounded-width batches with a fixed delay between them.
// A failing request falls back to the source title.
func (e *Enricher) translateAll(ctx context.Context, titles []string) (map[string]string, int, error) {
	results := make(map[string]string, len(titles))
	if len(titles) == 0 {
		return results, 0, nil
	}
	if e.translator == nil {
		return results, 0, errors.New("enrich: translator is not configured")
	}

	failed := 0
	for start := 0; start < len(titles); start += e.batchSize {
		end := min(start+e.batchSize, len(titles))
		batch := titles[start:end]
		values := make([]string, len(batch))
		errs := make([]error, len(batch))

		var g errgroup.Group
		for i, title := range batch {
			g.Go(func() error {
				translated, err := e.translator.Translate(ctx, title)
				if err != nil {
					errs[i] = err
					translated = title
				}
				values[i] = translated
				return nil
			})
		}
		_ = g.Wait()

		// Requests cut short by cancellation are not cached as fallbacks.
		if err := ctx.Err(); err != nil {
			for i, title := range batch {
				if errs[i] == nil {
					results[title] = values[i]
				}
			}
			return results, failed, err
		}

		for i, title := range batch {
			results[title] = values[i]
			if errs[i] != nil {
				failed++
				e.warn("translation failed", "title", truncate(title, 40), "error", errs[i])
			}
		}

		if e.observer != nil && (end%progressEvery == 0 || end == len(titles)) {
			e.observer.TranslateProgress(end, len(titles))
		}

		if end < len(titles) {
			if err := e.wait(ctx, e.batchDelay); err != nil {
				return results, failed, err
			}
		}
	}
	return results, failed, nil
}

func (e *Enricher) warn(msg string, args ...any) {
	if e.observer != nil {
		e.observer.Warn(msg, args...)
	}
}

// UniqueTitles lists distinct titles in first-seen order.
func UniqueTitles(issues []domain.Issue) []string {
	seen := map[string]struct{}{}
	var titles []string
	for _, issue := range issues {
		for _, a := range issue.Articles {
			if _, ok := seen[a.Title]; ok {
				continue
			}
			seen[a.Title] = struct{}{}
			titles = append(titles, a.Title)
		}
	}
	return titles
}

// Apply copies the dataset with titleEn set on every article, using the
// source title when the cache has no entry. It returns how many articles
// received a cached translation.
func Apply(dataset domain.Dataset, cache map[string]string) (domain.Dataset, int) {
	applied := 0
	out := domain.Dataset{Issues: make([]domain.Issue, len(dataset.Issues))}
	for i, issue := range dataset.Issues {
		articles := make([]domain.Article, len(issue.Articles))
		for j, a := range issue.Articles {
			if v := cache[a.Title]; v != "" {
				a.TitleEn = v
				applied++
			} else {
				a.TitleEn = a.Title
			}
			articles[j] = a
		}
		issue.Articles = articles
		out.Issues[i] = issue
	}
	return out, applied
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
