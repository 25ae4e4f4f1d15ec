package usecase

import (
	"context"
	"errors"
	"fmt"

	"BulletinTimeline/internal/enrich"
	"BulletinTimeline/internal/ports"
)

// Translation adds English titles to an existing dataset.
type Translation struct {
	store    ports.DatasetStore
	cache    ports.TranslationCache
	enricher *enrich.Enricher
}

// NewTranslation constructs the translate use case.
func NewTranslation(store ports.DatasetStore, cache ports.TranslationCache, enricher *enrich.Enricher) *Translation {
	return &Translation{store: store, cache: cache, enricher: enricher}
}

// Run reads the dataset, translates uncached titles and rewrites the
// dataset in place. The cache is saved whenever new titles were requested,
// including when ctx is cancelled midway; the dataset is left untouched
// in that case.
func (t *Translation) Run(ctx context.Context) (ports.TranslateStats, error) {
	if t.store == nil || t.cache == nil || t.enricher == nil {
		return ports.TranslateStats{}, errors.New("translation is not fully configured")
	}

	dataset, err := t.store.Read(ctx)
	if err != nil {
		return ports.TranslateStats{}, fmt.Errorf("read dataset: %w", err)
	}

	cached, err := t.cache.Load(ctx)
	if err != nil {
		return ports.TranslateStats{}, fmt.Errorf("load cache: %w", err)
	}

	result, runErr := t.enricher.Enrich(ctx, dataset, cached)
	if result.Stats.Requested > 0 {
		// The checkpoint must survive cancellation, so it ignores ctx.
		if err := t.cache.Save(context.WithoutCancel(ctx), result.Cache); err != nil {
			return result.Stats, fmt.Errorf("save cache: %w", err)
		}
	}
	if runErr != nil {
		return result.Stats, fmt.Errorf("translate titles: %w", runErr)
	}

	if err := t.store.Write(ctx, result.Dataset); err != nil {
		return result.Stats, fmt.Errorf("write dataset: %w", err)
	}
	return result.Stats, nil
}
