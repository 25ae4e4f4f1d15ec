package app

import (
	"context"
	"fmt"
	"log/slog"

	"BulletinTimeline/internal/classify"
	"BulletinTimeline/internal/config"
	"BulletinTimeline/internal/enrich"
	"BulletinTimeline/internal/infrastructure/extract"
	"BulletinTimeline/internal/infrastructure/storage"
	"BulletinTimeline/internal/infrastructure/translate"
	"BulletinTimeline/internal/logging"
	"BulletinTimeline/internal/ports"
	"BulletinTimeline/internal/relevance"
	"BulletinTimeline/internal/segment"
	"BulletinTimeline/internal/telemetry"
	"BulletinTimeline/internal/usecase"
)

// Application wires configs to use cases.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	observer   ports.Observer
	classifier *classify.Classifier
	filter     *relevance.Filter
	store      *storage.DatasetFile
}

// New loads rule catalogs and builds the shared observers.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	catalog := classify.DefaultCatalog()
	if cfg.Rules.Catalog != "" {
		loaded, err := classify.LoadCatalog(cfg.Rules.Catalog)
		if err != nil {
			return nil, err
		}
		catalog = loaded
	}

	policy := relevance.DefaultPolicy(cfg.Filter.Cutoff)
	if cfg.Rules.Policy != "" {
		loaded, err := relevance.LoadPolicy(cfg.Rules.Policy, cfg.Filter.Cutoff)
		if err != nil {
			return nil, err
		}
		policy = loaded
	}

	metrics, err := telemetry.NewMetricsObserver(nil)
	if err != nil {
		return nil, fmt.Errorf("metrics observer: %w", err)
	}

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		observer:   telemetry.Multi{telemetry.NewLogObserver(baseLogger.With("component", "pipeline")), metrics},
		classifier: classify.New(catalog),
		filter:     relevance.New(policy),
		store:      storage.NewDatasetFile(cfg.Output.Dataset),
	}, nil
}

// Build runs segmentation, tagging and filtering over the configured source.
func (a *Application) Build(ctx context.Context) (usecase.BuildReport, error) {
	registry := segment.NewRegistry()
	registry.Register(segment.NewStreamSegmenter())
	registry.Register(segment.NewDocumentSegmenter(extract.NewDefaultRegistry(), a.observer))

	deps := usecase.BuildDeps{
		Segmenters: registry,
		Classifier: a.classifier,
		Filter:     a.filter,
		Store:      a.store,
		Observer:   a.observer,
	}

	if a.cfg.Output.Archive != "" {
		archive, err := storage.OpenSQLiteArchive(ctx, a.cfg.Output.Archive)
		if err != nil {
			return usecase.BuildReport{}, err
		}
		defer func() {
			if cerr := archive.Close(); cerr != nil {
				a.logger.Warn("close archive", "error", cerr)
			}
		}()
		deps.Archive = archive
	}

	report, err := usecase.NewBuilder(deps).Build(ctx, a.cfg.Source.Path, a.cfg.Source.Variant)
	if err != nil {
		return report, err
	}
	a.logger.Info("dataset written",
		"path", a.cfg.Output.Dataset,
		"variant", report.Variant,
		"issues", report.Filter.FinalIssues,
		"articles", report.Filter.FinalArticles,
		"run_id", report.RunID,
	)
	return report, nil
}

// Translate adds English titles to the dataset written by Build.
func (a *Application) Translate(ctx context.Context) (ports.TranslateStats, error) {
	tcfg := a.cfg.Translation
	enricher := enrich.New(translate.NewClient(tcfg, nil), enrich.Options{
		BatchSize:  tcfg.BatchSize,
		BatchDelay: tcfg.BatchDelay,
		Observer:   a.observer,
	})
	cache := storage.NewCacheFile(a.cfg.Output.Cache)
	stats, err := usecase.NewTranslation(a.store, cache, enricher).Run(ctx)
	if err != nil {
		return stats, err
	}
	a.logger.Info("dataset translated", "path", a.cfg.Output.Dataset, "applied", stats.Applied)
	return stats, nil
}
