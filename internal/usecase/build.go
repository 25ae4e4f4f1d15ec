package usecase

import (
	"context"
	"errors"
	"fmt"

	"BulletinTimeline/internal/classify"
	"BulletinTimeline/internal/domain"
	"BulletinTimeline/internal/ports"
	"BulletinTimeline/internal/relevance"
	"BulletinTimeline/internal/segment"
	"BulletinTimeline/internal/telemetry"
)

// BuildDeps wires the core stages and driven adapters into the build pass.
type BuildDeps struct {
	Segmenters *segment.Registry
	Classifier *classify.Classifier
	Filter     *relevance.Filter
	Store      ports.DatasetStore
	Archive    ports.Archive
	Observer   ports.Observer
}

// Builder turns a bulletin archive into the timeline dataset.
type Builder struct {
	segmenters *segment.Registry
	classifier *classify.Classifier
	filter     *relevance.Filter
	store      ports.DatasetStore
	archive    ports.Archive
	observer   ports.Observer
}

// BuildReport describes a finished build.
type BuildReport struct {
	Variant string
	RunID   string
	Segment ports.SegmentStats
	Filter  ports.FilterStats
}

// NewBuilder constructs the build use case. A nil Archive disables run history.
func NewBuilder(deps BuildDeps) *Builder {
	observer := deps.Observer
	if observer == nil {
		observer = telemetry.Nop{}
	}
	return &Builder{
		segmenters: deps.Segmenters,
		classifier: deps.Classifier,
		filter:     deps.Filter,
		store:      deps.Store,
		archive:    deps.Archive,
		observer:   observer,
	}
}

// Build segments source, tags and filters the articles and overwrites the
// dataset. An empty variant is detected from the source path.
func (b *Builder) Build(ctx context.Context, source, variant string) (BuildReport, error) {
	if b.segmenters == nil || b.classifier == nil || b.filter == nil || b.store == nil {
		return BuildReport{}, errors.New("builder is not fully configured")
	}

	if variant == "" {
		detected, err := segment.DetectVariant(source)
		if err != nil {
			return BuildReport{}, err
		}
		variant = detected
	}

	seg, err := b.segmenters.Resolve(variant)
	if err != nil {
		return BuildReport{}, err
	}

	issues, err := seg.Segment(ctx, source)
	if err != nil {
		return BuildReport{}, fmt.Errorf("segment %s: %w", source, err)
	}

	report := BuildReport{
		Variant: variant,
		Segment: ports.SegmentStats{
			Variant:  variant,
			Issues:   len(issues),
			Articles: domain.ArticleCount(issues),
		},
	}
	b.observer.Segmented(report.Segment)

	// Only the line-stream bulletins carry highlight and background curation.
	curated := variant == segment.VariantLines
	issues = b.classifier.AnnotateIssues(issues, curated)

	var final []domain.Issue
	if curated {
		final, report.Filter = b.filter.Curate(issues)
	} else {
		final, report.Filter = b.filter.FilterAll(issues)
	}
	b.observer.Filtered(report.Filter)

	if err := b.store.Write(ctx, domain.Dataset{Issues: final}); err != nil {
		return report, fmt.Errorf("write dataset: %w", err)
	}

	if b.archive != nil {
		runID, err := b.archive.SaveRun(ctx, variant, final)
		if err != nil {
			return report, fmt.Errorf("archive run: %w", err)
		}
		report.RunID = runID
	}
	return report, nil
}
