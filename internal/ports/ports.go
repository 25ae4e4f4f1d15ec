package ports

import (
	"context"

	"BulletinTimeline/internal/domain"
)

// TextExtractor turns a rich document on disk into raw text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Translator requests a translation of a single text fragment.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// TranslationCache persists source title to translated title mappings.
type TranslationCache interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, entries map[string]string) error
}

// DatasetStore reads and writes the timeline dataset document.
type DatasetStore interface {
	Read(ctx context.Context) (domain.Dataset, error)
	Write(ctx context.Context, dataset domain.Dataset) error
}

// Archive keeps a history of build runs for auditing classifier output.
type Archive interface {
	SaveRun(ctx context.Context, variant string, issues []domain.Issue) (string, error)
	LoadRun(ctx context.Context, runID string) ([]domain.Issue, error)
}

// SegmentStats summarizes one segmentation pass.
type SegmentStats struct {
	Variant  string
	Issues   int
	Articles int
}

// FilterStats summarizes one relevance pass.
type FilterStats struct {
	BackgroundIssues   int
	BackgroundArticles int
	PostCutoffIssues   int
	ArticlesBefore     int
	ArticlesAfter      int
	FinalIssues        int
	FinalArticles      int
	TagCounts          map[string]int
}

// TranslateStats summarizes one enrichment pass.
type TranslateStats struct {
	UniqueTitles int
	Cached       int
	Requested    int
	Failed       int
	Applied      int
}

// Observer receives progress and statistics from the core stages.
type Observer interface {
	Segmented(stats SegmentStats)
	Filtered(stats FilterStats)
	TranslateProgress(done, total int)
	Translated(stats TranslateStats)
	Warn(msg string, args ...any)
}
