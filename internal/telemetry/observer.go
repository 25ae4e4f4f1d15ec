// Package telemetry turns pipeline progress events into log records and
// metrics. The core stages only see ports.Observer.
package telemetry

import (
	"log/slog"
	"sort"

	"BulletinTimeline/internal/ports"
)

// Nop discards every event.
type Nop struct{}

var _ ports.Observer = Nop{}

func (Nop) Segmented(ports.SegmentStats) {}
func (Nop) Filtered(ports.FilterStats) {}
func (Nop) TranslateProgress(int, int) {}
func (Nop) Translated(ports.TranslateStats) {}
func (Nop) Warn(string, ...any) {}

// LogObserver writes events as slog records.
type LogObserver struct {
	logger *slog.Logger
}

var _ ports.Observer = (*LogObserver)(nil)

// NewLogObserver wraps a logger; nil uses slog.Default.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) Segmented(s ports.SegmentStats) {
	o.logger.Info("segmented source", "variant", s.Variant, "issues", s.Issues, "articles", s.Articles)
}

func (o *LogObserver) Filtered(s ports.FilterStats) {
	o.logger.Info("relevance filter",
		"post_cutoff_issues", s.PostCutoffIssues,
		"articles_before", s.ArticlesBefore,
		"articles_after", s.ArticlesAfter)
	o.logger.Info("dataset assembled",
		"issues", s.FinalIssues,
		"articles", s.FinalArticles,
		"background_issues", s.BackgroundIssues,
		"background_articles", s.BackgroundArticles)
	o.logger.Info("tag distribution", tagAttrs(s.TagCounts)...)
}

func (o *LogObserver) TranslateProgress(done, total int) {
	o.logger.Info("translated titles", "done", done, "total", total)
}

func (o *LogObserver) Translated(s ports.TranslateStats) {
	o.logger.Info("translation pass",
		"unique_titles", s.UniqueTitles,
		"cached", s.Cached,
		"requested", s.Requested,
		"failed", s.Failed,
		"applied", s.Applied)
}

func (o *LogObserver) Warn(msg string, args ...any) {
	o.logger.Warn(msg, args...)
}

func tagAttrs(counts map[string]int) []any {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, counts[k])
	}
	return args
}

// Multi fans every event out to several observers.
type Multi []ports.Observer

var _ ports.Observer = Multi(nil)

func (m Multi) Segmented(s ports.SegmentStats) {
	for _, o := range m {
		o.Segmented(s)
	}
}

func (m Multi) Filtered(s ports.FilterStats) {
	for _, o := range m {
		o.Filtered(s)
	}
}

func (m Multi) TranslateProgress(done, total int) {
	for _, o := range m {
		o.TranslateProgress(done, total)
	}
}

func (m Multi) Translated(s ports.TranslateStats) {
	for _, o := range m {
		o.Translated(s)
	}
}

func (m Multi) Warn(msg string, args ...any) {
	for _, o := range m {
		o.Warn(msg, args...)
	}
}
