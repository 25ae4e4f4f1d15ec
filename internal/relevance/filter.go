package relevance

import (
	"sort"

	"BulletinTimeline/internal/classify"
	"BulletinTimeline/internal/domain"
	"BulletinTimeline/internal/ports"
)

// Filter decides which articles enter the final dataset.
type Filter struct {
	policy Policy
}

// New wraps a compiled policy.
func New(policy Policy) *Filter {
	return &Filter{policy: policy}
}

// NewDefault uses the built-in policy with the given cutoff.
func NewDefault(cutoff string) *Filter {
	return New(DefaultPolicy(cutoff))
}

// Policy exposes the rules in use.
func (f *Filter) Policy() Policy {
	return f.policy
}

// IsBackground reports whether a pre-cutoff article is worth keeping as
// context: it must be a highlight and carry a critical tag or a pre-event
// keyword.
func (f *Filter) IsBackground(a domain.Article) bool {
	if !a.IsHighlight {
		return false
	}
	return a.HasAnyTag(f.policy.CriticalTags) || classify.MatchAny(f.policy.PreEventKeywords, a.Title)
}

// IsCrisisRelevant applies the post-cutoff inclusion/exclusion order: tag,
// entity and highlight evidence first, then the denylist, then crisis
// keywords, then the tags kept by editorial policy.
func (f *Filter) IsCrisisRelevant(a domain.Article) bool {
	switch {
	case a.HasAnyTag(f.policy.CrisisTags):
		return true
	case len(a.People) > 0:
		return true
	case a.IsHighlight:
		return true
	case classify.MatchAny(f.policy.Irrelevant, a.Title):
		return false
	case classify.MatchAny(f.policy.CrisisKeywords, a.Title):
		return true
	case a.HasAnyTag(f.policy.AlwaysKeepTags):
		return true
	default:
		return false
	}
}

// Curate splits issues at the cutoff, keeps curated background issues before
// it and crisis-relevant articles after it, and orders the result by date.
func (f *Filter) Curate(issues []domain.Issue) ([]domain.Issue, ports.FilterStats) {
	var pre, post []domain.Issue
	for _, issue := range issues {
		if issue.Date < f.policy.Cutoff {
			pre = append(pre, issue)
		} else {
			post = append(post, issue)
		}
	}

	background := keep(pre, f.IsBackground)
	for i := range background {
		background[i].IsBackground = true
	}
	relevant := keep(post, f.IsCrisisRelevant)

	final := make([]domain.Issue, 0, len(background)+len(relevant))
	final = append(final, background...)
	final = append(final, relevant...)
	sortByDate(final)

	stats := ports.FilterStats{
		BackgroundIssues:   len(background),
		BackgroundArticles: domain.ArticleCount(background),
		PostCutoffIssues:   len(post),
		ArticlesBefore:     domain.ArticleCount(post),
		ArticlesAfter:      domain.ArticleCount(relevant),
	}
	return final, finish(stats, final)
}

// FilterAll applies the crisis-relevance rule to every issue regardless of
// date. Document extraction produces no highlights, so there is no
// background pass.
func (f *Filter) FilterAll(issues []domain.Issue) ([]domain.Issue, ports.FilterStats) {
	relevant := keep(issues, f.IsCrisisRelevant)
	sortByDate(relevant)
	stats := ports.FilterStats{
		PostCutoffIssues: len(issues),
		ArticlesBefore:   domain.ArticleCount(issues),
		ArticlesAfter:    domain.ArticleCount(relevant),
	}
	return relevant, finish(stats, relevant)
}

// keep returns copies of the issues holding only accepted articles. Issues
// left empty are dropped.
func keep(issues []domain.Issue, accept func(domain.Article) bool) []domain.Issue {
	out := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		articles := make([]domain.Article, 0, len(issue.Articles))
		for _, a := range issue.Articles {
			if accept(a) {
				articles = append(articles, a)
			}
		}
		if len(articles) == 0 {
			continue
		}
		issue.Articles = articles
		out = append(out, issue)
	}
	return out
}

func sortByDate(issues []domain.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Date < issues[j].Date
	})
}

func finish(stats ports.FilterStats, final []domain.Issue) ports.FilterStats {
	stats.FinalIssues = len(final)
	stats.FinalArticles = domain.ArticleCount(final)
	stats.TagCounts = TagCounts(final)
	return stats
}

// TagCounts tallies tag occurrences across all articles.
func TagCounts(issues []domain.Issue) map[string]int {
	counts := map[string]int{}
	for _, issue := range issues {
		for _, a := range issue.Articles {
			for _, t := range a.Tags {
				counts[t]++
			}
		}
	}
	return counts
}
