package domain

// ArticleType distinguishes lead analysis pieces from routine news lines.
type ArticleType string

const (
	TypeAnalysis ArticleType = "analysis"
	TypeNews     ArticleType = "news"
)

// Article is one discrete news or analysis item within an issue.
type Article struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	TitleEn     string      `json:"titleEn,omitempty"`
	Type        ArticleType `json:"type"`
	Tags        []string    `json:"tags"`
	People      []string    `json:"people"`
	IsHighlight bool        `json:"isHighlight"`
	Body        string      `json:"body,omitempty"`
}

// HasTag reports whether the article carries the given topic label.
func (a Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether at least one of the labels is present.
func (a Article) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if a.HasTag(t) {
			return true
		}
	}
	return false
}

// Issue is one monthly bulletin. Date is "YYYY-MM" and orders issues lexically.
type Issue struct {
	Date         string    `json:"date"`
	Label        string    `json:"label"`
	IssueNum     int       `json:"issueNum"`
	Articles     []Article `json:"articles"`
	IsBackground bool      `json:"isBackground,omitempty"`
}

// ArticleCount sums articles across issues.
func ArticleCount(issues []Issue) int {
	total := 0
	for _, issue := range issues {
		total += len(issue.Articles)
	}
	return total
}

// Dataset is the document consumed by the static timeline.
type Dataset struct {
	Issues []Issue `json:"issues"`
}
