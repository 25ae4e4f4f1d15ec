package classify

import (
	"strings"

	"BulletinTimeline/internal/domain"
)

// Topic labels referenced by policy code.
const (
	TagCoup           = "coup"
	TagSanctions      = "sanctions"
	TagEconomy        = "economy"
	TagHumanRights    = "human_rights"
	TagChina          = "china"
	TagResistance     = "resistance"
	TagEthnicConflict = "ethnic_conflict"
	TagEnergy         = "energy"
	TagInternational  = "international"
	TagAungSanSuuKyi  = "aung_san_suu_kyi"
)

const bodyExcerptRunes = 300

// Classifier assigns topic tags, entity labels and the highlight flag.
type Classifier struct {
	catalog Catalog
}

// New wraps a compiled catalog.
func New(catalog Catalog) *Classifier {
	return &Classifier{catalog: catalog}
}

// NewDefault uses the built-in catalog.
func NewDefault() *Classifier {
	return New(DefaultCatalog())
}

// Catalog exposes the rules in use.
func (c *Classifier) Catalog() Catalog {
	return c.catalog
}

// Tags returns every tag whose rule fires, in catalog order.
func (c *Classifier) Tags(text string) []string {
	return fire(c.catalog.Tags, text)
}

// People returns every entity label whose rule fires, in catalog order.
func (c *Classifier) People(text string) []string {
	return fire(c.catalog.People, text)
}

func fire(rules []Rule, text string) []string {
	out := []string{}
	for _, r := range rules {
		if r.Fires(text) {
			out = append(out, r.Label)
		}
	}
	return out
}

// IsHighlight decides the editorial-importance flag for a line-stream article.
func (c *Classifier) IsHighlight(title string, kind domain.ArticleType, tags []string) bool {
	if kind == domain.TypeAnalysis {
		return true
	}
	a := domain.Article{Tags: tags}
	if a.HasTag(TagCoup) && (a.HasTag(TagSanctions) || a.HasTag(TagHumanRights)) {
		return true
	}
	return MatchAny(c.catalog.Highlights, title)
}

// Annotate attaches tags and people to the article. Body text, when present,
// contributes a short excerpt. The highlight flag is only decided when
// withHighlight is set.
func (c *Classifier) Annotate(a domain.Article, withHighlight bool) domain.Article {
	text := a.Title
	if a.Body != "" {
		text += " " + excerpt(a.Body, bodyExcerptRunes)
	}
	a.Tags = c.Tags(text)
	a.People = c.People(text)
	if withHighlight {
		a.IsHighlight = c.IsHighlight(a.Title, a.Type, a.Tags)
	}
	return a
}

// AnnotateIssues classifies every article in place and returns the issues.
func (c *Classifier) AnnotateIssues(issues []domain.Issue, withHighlight bool) []domain.Issue {
	for i := range issues {
		for j := range issues[i].Articles {
			issues[i].Articles[j] = c.Annotate(issues[i].Articles[j], withHighlight)
		}
	}
	return issues
}

func excerpt(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
