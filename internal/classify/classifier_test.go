package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BulletinTimeline/internal/domain"
)

func TestTagsAndPeople(t *testing.T) {
	t.Parallel()

	c := NewDefault()
	cases := []struct {
		text   string
		tags   []string
		people []string
	}{
		{text: "1. 미얀마 군부 쿠데타 선언", tags: []string{TagCoup}, people: []string{}},
		{text: "민 아웅 흘라잉 총사령관 중국 방문", tags: []string{TagCoup, TagChina}, people: []string{"Min Aung Hlaing", "China"}},
		{text: "NUG, 인민방위군 창설 발표", tags: []string{TagResistance}, people: []string{"NUG"}},
		{text: "nug 관계자 인터뷰", tags: []string{TagResistance}, people: []string{}},
		{text: "인도네시아 외교부 성명", tags: []string{}, people: []string{}},
		{text: "인도 정부, 국경 무역 재개", tags: []string{TagEconomy, TagInternational}, people: []string{}},
		{text: "인도네시아와 인도 정상회담", tags: []string{TagInternational}, people: []string{}},
		{text: "미국 재무부, 군 소유 기업 제재", tags: []string{TagSanctions, TagInternational}, people: []string{"USA"}},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.tags, c.Tags(tc.text), tc.text)
		assert.Equal(t, tc.people, c.People(tc.text), tc.text)
	}
}

func TestTagsDeterministic(t *testing.T) {
	t.Parallel()

	c := NewDefault()
	text := "아세안 특별정상회의, 쿠데타 군정에 제재 경고"
	first := c.Tags(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Tags(text))
	}
}

func TestIsHighlight(t *testing.T) {
	t.Parallel()

	c := NewDefault()
	cases := []struct {
		name  string
		title string
		kind  domain.ArticleType
		tags  []string
		want  bool
	}{
		{name: "analysis", title: "ISSUE ANALYSIS 환율 동향", kind: domain.TypeAnalysis, tags: []string{TagEconomy}, want: true},
		{name: "coup with sanctions", title: "1. 군정 지도부 자산 동결", kind: domain.TypeNews, tags: []string{TagCoup, TagSanctions}, want: true},
		{name: "coup with human rights", title: "1. 군정 시위대 구속", kind: domain.TypeNews, tags: []string{TagCoup, TagHumanRights}, want: true},
		{name: "event keyword", title: "1. 미얀마 군부 쿠데타 선언", kind: domain.TypeNews, tags: []string{TagCoup}, want: true},
		{name: "plain coup tag", title: "1. 군정 대변인 기자회견", kind: domain.TypeNews, tags: []string{TagCoup}, want: false},
		{name: "economy news", title: "1. 양곤 부동산 가격 상승", kind: domain.TypeNews, tags: []string{TagEconomy}, want: false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, c.IsHighlight(tc.title, tc.kind, tc.tags), tc.name)
	}
}

func TestAnnotate(t *testing.T) {
	t.Parallel()

	c := NewDefault()
	a := c.Annotate(domain.Article{Title: "1. 미얀마 군부 쿠데타 선언", Type: domain.TypeNews}, true)
	assert.Equal(t, []string{TagCoup}, a.Tags)
	assert.Equal(t, []string{}, a.People)
	assert.True(t, a.IsHighlight)

	doc := c.Annotate(domain.Article{Title: "ISSUE ANALYSIS 월간 동향", Type: domain.TypeAnalysis}, false)
	assert.False(t, doc.IsHighlight, "highlight is left alone when not requested")
}

func TestAnnotateUsesBodyExcerpt(t *testing.T) {
	t.Parallel()

	c := NewDefault()
	early := c.Annotate(domain.Article{Title: "월간 동향", Body: "서방의 제재 확대"}, false)
	assert.Equal(t, []string{TagSanctions}, early.Tags)

	late := c.Annotate(domain.Article{Title: "월간 동향", Body: strings.Repeat("가", bodyExcerptRunes) + " 제재"}, false)
	assert.Empty(t, late.Tags)
}

func TestAnnotateIssues(t *testing.T) {
	t.Parallel()

	issues := []domain.Issue{{Date: "2021-02", Articles: []domain.Article{
		{Title: "1. 중국 외교부 성명", Type: domain.TypeNews},
	}}}
	out := NewDefault().AnnotateIssues(issues, true)
	require.Len(t, out[0].Articles, 1)
	assert.Equal(t, []string{TagChina}, out[0].Articles[0].Tags)
	assert.Equal(t, []string{"China"}, out[0].Articles[0].People)
}

func TestCatalogOrder(t *testing.T) {
	t.Parallel()

	catalog := DefaultCatalog()
	assert.Equal(t, []string{
		TagCoup, TagSanctions, TagEconomy, TagHumanRights, TagChina,
		TagResistance, TagEthnicConflict, TagEnergy, TagInternational, TagAungSanSuuKyi,
	}, catalog.TagLabels())
	assert.Equal(t, []string{
		"Min Aung Hlaing", "Aung San Suu Kyi", "NUG", "ASEAN", "China", "Russia", "Japan", "USA",
	}, catalog.PeopleLabels())
}

func TestParseCatalog(t *testing.T) {
	t.Parallel()

	catalog, err := ParseCatalog([]byte(`
tags:
  - label: ports
    patterns: ['항구', {expr: 'Port', caseSensitive: true}]
highlights: ['개항']
`))
	require.NoError(t, err)
	c := New(catalog)
	assert.Equal(t, []string{"ports"}, c.Tags("Port of Yangon"))
	assert.Empty(t, c.Tags("port of yangon"))
	assert.True(t, c.IsHighlight("신항 개항", domain.TypeNews, nil))

	_, err = ParseCatalog([]byte("tags:\n  - label: a\n    patterns: ['x']\n  - label: a\n    patterns: ['y']\n"))
	assert.ErrorContains(t, err, "duplicate label")

	_, err = ParseCatalog([]byte("tags:\n  - label: a\n    patterns: ['(']\n"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("people:\n  - patterns: ['x']\n"))
	assert.Error(t, err)
}
