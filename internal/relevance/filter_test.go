package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BulletinTimeline/internal/classify"
	"BulletinTimeline/internal/domain"
)

func news(id, title string, tags ...string) domain.Article {
	if tags == nil {
		tags = []string{}
	}
	return domain.Article{ID: id, Title: title, Type: domain.TypeNews, Tags: tags, People: []string{}}
}

func highlight(a domain.Article) domain.Article {
	a.IsHighlight = true
	return a
}

func titles(issue domain.Issue) []string {
	out := make([]string, 0, len(issue.Articles))
	for _, a := range issue.Articles {
		out = append(out, a.Title)
	}
	return out
}

func TestIsBackground(t *testing.T) {
	t.Parallel()

	f := NewDefault("")
	cases := []struct {
		name    string
		article domain.Article
		want    bool
	}{
		{name: "not highlight", article: news("1", "1. 군부 성명", classify.TagCoup), want: false},
		{name: "critical tag", article: highlight(news("2", "1. 군부 성명", classify.TagCoup)), want: true},
		{name: "pre-event keyword", article: highlight(news("3", "1. 총선 결과 발표", classify.TagEconomy)), want: true},
		{name: "highlight without evidence", article: highlight(news("4", "1. 환율 동향", classify.TagEconomy)), want: false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, f.IsBackground(tc.article), tc.name)
	}
}

func TestIsCrisisRelevant(t *testing.T) {
	t.Parallel()

	f := NewDefault("")
	withPeople := news("p", "1. 정례 브리핑")
	withPeople.People = []string{"China"}

	cases := []struct {
		name    string
		article domain.Article
		want    bool
	}{
		{name: "crisis tag beats denylist", article: news("a", "1. 군정 골프장 개장", classify.TagCoup), want: true},
		{name: "entity", article: withPeople, want: true},
		{name: "highlight", article: highlight(news("h", "1. 정례 브리핑")), want: true},
		{name: "denylist beats economy", article: news("d", "1. 양곤 아파트 분양 시작", classify.TagEconomy), want: false},
		{name: "denylist", article: news("s", "1. 미얀마 축구 대표팀 승리"), want: false},
		{name: "crisis keyword", article: news("k", "1. 코로나 확진자 급증"), want: true},
		{name: "economy kept", article: news("e", "1. 환율 급등", classify.TagEconomy), want: true},
		{name: "energy kept", article: news("g", "1. 신규 발전소 가동", classify.TagEnergy), want: true},
		{name: "nothing", article: news("n", "1. 신규 노선 취항"), want: false},
		{name: "indonesia only", article: news("i", "1. 인도네시아 항공 노선 취항"), want: false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, f.IsCrisisRelevant(tc.article), tc.name)
	}
}

func TestCurate(t *testing.T) {
	t.Parallel()

	issues := []domain.Issue{
		{Date: "2021-03", IssueNum: 62, Articles: []domain.Article{
			news("62-0", "1. 환율 급등", classify.TagEconomy),
			news("62-1", "1. 미얀마 축구 대표팀 승리"),
			news("62-2", "1. 코로나 확진자 급증"),
		}},
		{Date: "2020-05", IssueNum: 52, Articles: []domain.Article{
			news("52-0", "1. 양곤 신규 노선", classify.TagEconomy),
		}},
		{Date: "2020-11", IssueNum: 58, Articles: []domain.Article{
			highlight(news("58-0", "1. 총선 결과 발표")),
			news("58-1", "1. 군부 성명", classify.TagCoup),
		}},
		{Date: "2021-02", IssueNum: 61, Articles: []domain.Article{
			news("61-0", "1. 신규 노선 취항"),
		}},
	}

	final, stats := NewDefault("2021-02").Curate(issues)
	require.Len(t, final, 2)

	assert.Equal(t, "2020-11", final[0].Date)
	assert.True(t, final[0].IsBackground)
	assert.Equal(t, []string{"1. 총선 결과 발표"}, titles(final[0]))

	assert.Equal(t, "2021-03", final[1].Date)
	assert.False(t, final[1].IsBackground)
	assert.Equal(t, []string{"1. 환율 급등", "1. 코로나 확진자 급증"}, titles(final[1]))

	assert.Equal(t, 1, stats.BackgroundIssues)
	assert.Equal(t, 1, stats.BackgroundArticles)
	assert.Equal(t, 2, stats.PostCutoffIssues)
	assert.Equal(t, 4, stats.ArticlesBefore)
	assert.Equal(t, 2, stats.ArticlesAfter)
	assert.Equal(t, 2, stats.FinalIssues)
	assert.Equal(t, 3, stats.FinalArticles)
	assert.Equal(t, map[string]int{classify.TagEconomy: 1}, stats.TagCounts)

	assert.Len(t, issues[0].Articles, 3, "input issues are not modified")
	assert.False(t, issues[2].IsBackground)
}

func TestFilterAllIgnoresCutoff(t *testing.T) {
	t.Parallel()

	issues := []domain.Issue{
		{Date: "2022-01", Articles: []domain.Article{news("1-0", "ISSUE ANALYSIS 군정 1년", classify.TagCoup)}},
		{Date: "2019-06", Articles: []domain.Article{
			news("2-0", "ISSUE ANALYSIS 양곤 관광 산업"),
			news("2-1", "HOT ISSUE 전력난", classify.TagEnergy),
		}},
	}

	final, stats := NewDefault("").FilterAll(issues)
	require.Len(t, final, 2)
	assert.Equal(t, "2019-06", final[0].Date)
	assert.Equal(t, []string{"HOT ISSUE 전력난"}, titles(final[0]))
	assert.False(t, final[0].IsBackground)
	assert.Equal(t, 2, stats.FinalArticles)
	assert.Zero(t, stats.BackgroundIssues)
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParsePolicy([]byte(`
crisisTags: [coup]
crisisKeywords: ['홍수']
alwaysKeepTags: []
`), "2022-01")
	require.NoError(t, err)
	assert.Equal(t, "2022-01", p.Cutoff)

	f := New(p)
	assert.True(t, f.IsCrisisRelevant(news("1", "1. 만달레이 홍수")))
	assert.False(t, f.IsCrisisRelevant(news("2", "1. 환율 급등", classify.TagEconomy)))

	assert.Equal(t, DefaultCutoff, DefaultPolicy("").Cutoff)

	_, err = ParsePolicy([]byte("irrelevant: ['(']"), "")
	assert.Error(t, err)
}
