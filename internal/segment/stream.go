package segment

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"BulletinTimeline/internal/domain"
)

// VariantLines names the plain-text dump segmenter.
const VariantLines = "lines"

var (
	sectionPrefixExpr = regexp.MustCompile(`(?i)^(ISSUE ANALYSIS|HOT ISSUE|HOT REPORT|EDITOR'S CHOICE|MEMO:|주요 경제|주목할 만한|Update|Latest|별첨|ISSUE Check)`)
	numberedExpr      = regexp.MustCompile(`^\d+\.\s*`)
	// Pure section markers: never articles.
	sectionMarkerExpr = regexp.MustCompile(`(?i)^(주요 경제 외교 뉴스|경제통계|주목할 만한 경제 통계|별첨|Update 경제통계|Latest statistics)$`)
)

// StreamSegmenter reads a newline-delimited dump with issue and article
// headers embedded as literal lines.
type StreamSegmenter struct{}

// NewStreamSegmenter returns the line-stream strategy.
func NewStreamSegmenter() *StreamSegmenter {
	return &StreamSegmenter{}
}

// Name identifies the strategy inside the registry.
func (s *StreamSegmenter) Name() string {
	return VariantLines
}

// Segment reads the dump at path and partitions it into issues and articles.
func (s *StreamSegmenter) Segment(_ context.Context, path string) ([]domain.Issue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnreadable, path, err)
	}
	return SegmentStream(Lines(string(raw), false)), nil
}

// SegmentStream builds issues from already trimmed, non-empty lines.
func SegmentStream(lines []string) []domain.Issue {
	blocks := SplitIssues(lines)
	issues := make([]domain.Issue, 0, len(blocks))
	for _, block := range blocks {
		issue := domain.Issue{
			Date:     block.Header.Date,
			Label:    block.Header.Label,
			IssueNum: block.Header.IssueNum,
			Articles: []domain.Article{},
		}
		for _, line := range block.Lines {
			if line == "" || sectionMarkerExpr.MatchString(line) {
				continue
			}
			isAnalysis := sectionPrefixExpr.MatchString(line)
			if !isAnalysis && !numberedExpr.MatchString(line) {
				continue
			}
			kind := domain.TypeNews
			if isAnalysis {
				kind = domain.TypeAnalysis
			}
			issue.Articles = append(issue.Articles, domain.Article{
				ID:     ArticleID(issue.IssueNum, len(issue.Articles)),
				Title:  line,
				Type:   kind,
				Tags:   []string{},
				People: []string{},
			})
		}
		issues = append(issues, issue)
	}
	return issues
}

// ArticleID formats the per-issue article identifier.
func ArticleID(issueNum, index int) string {
	return fmt.Sprintf("%d-%d", issueNum, index)
}
