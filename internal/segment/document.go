package segment

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"BulletinTimeline/internal/domain"
	"BulletinTimeline/internal/ports"
)

// VariantDocuments names the per-month rich document segmenter.
const VariantDocuments = "documents"

const (
	headerDedupWindow = 5
	minBodyRunes      = 50
	minSyntheticLines = 3
	trivialLineRunes  = 10
)

var (
	bylineExpr     = regexp.MustCompile(`^(글|작성|작성자|필자|정리|기고)\s*[:：]|^(?i:by)\s+\S|^[가-힣]{2,4}\s*(연구원|부관장|관장|위원|교수|대표|기자|소장|팀장)(\s|$|\(|/)|[\w.+-]+@[\w-]+\.[\w.]+`)
	tocPageExpr    = regexp.MustCompile(`\t\d+`)
	leadingNumExpr = regexp.MustCompile(`^\d+\.\s*`)
)

// DocumentSegmenter walks a tree of year folders holding one rich document
// per monthly issue.
type DocumentSegmenter struct {
	extractor ports.TextExtractor
	observer  ports.Observer
}

// NewDocumentSegmenter wires the extraction collaborator. observer may be nil.
func NewDocumentSegmenter(extractor ports.TextExtractor, observer ports.Observer) *DocumentSegmenter {
	return &DocumentSegmenter{extractor: extractor, observer: observer}
}

// Name identifies the strategy inside the registry.
func (d *DocumentSegmenter) Name() string {
	return VariantDocuments
}

// formatFilter is implemented by extractors that know their formats up front.
type formatFilter interface {
	Supports(path string) bool
}

type issueFile struct {
	path   string
	header Header
}

// Segment extracts every recognized document under root into one issue each.
// Unrecognized names, unsupported formats and failing extractions are
// reported and skipped.
func (d *DocumentSegmenter) Segment(ctx context.Context, root string) ([]domain.Issue, error) {
	if d.extractor == nil {
		return nil, errors.New("document segmenter: extractor is not configured")
	}

	files, err := d.collect(root)
	if err != nil {
		return nil, err
	}

	issues := make([]domain.Issue, 0, len(files))
	for ordinal, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := d.extractor.Extract(ctx, f.path)
		if err != nil {
			d.warn("document extraction failed", "path", f.path, "error", err)
			continue
		}
		issues = append(issues, SegmentDocument(f.header, ordinal+1, text))
	}
	return issues, nil
}

func (d *DocumentSegmenter) collect(root string) ([]issueFile, error) {
	var files []issueFile
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			d.warn("cannot read entry", "path", path, "error", err)
			return nil
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || strings.HasPrefix(entry.Name(), "~$") {
			return nil
		}
		header, ok := ParseIssueName(entry.Name())
		if !ok {
			d.warn("unrecognized document name", "path", path, "error", domain.ErrUnrecognizedName)
			return nil
		}
		if filter, ok := d.extractor.(formatFilter); ok && !filter.Supports(path) {
			d.warn("unsupported document format", "path", path, "error", domain.ErrUnsupportedFormat)
			return nil
		}
		files = append(files, issueFile{path: path, header: header})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnreadable, root, err)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].header.Date != files[j].header.Date {
			return files[i].header.Date < files[j].header.Date
		}
		return files[i].path < files[j].path
	})
	return files, nil
}

func (d *DocumentSegmenter) warn(msg string, args ...any) {
	if d.observer != nil {
		d.observer.Warn(msg, args...)
	}
}

// SegmentDocument turns one document's extracted text into an issue. The
// issue number comes from a header line inside the text, then from the
// file name, then from the document's ordinal position.
func SegmentDocument(header Header, ordinal int, text string) domain.Issue {
	lines := Lines(text, true)
	if blocks := SplitIssues(lines); len(blocks) > 0 && blocks[0].Header.IssueNum > 0 {
		header.IssueNum = blocks[0].Header.IssueNum
	}
	if header.IssueNum == 0 {
		header.IssueNum = ordinal
	}

	issue := domain.Issue{
		Date:     header.Date,
		Label:    header.Label,
		IssueNum: header.IssueNum,
		Articles: []domain.Article{},
	}
	for _, sec := range SplitSections(lines) {
		issue.Articles = append(issue.Articles, domain.Article{
			ID:     ArticleID(issue.IssueNum, len(issue.Articles)),
			Title:  sec.Title,
			Type:   domain.TypeAnalysis,
			Tags:   []string{},
			People: []string{},
			Body:   sec.Body,
		})
	}
	return issue
}

// Section is one article recovered from a document.
type Section struct {
	Title string
	Body  string
}

// SplitSections finds section headers and recovers title and body for each,
// dropping table-of-contents entries and other false positives.
func SplitSections(lines []string) []Section {
	starts := headerLines(lines)
	synthetic := false
	if len(starts) == 0 {
		if countNonTrivial(lines) < minSyntheticLines {
			return nil
		}
		starts = []int{0}
		synthetic = true
	}

	var sections []Section
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		from := start + 1
		if synthetic {
			from = start
		}
		if sec, ok := parseSection(lines[from:end]); ok {
			sections = append(sections, sec)
		}
	}
	return sections
}

func headerLines(lines []string) []int {
	var starts []int
	last := -1
	for i, line := range lines {
		if !sectionPrefixExpr.MatchString(line) {
			continue
		}
		if last >= 0 && i-last <= headerDedupWindow {
			continue
		}
		starts = append(starts, i)
		last = i
	}
	return starts
}

func countNonTrivial(lines []string) int {
	n := 0
	for _, line := range lines {
		if utf8.RuneCountInString(line) > trivialLineRunes {
			n++
		}
	}
	return n
}

func parseSection(lines []string) (Section, bool) {
	var fragments []string
	byline := -1
	for i, line := range lines {
		if line == "" || pageNumberExpr.MatchString(line) {
			continue
		}
		if bylineExpr.MatchString(line) {
			byline = i
			break
		}
		fragments = append(fragments, line)
	}
	if byline < 0 {
		return Section{}, false
	}

	rawTitle := strings.Join(fragments, " ")
	if strings.TrimSpace(rawTitle) == "" || tocPageExpr.MatchString(rawTitle) {
		return Section{}, false
	}

	bodyLines := lines[byline+1:]
	for len(bodyLines) > 0 && bodyLines[0] == "" {
		bodyLines = bodyLines[1:]
	}
	body := FormatBody(bodyLines)
	if utf8.RuneCountInString(body) < minBodyRunes {
		return Section{}, false
	}

	return Section{Title: CleanTitle(rawTitle), Body: body}, true
}

// CleanTitle strips a leading list number and page-number fragments and
// collapses whitespace.
func CleanTitle(title string) string {
	title = leadingNumExpr.ReplaceAllString(title, "")
	title = tocPageExpr.ReplaceAllString(title, "")
	return strings.Join(strings.Fields(title), " ")
}
