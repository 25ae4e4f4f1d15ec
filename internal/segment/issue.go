package segment

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	issueHeaderExpr      = regexp.MustCompile(`^(\d{4})년\s*(\d{1,2})월호\s*\(통권\s*(\d+)호\)\s*목차?$`)
	issueHeaderBareExpr  = regexp.MustCompile(`^(\d{4})년\s*(\d{1,2})월호\s*\(통권\s*(\d+)호\)$`)
	issueInauguralExpr   = regexp.MustCompile(`^(\d{4})년\s*(\d{1,2})월호\s*\(창간호\)\s*목차?$`)
	issueNameExpr        = regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월호`)
	issueNumFragmentExpr = regexp.MustCompile(`통권\s*(\d+)\s*호`)
)

// Header is the metadata carried by an issue-header line.
type Header struct {
	Date     string
	Label    string
	IssueNum int
}

// Block is one issue header with the lines that follow it up to the next header.
type Block struct {
	Header Header
	Lines  []string
}

// ParseHeader matches a full line against the issue-header layouts.
func ParseHeader(line string) (Header, bool) {
	for _, expr := range []*regexp.Regexp{issueHeaderExpr, issueHeaderBareExpr} {
		if m := expr.FindStringSubmatch(line); m != nil {
			num, err := strconv.Atoi(m[3])
			if err != nil || num <= 0 {
				return Header{}, false
			}
			return newHeader(m[1], m[2], num), true
		}
	}
	if m := issueInauguralExpr.FindStringSubmatch(line); m != nil {
		return newHeader(m[1], m[2], 1), true
	}
	return Header{}, false
}

// ParseIssueName extracts year and month from a document name such as
// "2021년 2월호.docx". The issue number is taken from a "통권N호" fragment
// when present and is zero otherwise.
func ParseIssueName(name string) (Header, bool) {
	m := issueNameExpr.FindStringSubmatch(name)
	if m == nil {
		return Header{}, false
	}
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return Header{}, false
	}
	num := 0
	if n := issueNumFragmentExpr.FindStringSubmatch(name); n != nil {
		num, _ = strconv.Atoi(n[1])
	}
	return newHeader(m[1], m[2], num), true
}

func newHeader(year, month string, num int) Header {
	m, _ := strconv.Atoi(month)
	return Header{
		Date:     fmt.Sprintf("%s-%02d", year, m),
		Label:    fmt.Sprintf("%s년 %s월호", year, month),
		IssueNum: num,
	}
}

// SplitIssues partitions lines into per-issue blocks. Lines before the first
// header are discarded; zero headers yield zero blocks.
func SplitIssues(lines []string) []Block {
	var (
		blocks  []Block
		current *Block
	)
	for _, line := range lines {
		if header, ok := ParseHeader(line); ok {
			if current != nil {
				blocks = append(blocks, *current)
			}
			current = &Block{Header: header}
			continue
		}
		if current == nil {
			continue
		}
		current.Lines = append(current.Lines, line)
	}
	if current != nil {
		blocks = append(blocks, *current)
	}
	return blocks
}
