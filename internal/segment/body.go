package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// HeadingMarker prefixes heading blocks in a formatted body.
const HeadingMarker = "## "

const blockSeparator = "\n\n"

// BlockKind tells headings from paragraphs.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
)

// BodyBlock is one typed unit of a reflowed article body.
type BodyBlock struct {
	Kind BlockKind
	Text string
}

var (
	pageNumberExpr = regexp.MustCompile(`^\d+$`)
	citationExpr   = regexp.MustCompile(`(?i)^(source:|reference:|출처|참고|자료\s*:|[•·\-*※▶○■□◆])`)
)

// Blocks reflows raw lines into headings and paragraphs. Bare page numbers
// are dropped.
func Blocks(lines []string) []BodyBlock {
	var (
		blocks []BodyBlock
		para   []string
	)
	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, BodyBlock{Kind: BlockParagraph, Text: strings.Join(para, " ")})
			para = nil
		}
	}

	for i, line := range lines {
		switch {
		case line == "":
			flush()
		case pageNumberExpr.MatchString(line):
			continue
		case isHeading(lines, i):
			flush()
			blocks = append(blocks, BodyBlock{Kind: BlockHeading, Text: line})
		default:
			para = append(para, line)
		}
	}
	flush()
	return blocks
}

// FormatBody serializes reflowed blocks into the stored body text.
func FormatBody(lines []string) string {
	blocks := Blocks(lines)
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Kind == BlockHeading {
			parts = append(parts, HeadingMarker+b.Text)
			continue
		}
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, blockSeparator)
}

func isHeading(lines []string, i int) bool {
	line := lines[i]
	n := utf8.RuneCountInString(line)
	if n < 5 || n > 100 {
		return false
	}
	if n > 60 && strings.HasSuffix(line, ".") {
		return false
	}
	if citationExpr.MatchString(line) {
		return false
	}
	prevBlank := i > 0 && lines[i-1] == ""
	nextBlank := i+1 < len(lines) && lines[i+1] == ""
	return prevBlank || nextBlank
}
