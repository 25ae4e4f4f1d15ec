package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, td, th, pre, blockquote"

// HTML reads bulletins saved as web pages, one line per block element.
type HTML struct{}

func (HTML) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", unreadable(path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("parse html %s: %w", path, err)
	}
	return htmlText(doc), nil
}

// htmlText keeps the innermost block elements so nested lists do not repeat
// text. A blank line follows headings to keep them recognizable downstream.
func htmlText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	root.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		line := strings.Join(strings.Fields(s.Text()), " ")
		if line == "" {
			return
		}
		heading := isHeading(goquery.NodeName(s))
		if heading {
			b.WriteString("\n")
		}
		b.WriteString(line)
		b.WriteString("\n")
		if heading {
			b.WriteString("\n")
		}
	})

	if b.Len() == 0 {
		return strings.TrimSpace(root.Text())
	}
	return b.String()
}

func isHeading(node string) bool {
	switch node {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}
