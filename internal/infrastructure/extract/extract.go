// Package extract turns bulletin documents on disk into plain text, one
// extractor per file format.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"BulletinTimeline/internal/domain"
	"BulletinTimeline/internal/ports"
)

// Registry dispatches to an extractor by lower-cased file extension.
type Registry struct {
	byExt map[string]ports.TextExtractor
}

var _ ports.TextExtractor = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]ports.TextExtractor)}
}

// NewDefaultRegistry knows every supported bulletin format.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(PDF{}, ".pdf")
	r.Register(DOCX{}, ".docx")
	r.Register(HTML{}, ".html", ".htm")
	r.Register(Text{}, ".txt")
	return r
}

// Register binds an extractor to one or more extensions, replacing earlier bindings.
func (r *Registry) Register(e ports.TextExtractor, exts ...string) {
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// Supports reports whether a file with this path has a registered format.
// The document segmenter consults it before extraction.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract picks the extractor for path and rejects blank results.
func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}
	text, err := e.Extract(ctx, path)
	if err != nil {
		return "", err
	}
	text = sanitize(text)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrNoExtractableText, path)
	}
	return text, nil
}

// sanitize drops NUL bytes and the replacement runes broken encodings leave behind.
func sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 || r == '�' {
			return -1
		}
		return r
	}, text)
}

func unreadable(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrSourceUnreadable, path, err)
}
