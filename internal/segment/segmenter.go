package segment

import (
	"context"
	"fmt"
	"os"

	"BulletinTimeline/internal/domain"
)

// Segmenter captures one article segmentation strategy.
type Segmenter interface {
	Name() string
	Segment(ctx context.Context, path string) ([]domain.Issue, error)
}

var (
	_ Segmenter = (*StreamSegmenter)(nil)
	_ Segmenter = (*DocumentSegmenter)(nil)
)

// Registry keeps a mapping from variant names to their implementations.
type Registry struct {
	segmenters map[string]Segmenter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{segmenters: map[string]Segmenter{}}
}

// Register adds or replaces a segmenter implementation.
func (r *Registry) Register(s Segmenter) {
	if r.segmenters == nil {
		r.segmenters = map[string]Segmenter{}
	}
	r.segmenters[s.Name()] = s
}

// Resolve returns a segmenter by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Segmenter, error) {
	if s, ok := r.segmenters[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("segmenter %s is not registered", name)
}

// DetectVariant picks the variant from the input shape: a directory holds
// per-month documents, a file is a plain-text dump.
func DetectVariant(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrSourceUnreadable, path, err)
	}
	if info.IsDir() {
		return VariantDocuments, nil
	}
	return VariantLines, nil
}
