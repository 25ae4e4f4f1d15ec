package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"BulletinTimeline/internal/domain"
	"BulletinTimeline/internal/ports"
)

// DatasetFile stores the dataset as one compact JSON document.
type DatasetFile struct {
	path string
}

var _ ports.DatasetStore = (*DatasetFile)(nil)

// NewDatasetFile points at the dataset location.
func NewDatasetFile(path string) *DatasetFile {
	return &DatasetFile{path: path}
}

// Read decodes the dataset file.
func (f *DatasetFile) Read(_ context.Context) (domain.Dataset, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnreadable, f.path, err)
	}
	var ds domain.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("decode dataset %s: %w", f.path, err)
	}
	return ds, nil
}

// Write replaces the dataset file with compact JSON.
func (f *DatasetFile) Write(_ context.Context, ds domain.Dataset) error {
	if ds.Issues == nil {
		ds.Issues = []domain.Issue{}
	}
	payload, err := marshal(ds, "")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := ensureParent(f.path); err != nil {
		return err
	}
	if err := os.WriteFile(f.path, payload, 0o644); err != nil {
		return fmt.Errorf("write dataset %s: %w", f.path, err)
	}
	return nil
}

// marshal encodes v without HTML escaping; a non-empty indent pretty-prints.
func marshal(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
