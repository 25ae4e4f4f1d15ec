package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"BulletinTimeline/internal/ports"
)

// CacheFile keeps translations as a pretty-printed JSON object keyed by the
// exact source title.
type CacheFile struct {
	path string
}

var _ ports.TranslationCache = (*CacheFile)(nil)

// NewCacheFile points at the cache location.
func NewCacheFile(path string) *CacheFile {
	return &CacheFile{path: path}
}

// Load returns the cached entries; a missing file is an empty cache.
func (c *CacheFile) Load(_ context.Context) (map[string]string, error) {
	raw, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", c.path, err)
	}
	entries := map[string]string{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", c.path, err)
	}
	return entries, nil
}

// Save merges entries over what is on disk and writes the file through a
// temporary file so an interrupted write keeps the previous checkpoint.
func (c *CacheFile) Save(ctx context.Context, entries map[string]string) error {
	existing, err := c.Load(ctx)
	if err != nil {
		return err
	}
	for k, v := range entries {
		existing[k] = v
	}

	payload, err := marshal(existing, "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := ensureParent(c.path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), "cache-*.json")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("chmod temp cache: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("rename temp cache: %w", err)
	}
	return nil
}
