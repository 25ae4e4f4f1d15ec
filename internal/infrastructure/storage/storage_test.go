package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BulletinTimeline/internal/domain"
)

func sampleIssues() []domain.Issue {
	return []domain.Issue{
		{Date: "2020-11", Label: "2020년 11월호", IssueNum: 58, IsBackground: true, Articles: []domain.Article{
			{ID: "58-0", Title: "1. 총선 결과 <발표>", Type: domain.TypeNews, Tags: []string{}, People: []string{}, IsHighlight: true},
		}},
		{Date: "2021-02", Label: "2021년 2월호", IssueNum: 61, Articles: []domain.Article{
			{ID: "61-0", Title: "ISSUE ANALYSIS 쿠데타 & 제재", TitleEn: "Coup & sanctions", Type: domain.TypeAnalysis,
				Tags: []string{"coup", "sanctions"}, People: []string{"Min Aung Hlaing"}, IsHighlight: true, Body: "## 배경\n\n본문"},
			{ID: "61-1", Title: "1. 중국 외교부 성명", Type: domain.TypeNews, Tags: []string{"china"}, People: []string{"China"}},
		}},
		{Date: "2021-03", Label: "2021년 3월호", IssueNum: 62, Articles: []domain.Article{}},
	}
}

func TestDatasetFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "data.json")
	store := NewDatasetFile(path)
	ctx := context.Background()

	want := domain.Dataset{Issues: sampleIssues()}
	require.NoError(t, store.Write(ctx, want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "\n", "dataset is compact")
	assert.Contains(t, string(raw), "<발표>", "no HTML escaping")
	assert.Contains(t, string(raw), `"isHighlight":true`)
	assert.NotContains(t, string(raw), `"titleEn":""`)

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDatasetFileEmptyAndMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewDatasetFile(filepath.Join(dir, "data.json"))
	require.NoError(t, store.Write(context.Background(), domain.Dataset{}))

	raw, err := os.ReadFile(filepath.Join(dir, "data.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"issues":[]}`, string(raw))

	_, err = NewDatasetFile(filepath.Join(dir, "missing.json")).Read(context.Background())
	assert.ErrorIs(t, err, domain.ErrSourceUnreadable)
}

func TestCacheFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "translations_cache.json")
	cache := NewCacheFile(path)
	ctx := context.Background()

	entries, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "missing file is an empty cache")

	require.NoError(t, cache.Save(ctx, map[string]string{"쿠데타 & 제재": "Coup & sanctions"}))
	require.NoError(t, cache.Save(ctx, map[string]string{"중국": "China"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \""), "two-space indentation")
	assert.Contains(t, string(raw), "Coup & sanctions")

	entries, err = cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"쿠데타 & 제재": "Coup & sanctions", "중국": "China"}, entries)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), "cache stays world-readable")

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "cache-*.json"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCacheFileCorrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewCacheFile(path).Load(context.Background())
	assert.Error(t, err)
}

func TestSQLiteArchiveRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	archive, err := OpenSQLiteArchive(ctx, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })
	archive.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	want := sampleIssues()
	runID, err := archive.SaveRun(ctx, "lines", want)
	require.NoError(t, err)
	assert.Len(t, runID, 36)

	other, err := archive.SaveRun(ctx, "documents", want[:1])
	require.NoError(t, err)
	assert.NotEqual(t, runID, other)

	got, err := archive.LoadRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = archive.LoadRun(ctx, other)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = archive.LoadRun(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}
