package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"BulletinTimeline/internal/logging"
	"BulletinTimeline/internal/ports"
)

func TestLogObserver(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	obs := NewLogObserver(logging.NewWriter(&buf, "info"))

	obs.Segmented(ports.SegmentStats{Variant: "lines", Issues: 2, Articles: 5})
	obs.Filtered(ports.FilterStats{FinalIssues: 1, FinalArticles: 3, TagCounts: map[string]int{"economy": 2, "coup": 1}})
	obs.Warn("translation failed", "title", "제목")

	out := buf.String()
	assert.Contains(t, out, "variant=lines issues=2 articles=5")
	assert.Contains(t, out, `msg="tag distribution" coup=1 economy=2`)
	assert.Contains(t, out, "level=WARN")
}

type counting struct {
	Nop
	warns int
}

func (c *counting) Warn(string, ...any) { c.warns++ }

func TestMultiFansOut(t *testing.T) {
	t.Parallel()

	a, b := &counting{}, &counting{}
	m := Multi{a, b, Nop{}}
	m.Warn("x")
	m.Segmented(ports.SegmentStats{})
	assert.Equal(t, 1, a.warns)
	assert.Equal(t, 1, b.warns)
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string, attr attribute.KeyValue) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				if attr.Key != "" {
					want := attribute.NewSet(attr)
					if !dp.Attributes.Equals(&want) {
						continue
					}
				}
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestMetricsObserver(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	obs, err := NewMetricsObserver(provider.Meter("test"))
	require.NoError(t, err)

	obs.Segmented(ports.SegmentStats{Variant: "lines", Issues: 4, Articles: 10})
	obs.Filtered(ports.FilterStats{FinalArticles: 6, TagCounts: map[string]int{"coup": 3}})
	obs.Translated(ports.TranslateStats{Cached: 2, Requested: 5, Failed: 1})
	obs.Warn("x")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	assert.Equal(t, int64(4), sumOf(t, rm, "bulletin.issues.segmented", attribute.String("variant", "lines")))
	assert.Equal(t, int64(10), sumOf(t, rm, "bulletin.articles.segmented", attribute.KeyValue{}))
	assert.Equal(t, int64(6), sumOf(t, rm, "bulletin.articles.kept", attribute.KeyValue{}))
	assert.Equal(t, int64(3), sumOf(t, rm, "bulletin.tags.assigned", attribute.String("tag", "coup")))
	assert.Equal(t, int64(4), sumOf(t, rm, "bulletin.translations", attribute.String("result", "translated")))
	assert.Equal(t, int64(1), sumOf(t, rm, "bulletin.translations", attribute.String("result", "failed")))
	assert.Equal(t, int64(1), sumOf(t, rm, "bulletin.warnings", attribute.KeyValue{}))
}

func TestInitWithoutStdout(t *testing.T) {
	shutdown, err := Init(false)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
