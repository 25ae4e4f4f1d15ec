package telemetry

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"BulletinTimeline/internal/ports"
)

const instrumentationScope = "BulletinTimeline"

// Init installs a meter provider. With stdout disabled a no-op provider is
// used. The returned function flushes and shuts the provider down.
func Init(stdout bool) (func(context.Context) error, error) {
	if !stdout {
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
		return func(context.Context) error { return nil }, nil
	}
	exp, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(
		sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(15*time.Second)),
	))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// MetricsObserver records pipeline counters on an OpenTelemetry meter.
type MetricsObserver struct {
	issues       metric.Int64Counter
	articles     metric.Int64Counter
	kept         metric.Int64Counter
	tags         metric.Int64Counter
	translations metric.Int64Counter
	warnings     metric.Int64Counter
}

var _ ports.Observer = (*MetricsObserver)(nil)

// NewMetricsObserver creates the counters on meter; nil uses the global
// provider.
func NewMetricsObserver(meter metric.Meter) (*MetricsObserver, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationScope)
	}
	var (
		o   MetricsObserver
		err error
	)
	if o.issues, err = meter.Int64Counter("bulletin.issues.segmented"); err != nil {
		return nil, err
	}
	if o.articles, err = meter.Int64Counter("bulletin.articles.segmented"); err != nil {
		return nil, err
	}
	if o.kept, err = meter.Int64Counter("bulletin.articles.kept"); err != nil {
		return nil, err
	}
	if o.tags, err = meter.Int64Counter("bulletin.tags.assigned"); err != nil {
		return nil, err
	}
	if o.translations, err = meter.Int64Counter("bulletin.translations"); err != nil {
		return nil, err
	}
	if o.warnings, err = meter.Int64Counter("bulletin.warnings"); err != nil {
		return nil, err
	}
	return &o, nil
}

func (o *MetricsObserver) Segmented(s ports.SegmentStats) {
	ctx := context.Background()
	variant := metric.WithAttributes(attribute.String("variant", s.Variant))
	o.issues.Add(ctx, int64(s.Issues), variant)
	o.articles.Add(ctx, int64(s.Articles), variant)
}

func (o *MetricsObserver) Filtered(s ports.FilterStats) {
	ctx := context.Background()
	o.kept.Add(ctx, int64(s.FinalArticles))
	for tag, n := range s.TagCounts {
		o.tags.Add(ctx, int64(n), metric.WithAttributes(attribute.String("tag", tag)))
	}
}

func (o *MetricsObserver) TranslateProgress(int, int) {}

func (o *MetricsObserver) Translated(s ports.TranslateStats) {
	ctx := context.Background()
	o.translations.Add(ctx, int64(s.Cached), metric.WithAttributes(attribute.String("result", "cached")))
	o.translations.Add(ctx, int64(s.Requested-s.Failed), metric.WithAttributes(attribute.String("result", "translated")))
	o.translations.Add(ctx, int64(s.Failed), metric.WithAttributes(attribute.String("result", "failed")))
}

func (o *MetricsObserver) Warn(string, ...any) {
	o.warnings.Add(context.Background(), 1)
}
