package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records run-level measurements through an OpenTelemetry meter
// exported on the default Prometheus registry.
type Observability struct {
	meterProvider *metric.MeterProvider
	runCounter    otelmetric.Int64Counter
	runDuration   otelmetric.Float64Histogram
	slideCounter  otelmetric.Int64Counter
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	runCounter, _ := meter.Int64Counter(
		"composer.runs",
		otelmetric.WithDescription("Number of composition runs"),
	)
	runDuration, _ := meter.Float64Histogram(
		"composer.run.duration",
		otelmetric.WithDescription("Composition run duration"),
		otelmetric.WithUnit("ms"),
	)
	slideCounter, _ := meter.Int64Counter(
		"composer.slides",
		otelmetric.WithDescription("Number of slides emitted per run outcome"),
	)

	return &Observability{
		meterProvider: provider,
		runCounter:    runCounter,
		runDuration:   runDuration,
		slideCounter:  slideCounter,
	}
}

// NewNoop returns an Observability whose recorders do nothing.
func NewNoop() *Observability {
	return &Observability{}
}

func (o *Observability) RecordRun(ctx context.Context, backend, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	)
	if o.runCounter != nil {
		o.runCounter.Add(ctx, 1, attrs)
	}
	if o.runDuration != nil {
		o.runDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordSlides(ctx context.Context, backend string, rendered, skipped int) {
	if o.slideCounter == nil {
		return
	}
	o.slideCounter.Add(ctx, int64(rendered), otelmetric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("outcome", "rendered"),
	))
	o.slideCounter.Add(ctx, int64(skipped), otelmetric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("outcome", "skipped"),
	))
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
