package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coach-match-workers/internal/common/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const instrumentationName = "coach-match-workers"

type Config struct {
	ServiceName    string
	ServiceVersion string
	JaegerEndpoint string
	SampleRatio    float64
	// Registerer receives the otel prometheus collector; nil means the default registry.
	Registerer prometheus.Registerer
}

// Observability owns the process-wide meter and tracer providers.
type Observability struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

// New installs a meter provider exported through Prometheus and, when a Jaeger
// endpoint is configured, a sampling tracer provider. Both become the otel globals.
func New(cfg Config) (*Observability, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	var opts []otelprom.Option
	if cfg.Registerer != nil {
		opts = append(opts, otelprom.WithRegisterer(cfg.Registerer))
	}
	exporter, err := otelprom.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	o := &Observability{
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exporter),
			sdkmetric.WithResource(res),
		),
	}
	otel.SetMeterProvider(o.meterProvider)

	if cfg.JaegerEndpoint == "" {
		return o, nil
	}

	spans, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("create jaeger exporter: %w", err)
	}

	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	o.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spans),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(o.tracerProvider)
	return o, nil
}

// Shutdown flushes pending spans and metrics.
func (o *Observability) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracerProvider != nil {
		errs = append(errs, o.tracerProvider.Shutdown(ctx))
	}
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

type instruments struct {
	jobs        otelmetric.Int64Counter
	jobDuration otelmetric.Float64Histogram
	matchScore  otelmetric.Int64Histogram
}

func newInstruments() instruments {
	meter := otel.Meter(instrumentationName)

	jobs, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	matchScore, _ := meter.Int64Histogram(
		"match.score",
		otelmetric.WithDescription("Computed coach match scores"),
	)
	return instruments{jobs: jobs, jobDuration: jobDuration, matchScore: matchScore}
}

// Instruments are created against the global provider, which forwards to
// whatever provider New installs later.
var global = newInstruments()

func recordJob(ctx context.Context, taskType, status string, d time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	)
	global.jobs.Add(ctx, 1, attrs)
	global.jobDuration.Record(ctx, float64(d.Microseconds())/1000, attrs)
}

// RecordMatchScore records one computed score.
func RecordMatchScore(ctx context.Context, taskType string, score int) {
	metrics.MatchScore.Observe(float64(score))
	global.matchScore.Record(ctx, int64(score), otelmetric.WithAttributes(attribute.String("task_type", taskType)))
}
