package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

type Options struct {
	ServiceName string
	Exporter    string
	Endpoint    string
	// Writer receives spans for the stdout exporter; defaults to os.Stdout.
	Writer io.Writer
}

// Setup installs the global tracer provider.
//
// With the "none" exporter no provider is registered and the returned
// shutdown is a no-op. The shutdown function flushes pending spans and should
// be deferred by the caller.
func Setup(ctx context.Context, opts Options) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	var exporter sdktrace.SpanExporter
	switch opts.Exporter {
	case "", ExporterNone:
		return noop, nil
	case ExporterStdout:
		writer := opts.Writer
		if writer == nil {
			writer = os.Stdout
		}
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(writer))
	case ExporterOTLP:
		if opts.Endpoint == "" {
			return noop, fmt.Errorf("otlp exporter requires an endpoint")
		}
		exporter, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(opts.Endpoint))
	default:
		return noop, fmt.Errorf("unsupported tracing exporter %q", opts.Exporter)
	}
	if err != nil {
		return noop, fmt.Errorf("create %s exporter: %w", opts.Exporter, err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
