package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetupNoopWhenDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Options{ServiceName: "test", Exporter: ExporterNone})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupStdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(context.Background(), Options{
		ServiceName: "ballotpool-test",
		Exporter:    ExporterStdout,
		Writer:      &buf,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "registry.vote")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
	if !strings.Contains(buf.String(), "registry.vote") {
		t.Fatalf("expected exported span, got %q", buf.String())
	}
}

func TestSetupCreatesOTLPProvider(t *testing.T) {
	// Non-routable address so no export happens.
	shutdown, err := Setup(context.Background(), Options{
		ServiceName: "ballotpool-test",
		Exporter:    ExporterOTLP,
		Endpoint:    "http://192.0.2.1:4318",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupRejectsUnknownExporter(t *testing.T) {
	if _, err := Setup(context.Background(), Options{Exporter: "zipkin"}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := Setup(context.Background(), Options{Exporter: ExporterOTLP}); err == nil {
		t.Fatalf("expected missing endpoint error")
	}
}
