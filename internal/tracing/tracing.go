// Package tracing configures OpenTelemetry tracing for wordhoard runs.
// When tracing is disabled the global no-op provider stays in place and
// StartSpan remains safe to call.
package tracing

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "wordhoard"

// Config holds tracing configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	SessionID      string
	Enabled        bool
	OTLPEndpoint   string // empty selects the stdout exporter
	// Writer receives stdout exporter output; stderr when nil, since
	// stdout carries MCP traffic
	Writer io.Writer
}

// Setup installs a tracer provider and returns its shutdown function
func Setup(ctx context.Context, config Config) (func(context.Context) error, error) {
	if !config.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	if config.ServiceName == "" {
		config.ServiceName = TracerName
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
	}
	if config.SessionID != "" {
		attrs = append(attrs, attribute.String("wordhoard.session_id", config.SessionID))
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, attrs...),
	)
	if err != nil {
		return nil, err
	}

	var exporter sdktrace.SpanExporter
	if config.OTLPEndpoint != "" {
		exporter, err = otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(config.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	} else {
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(exportWriter(config)),
			stdouttrace.WithPrettyPrint(),
		)
	}
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

func exportWriter(config Config) io.Writer {
	if config.Writer != nil {
		return config.Writer
	}
	return os.Stderr
}

// StartSpan starts a span on the wordhoard tracer
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, opts...)
}

// AddLookupAttributes tags a span with the word and lookup kind
func AddLookupAttributes(span trace.Span, word, kind string) {
	span.SetAttributes(
		attribute.String("wordhoard.word", word),
		attribute.String("wordhoard.lookup.kind", kind),
	)
}

// RecordError records err on the span when non-nil
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}
