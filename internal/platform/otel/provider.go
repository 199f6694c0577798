// Package otel wires OpenTelemetry tracing for the service.
package otel

import (
	"context"
	"strings"

	"github.com/louisbranch/deliberate.thinking/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// otelEnv holds env-parsed tracing configuration.
type otelEnv struct {
	Endpoint string `env:"DELIBERATE_OTEL_ENDPOINT"`
	Enabled  string `env:"DELIBERATE_OTEL_ENABLED"`
}

// Setup initialises OpenTelemetry tracing for the given service.
//
// Tracing is opt-in: when DELIBERATE_OTEL_ENDPOINT is empty or
// DELIBERATE_OTEL_ENABLED is "false", Setup returns a no-op shutdown
// function and no global provider is registered. Spans started through the
// global tracer are then dropped by the default no-op provider.
//
// The returned shutdown function flushes pending spans and should be deferred
// by the caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	var raw otelEnv
	if err := config.ParseEnv(&raw); err != nil {
		return noop, err
	}
	if strings.EqualFold(strings.TrimSpace(raw.Enabled), "false") {
		return noop, nil
	}
	endpoint := strings.TrimSpace(raw.Endpoint)
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
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
