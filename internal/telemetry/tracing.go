package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/flemzord/blogclaw/internal/config"
)

const tracerName = "github.com/flemzord/blogclaw"

// Tracing owns the tracer provider. Without an OTLP endpoint it is a no-op.
type Tracing struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

// NewTracing builds a tracer provider exporting over OTLP/HTTP when
// cfg.OTLPEndpoint is set.
func NewTracing(ctx context.Context, cfg config.TelemetryConfig) (*Tracing, error) {
	if cfg.OTLPEndpoint == "" {
		return &Tracing{
			provider: noop.NewTracerProvider(),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	var opts []otlptracehttp.Option
	if strings.HasPrefix(cfg.OTLPEndpoint, "http://") || strings.HasPrefix(cfg.OTLPEndpoint, "https://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create otlp exporter: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = config.DefaultServiceName
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
	)
	return &Tracing{provider: tp, shutdown: tp.Shutdown}, nil
}

// NewTracingWithProvider wraps an existing provider, e.g. one backed by a
// span recorder.
func NewTracingWithProvider(tp trace.TracerProvider) *Tracing {
	return &Tracing{provider: tp, shutdown: func(context.Context) error { return nil }}
}

// Tracer returns the agent's tracer.
func (t *Tracing) Tracer() trace.Tracer {
	return t.provider.Tracer(tracerName)
}

// Shutdown flushes pending spans.
func (t *Tracing) Shutdown(ctx context.Context) error {
	return t.shutdown(ctx)
}
