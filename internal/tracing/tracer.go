package tracing

import (
	"context"

	"micebot/internal/config"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// Init registers the global propagator and, when tracing is enabled, a Jaeger
// backed tracer provider. When disabled the global no-op provider stays in
// place and the returned shutdown does nothing.
func Init(cfg config.TracingConfig, logger zerolog.Logger) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	if !cfg.Enabled {
		logger.Debug().Msg("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	tp, err := InitTracerProvider(cfg.ServiceName, cfg.Endpoint)
	if err != nil {
		logger.Error().Err(err).Str("endpoint", cfg.Endpoint).Msg("failed to initialise tracing")
		return nil, err
	}

	logger.Info().
		Str("service_name", cfg.ServiceName).
		Str("endpoint", cfg.Endpoint).
		Msg("tracing initialised")

	return tp.Shutdown, nil
}

// InitTracerProvider initializes and registers a Jaeger TracerProvider.
func InitTracerProvider(serviceName, jaegerEndpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)

	return tp, nil
}
