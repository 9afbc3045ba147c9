package tracer

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
)

// InitTracer installs the global tracer provider and propagator. With an empty
// endpoint, or when the exporter cannot be built, the returned provider records
// spans without exporting them.
func InitTracer(serviceName, otlpEndpoint string, appLogger *logger.Logger) *sdktrace.TracerProvider {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if otlpEndpoint == "" {
		appLogger.Info("OpenTelemetry export disabled: OTEL_EXPORTER_OTLP_ENDPOINT is not set")
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(otlpEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		appLogger.Error("Failed to create OTLP trace exporter", zap.Error(err), zap.String("endpoint", otlpEndpoint))
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		appLogger.Warn("Failed to merge OpenTelemetry resource, using default", zap.Error(err))
		res = resource.Default()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	appLogger.Info("OpenTelemetry tracer initialized",
		zap.String("service_name", serviceName),
		zap.String("otlp_endpoint", otlpEndpoint),
	)
	return tp
}
