package pubsub

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracingConfig holds configuration for OpenTelemetry tracing of the bus.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	ZipkinURL   string
}

// LoadTracingConfigFromEnv reads the tracing configuration from the environment.
func LoadTracingConfigFromEnv() TracingConfig {
	config := TracingConfig{
		Enabled:     false,
		ServiceName: "palaver",
		ZipkinURL:   "http://localhost:9411/api/v2/spans",
	}

	if enabledStr := os.Getenv("PUBSUB_TRACING_ENABLED"); enabledStr != "" {
		if enabled, err := strconv.ParseBool(enabledStr); err == nil {
			config.Enabled = enabled
		}
	}
	if serviceName := os.Getenv("PUBSUB_TRACING_SERVICE_NAME"); serviceName != "" {
		config.ServiceName = serviceName
	}
	if zipkinURL := os.Getenv("PUBSUB_TRACING_ZIPKIN_URL"); zipkinURL != "" {
		config.ZipkinURL = zipkinURL
	}

	return config
}

// SetupOTel initializes OpenTelemetry with a Zipkin exporter for pub/sub
// observability. When disabled it returns a no-op tracer.
func SetupOTel(ctx context.Context, config TracingConfig) (trace.Tracer, func(), error) {
	if !config.Enabled {
		tracer := noop.NewTracerProvider().Tracer("palaver-pubsub")
		return tracer, func() {}, nil
	}

	exporter, err := zipkin.New(config.ZipkinURL)
	if err != nil {
		return nil, nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	cleanup := func() {
		_ = tp.Shutdown(context.Background())
	}
	return tp.Tracer("palaver-pubsub"), cleanup, nil
}

// TracingPublisher wraps a Publisher so every publish is recorded as a span.
type TracingPublisher struct {
	publisher Publisher
	tracer    trace.Tracer
}

// NewTracingPublisher decorates the given publisher with tracing.
func NewTracingPublisher(publisher Publisher, tracer trace.Tracer) *TracingPublisher {
	return &TracingPublisher{publisher: publisher, tracer: tracer}
}

// Publish records a span around the underlying publish operation.
func (p *TracingPublisher) Publish(ctx context.Context, msg Message) error {
	spanCtx, span := p.tracer.Start(ctx, fmt.Sprintf("pubsub.publish.%s", msg.Topic),
		trace.WithAttributes(
			attribute.String("messaging.system", "watermill"),
			attribute.String("messaging.operation", "publish"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.String("user.id", msg.UserID),
			attribute.Int("messaging.message_payload_size_bytes", len(msg.Payload)),
		),
	)
	defer span.End()

	err := p.publisher.Publish(spanCtx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Close closes the underlying publisher.
func (p *TracingPublisher) Close() error {
	return p.publisher.Close()
}
