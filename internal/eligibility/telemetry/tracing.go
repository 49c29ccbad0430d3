// Package telemetry configures OpenTelemetry tracing for the eligibility
// calculator. Spans follow a single request's evaluation: one parent span
// per get_eligibility_status call, with one child span per campaign
// considered.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "eligibility-signposting-api/calculator"

// Tracer returns the package-level tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// InitTraceProvider initializes the OTel trace provider with an OTLP gRPC
// exporter. If endpoint is empty, tracing is disabled: no provider is
// installed and the global OTel default stays in place. Returns a shutdown function to call on application exit.
func InitTraceProvider(ctx context.Context, endpoint, version string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String("eligibility-signposting-api"),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// StartEvaluationSpan creates the parent span for one
// get_eligibility_status call.
func StartEvaluationSpan(ctx context.Context) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "eligibility.get_status", trace.WithSpanKind(trace.SpanKindInternal))
}

// StartCampaignSpan creates a child span for evaluating one campaign.
func StartCampaignSpan(ctx context.Context, campaignID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "eligibility.evaluate_campaign",
		trace.WithAttributes(attribute.String("campaign.id", campaignID)),
	)
}

// EndCampaignSpan enriches and closes a campaign span with its outcome.
func EndCampaignSpan(span trace.Span, status string) {
	span.SetAttributes(attribute.String("campaign.status", status))
	span.End()
}
