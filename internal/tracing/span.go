package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StartCycleSpan starts the parent span covering one catalog pass.
func StartCycleSpan(ctx context.Context, tracer trace.Tracer, cycle, templates int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "dispatch cycle",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("trafficsim.cycle", cycle),
			attribute.Int("trafficsim.templates", templates),
		),
	)
}

// StartRequestSpan starts a client span for one materialized request. The
// span is named after the template when it has one.
func StartRequestSpan(ctx context.Context, tracer trace.Tracer, method, template, url string) (context.Context, trace.Span) {
	spanName := method + " request"
	if template != "" {
		spanName = template
	}
	ctx, span := tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", url),
	)
	if template != "" {
		span.SetAttributes(attribute.String("trafficsim.template", template))
	}
	return ctx, span
}

// StatusAttribute records the response status on a request span.
func StatusAttribute(code int) attribute.KeyValue {
	return attribute.Int("http.response.status_code", code)
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// InjectHTTPHeaders injects W3C trace context into HTTP headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
