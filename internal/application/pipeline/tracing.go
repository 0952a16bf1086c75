package pipeline

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/asidocente/school-records/internal/application/pipeline"

// Tracing opens one span per request. A nil provider uses the global one.
func Tracing(tp trace.TracerProvider) Behavior {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(tracerName)

	return func(ctx context.Context, info Info, req any, next Next) (any, error) {
		ctx, span := tracer.Start(ctx, info.Name,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.String("request.name", info.Name),
				attribute.String("request.id", info.ID),
			),
		)
		defer span.End()

		out, err := next(ctx)

		outcome := Classify(out, err)
		span.SetAttributes(attribute.String("request.outcome", string(outcome)))
		if outcome == OutcomeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return out, err
	}
}
