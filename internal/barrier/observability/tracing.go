package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"msgbarrier/internal/barrier"
)

// TracingObserver adds a span event per trial to the span carried by ctx.
// Failed denial trials also mark the span as errored.
type TracingObserver struct{}

func NewTracingObserver() TracingObserver {
	return TracingObserver{}
}

func (TracingObserver) ObserveTrial(ctx context.Context, t barrier.Trial) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("barrier.chain", string(t.Chain)),
		attribute.String("barrier.policy", t.Policy),
		attribute.Bool("barrier.passed", t.Passed),
		attribute.String("barrier.origin", t.Origin.String()),
		attribute.Int("barrier.instructions", len(t.Instructions)),
	}
	if t.Err != nil {
		attrs = append(attrs, attribute.String("barrier.error", t.Err.Error()))
	}
	span.AddEvent("barrier.trial", trace.WithAttributes(attrs...))

	if t.Chain == barrier.ChainDenial && !t.Passed && t.Err != nil {
		span.SetStatus(codes.Error, t.Err.Error())
	}
}
