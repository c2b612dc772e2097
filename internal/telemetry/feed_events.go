package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// FeedEvents provides span helpers for the recommendation pipeline stages.
type FeedEvents struct {
	tracer trace.Tracer
}

// NewFeedEvents creates a feed events tracer.
func NewFeedEvents() *FeedEvents {
	return &FeedEvents{
		tracer: otel.Tracer("recommendation"),
	}
}

// TraceRecommendHome starts the request-level span for one home feed build.
// mode is "personalized" or "anonymous".
func (fe *FeedEvents) TraceRecommendHome(ctx context.Context, mode string, size int) (context.Context, trace.Span) {
	return fe.tracer.Start(ctx, "feed.recommend_home",
		trace.WithAttributes(
			attribute.String("feed.mode", mode),
			attribute.Int("feed.size", size),
		),
	)
}

// TraceStage starts a child span for a pipeline stage ("candidates",
// "profile", "rank", "assemble").
func (fe *FeedEvents) TraceStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	return fe.tracer.Start(ctx, "feed."+stage)
}

// RecordCounts attaches result-size attributes to a span after a stage.
func RecordCounts(span trace.Span, ranked, filled int) {
	span.SetAttributes(
		attribute.Int("feed.ranked_count", ranked),
		attribute.Int("feed.fallback_fill_count", filled),
	)
}
