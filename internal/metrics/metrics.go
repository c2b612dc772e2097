package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RecommendationMetrics tracks the recommendation engine's domain metrics:
// feed traffic, embedding hydration cost, and fallback behavior.
type RecommendationMetrics struct {
	// Feed traffic
	FeedRequestsTotal *prometheus.CounterVec

	// Embedding hydration
	EmbeddingsCreatedTotal *prometheus.CounterVec
	ProviderFailuresTotal  prometheus.Counter
	HydrationSkippedTotal  prometheus.Counter

	// Profile resolution
	ProfileResolutionsTotal *prometheus.CounterVec

	// Ranking
	FallbackFillTotal prometheus.Counter
	RankDuration      prometheus.Histogram
}

// Recommendation is the package-level metrics instance, registered on the
// default prometheus registry at startup.
var Recommendation = &RecommendationMetrics{
	FeedRequestsTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total home feed requests",
		},
		[]string{"mode", "status"}, // mode: personalized|anonymous
	),
	EmbeddingsCreatedTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "item_embeddings_created_total",
			Help: "Item embeddings materialized during ranking hydration",
		},
		[]string{"item_type"},
	),
	ProviderFailuresTotal: promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_provider_failures_total",
			Help: "Embedding provider calls that failed and were skipped",
		},
	),
	HydrationSkippedTotal: promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hydration_cap_skipped_total",
			Help: "Candidates left unembedded because the per-call hydration cap was reached",
		},
	),
	ProfileResolutionsTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_profile_resolutions_total",
			Help: "User taste vector resolutions by outcome",
		},
		[]string{"outcome"}, // cache_hit|built_from_likes|cold_start
	),
	FallbackFillTotal: promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_fallback_fill_total",
			Help: "Feed items padded from the popularity fallback",
		},
	),
	RankDuration: promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rank_duration_seconds",
			Help:    "Time spent in candidate ranking (including hydration)",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	),
}
