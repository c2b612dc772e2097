package recommend

import (
	"context"

	"github.com/aja5jo/ggoggolist-backend/internal/metrics"
	"github.com/aja5jo/ggoggolist-backend/internal/models"
	"github.com/aja5jo/ggoggolist-backend/internal/telemetry"
)

// minCandidateFetch is the floor on how many candidates a personalized
// request pulls, regardless of the requested size.
const minCandidateFetch = 300

// candidateFetchFactor over-fetches relative to size so ranking still
// produces enough winners after hydration-cap and provider skips.
const candidateFetchFactor = 50

// Service is the recommendation orchestrator: candidates → profile →
// ranking → fallback fill → assembly.
type Service struct {
	candidates *CandidateService
	profiles   *UserProfileBuilder
	ranker     *RankingService
	assembler  *FeedAssembler
	events     *telemetry.FeedEvents
}

// NewService wires the pipeline stages into an orchestrator.
func NewService(
	candidates *CandidateService,
	profiles *UserProfileBuilder,
	ranker *RankingService,
	assembler *FeedAssembler,
) *Service {
	return &Service{
		candidates: candidates,
		profiles:   profiles,
		ranker:     ranker,
		assembler:  assembler,
		events:     telemetry.NewFeedEvents(),
	}
}

// RecommendHome produces the ranked home feed. With a userID it runs the
// personalized pipeline and pads any shortfall from the popularity
// fallback; with nil it serves the popularity feed directly. Either way the
// caller gets up to size items in final display order.
func (s *Service) RecommendHome(ctx context.Context, userID *int64, size int) ([]FeedItem, error) {
	if userID == nil {
		return s.recommendAnonymous(ctx, size)
	}
	return s.recommendPersonalized(ctx, *userID, size)
}

// InvalidateProfile drops a user's cached taste vector (admin hook).
func (s *Service) InvalidateProfile(ctx context.Context, userID int64) error {
	return s.profiles.Invalidate(ctx, userID)
}

func (s *Service) recommendPersonalized(ctx context.Context, userID int64, size int) ([]FeedItem, error) {
	ctx, span := s.events.TraceRecommendHome(ctx, "personalized", size)
	defer span.End()

	fetch := size * candidateFetchFactor
	if fetch < minCandidateFetch {
		fetch = minCandidateFetch
	}
	candidates, err := s.candidates.ForUser(ctx, userID, fetch)
	if err != nil {
		return nil, err
	}

	profileCtx, profileSpan := s.events.TraceStage(ctx, "profile")
	userVec, err := s.profiles.GetOrBuild(profileCtx, userID)
	profileSpan.End()
	if err != nil {
		return nil, err
	}

	rankCtx, rankSpan := s.events.TraceStage(ctx, "rank")
	ranked, err := s.ranker.Rank(rankCtx, userVec, candidates, size)
	rankSpan.End()
	if err != nil {
		return nil, err
	}

	filled, err := s.fallbackFill(ctx, ranked, size)
	if err != nil {
		return nil, err
	}
	telemetry.RecordCounts(span, len(ranked), len(filled)-len(ranked))

	return s.assembler.ToFeedItems(ctx, filled, &userID)
}

func (s *Service) recommendAnonymous(ctx context.Context, size int) ([]FeedItem, error) {
	ctx, span := s.events.TraceRecommendHome(ctx, "anonymous", size)
	defer span.End()

	candidates, err := s.candidates.PopularFallback(ctx, size)
	if err != nil {
		return nil, err
	}

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, Scored{Candidate: c, Score: SentinelScore})
	}
	telemetry.RecordCounts(span, 0, len(scored))

	return s.assembler.ToFeedItems(ctx, scored, nil)
}

// fallbackFill pads a short ranked list up to size with popularity-fallback
// candidates at the sentinel score, skipping anything already ranked.
// Common on cold corpora, provider outages, and hydration-cap exhaustion.
func (s *Service) fallbackFill(ctx context.Context, ranked []Scored, size int) ([]Scored, error) {
	if len(ranked) >= size {
		return ranked, nil
	}

	type key struct {
		t  models.ItemType
		id int64
	}
	seen := make(map[key]bool, len(ranked))
	for _, sc := range ranked {
		seen[key{sc.Candidate.Type, sc.Candidate.ID}] = true
	}

	// Over-fetch by the ranked count so the fill survives dedup.
	pool, err := s.candidates.PopularFallback(ctx, size+len(ranked))
	if err != nil {
		return nil, err
	}

	out := ranked
	for _, c := range pool {
		if len(out) >= size {
			break
		}
		if seen[key{c.Type, c.ID}] {
			continue
		}
		out = append(out, Scored{Candidate: c, Score: SentinelScore})
	}

	if filled := len(out) - len(ranked); filled > 0 {
		metrics.Recommendation.FallbackFillTotal.Add(float64(filled))
	}

	return out, nil
}
