package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/aja5jo/ggoggolist-backend/internal/embedding"
	"github.com/aja5jo/ggoggolist-backend/internal/logger"
	"github.com/aja5jo/ggoggolist-backend/internal/metrics"
	"github.com/aja5jo/ggoggolist-backend/internal/models"
	"github.com/aja5jo/ggoggolist-backend/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// HydrationCap bounds how many new item embeddings one Rank call may create.
// Each one is a paid provider call; candidates beyond the cap stay
// unembedded this round and get picked up by a later request.
const HydrationCap = 120

// Scoring weights. sim carries the feed; recency and popularity nudge it.
// The remaining 0.05 is unassigned pending a product decision on a fourth
// signal; do not fold it into the others.
const (
	simWeight    = 0.75
	recentWeight = 0.10
	likeWeight   = 0.10
)

// storeRecency is the flat recency term for dateless items (stores).
const storeRecency = 0.3

// SentinelScore marks non-personalized entries appended by the fallback
// fill, so downstream consumers can tell them from scored winners.
const SentinelScore = -1.0

// Scored pairs a candidate with its ranking score. Transient: built during
// ranking, consumed by assembly, never persisted.
type Scored struct {
	Candidate ItemCandidate
	Score     float64
}

// RankingService scores candidates against a user taste vector, creating
// missing item embeddings on demand.
type RankingService struct {
	provider   embedding.Provider
	embeddings *embedding.Store
	items      repository.ItemRepository

	// now is injectable for tests; defaults to time.Now
	now func() time.Time
}

// NewRankingService creates a ranking service.
func NewRankingService(provider embedding.Provider, embeddings *embedding.Store, items repository.ItemRepository) *RankingService {
	return &RankingService{
		provider:   provider,
		embeddings: embeddings,
		items:      items,
		now:        time.Now,
	}
}

// Rank hydrates missing candidate embeddings (cost-bounded), scores every
// candidate with a resolvable vector against userVec, and returns the top
// size results ordered by score descending (ties: like count descending,
// then id descending). Candidates whose embedding could not be resolved are
// absent from the output, not scored as zero.
func (s *RankingService) Rank(ctx context.Context, userVec []float32, candidates []ItemCandidate, size int) ([]Scored, error) {
	timer := prometheus.NewTimer(metrics.Recommendation.RankDuration)
	defer timer.ObserveDuration()

	vectors, err := s.hydrate(ctx, candidates)
	if err != nil {
		return nil, err
	}

	today := s.now()
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		vec, ok := vectors[c.Type][c.ID]
		if !ok {
			continue
		}

		sim := embedding.Cosine(userVec, vec)
		like := math.Tanh(math.Log1p(float64(c.LikeCount)) / 5)
		recent := recencyScore(c, today)

		scored = append(scored, Scored{
			Candidate: c,
			Score:     simWeight*sim + recentWeight*recent + likeWeight*like,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Candidate.LikeCount != scored[j].Candidate.LikeCount {
			return scored[i].Candidate.LikeCount > scored[j].Candidate.LikeCount
		}
		return scored[i].Candidate.ID > scored[j].Candidate.ID
	})

	if size < len(scored) {
		scored = scored[:size]
	}
	return scored, nil
}

// recencyScore maps an item's remaining lifetime to (0, 1]: items ending
// soon score near 1, far-future endings decay toward 0, and dateless items
// (stores) get a flat baseline. Candidate sources only emit ongoing items,
// so a negative daysToEnd does not occur; it is clamped anyway so a clock
// skew can't produce a negative recency.
func recencyScore(c ItemCandidate, today time.Time) float64 {
	if c.EndDate == nil {
		return storeRecency
	}
	daysToEnd := c.EndDate.Sub(today).Hours() / 24
	if daysToEnd < 0 {
		daysToEnd = 0
	}
	return 1 / (1 + daysToEnd/7)
}

// hydrate ensures candidates have embeddings under the active model,
// creating up to HydrationCap new ones. Returns all resolvable vectors
// keyed by type and id. A provider failure for one item skips that item;
// only storage-read failures abort.
func (s *RankingService) hydrate(ctx context.Context, candidates []ItemCandidate) (map[models.ItemType]map[int64][]float32, error) {
	model := s.provider.ModelName()
	dim := s.provider.Dimension()

	byType := make(map[models.ItemType][]int64)
	for _, c := range candidates {
		byType[c.Type] = append(byType[c.Type], c.ID)
	}

	vectors := make(map[models.ItemType]map[int64][]float32, len(byType))

	type missingItem struct {
		itemType models.ItemType
		id       int64
	}
	var missing []missingItem

	for _, itemType := range models.ItemTypes {
		ids := byType[itemType]
		if len(ids) == 0 {
			continue
		}
		existing, err := s.embeddings.FindVectors(ctx, itemType, ids, model)
		if err != nil {
			return nil, err
		}
		vectors[itemType] = existing

		for _, id := range ids {
			if _, ok := existing[id]; !ok {
				missing = append(missing, missingItem{itemType: itemType, id: id})
			}
		}
	}

	if len(missing) > HydrationCap {
		metrics.Recommendation.HydrationSkippedTotal.Add(float64(len(missing) - HydrationCap))
		missing = missing[:HydrationCap]
	}
	if len(missing) == 0 {
		return vectors, nil
	}

	// Fetch full records for the capped cohort; the candidate carries no
	// text fields of its own.
	missingByType := make(map[models.ItemType][]int64)
	for _, m := range missing {
		missingByType[m.itemType] = append(missingByType[m.itemType], m.id)
	}

	texts, err := s.itemTexts(ctx, missingByType)
	if err != nil {
		return nil, err
	}

	for _, m := range missing {
		text, ok := texts[m.itemType][m.id]
		if !ok {
			// Item deleted since candidate generation; nothing to embed.
			continue
		}

		vec, err := s.provider.Embed(ctx, text)
		if err != nil {
			metrics.Recommendation.ProviderFailuresTotal.Inc()
			logger.Log.Warn("Embedding provider failed for item",
				logger.WithItem(string(m.itemType), m.id),
				zap.Error(err))
			continue
		}

		if vectors[m.itemType] == nil {
			vectors[m.itemType] = make(map[int64][]float32)
		}
		vectors[m.itemType][m.id] = vec
		metrics.Recommendation.EmbeddingsCreatedTotal.WithLabelValues(string(m.itemType)).Inc()

		// The vector is used for this request even if the write fails;
		// the next request simply re-creates it.
		if err := s.embeddings.Upsert(ctx, m.itemType, m.id, model, dim, vec); err != nil {
			logger.Log.Warn("Failed to persist item embedding",
				logger.WithItem(string(m.itemType), m.id),
				zap.Error(err))
		}
	}

	return vectors, nil
}

// itemTexts loads full records for the given ids and synthesizes the
// descriptive text fed to the embedding model.
func (s *RankingService) itemTexts(ctx context.Context, idsByType map[models.ItemType][]int64) (map[models.ItemType]map[int64]string, error) {
	texts := make(map[models.ItemType]map[int64]string, len(idsByType))

	for itemType, ids := range idsByType {
		texts[itemType] = make(map[int64]string, len(ids))

		switch itemType {
		case models.ItemTypeStore:
			stores, err := s.items.StoresByIDs(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("failed to load stores for hydration: %w", err)
			}
			for _, st := range stores {
				texts[itemType][st.ID] = storeText(st)
			}
		case models.ItemTypeEvent:
			events, err := s.items.EventsByIDs(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("failed to load events for hydration: %w", err)
			}
			for _, ev := range events {
				texts[itemType][ev.ID] = eventText(ev)
			}
		case models.ItemTypePopup:
			popups, err := s.items.PopupsByIDs(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("failed to load popups for hydration: %w", err)
			}
			for _, pu := range popups {
				texts[itemType][pu.ID] = popupText(pu)
			}
		}
	}

	return texts, nil
}

func storeText(st models.Store) string {
	parts := []string{"Store: " + st.Name}
	if st.Description != "" {
		parts = append(parts, st.Description)
	}
	if st.Category != "" {
		parts = append(parts, "Category: "+st.Category)
	}
	if st.Address != "" {
		parts = append(parts, "Address: "+st.Address)
	}
	return strings.Join(parts, ". ")
}

func eventText(ev models.Event) string {
	parts := []string{"Event: " + ev.Name}
	if ev.Intro != "" {
		parts = append(parts, ev.Intro)
	}
	if ev.Category != "" {
		parts = append(parts, "Category: "+ev.Category)
	}
	if ev.Address != "" {
		parts = append(parts, "Address: "+ev.Address)
	}
	parts = append(parts, fmt.Sprintf("Runs %s to %s",
		ev.StartDate.Format("2006-01-02"), ev.EndDate.Format("2006-01-02")))
	return strings.Join(parts, ". ")
}

func popupText(pu models.Popup) string {
	parts := []string{"Popup: " + pu.Name}
	if pu.Intro != "" {
		parts = append(parts, pu.Intro)
	}
	if pu.Category != "" {
		parts = append(parts, "Category: "+pu.Category)
	}
	if pu.Address != "" {
		parts = append(parts, "Address: "+pu.Address)
	}
	parts = append(parts, fmt.Sprintf("Open %s to %s",
		pu.StartDate.Format("2006-01-02"), pu.EndDate.Format("2006-01-02")))
	return strings.Join(parts, ". ")
}
