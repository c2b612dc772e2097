package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aja5jo/ggoggolist-backend/internal/cache"
	"github.com/aja5jo/ggoggolist-backend/internal/logger"
	"github.com/aja5jo/ggoggolist-backend/internal/models"
	"github.com/aja5jo/ggoggolist-backend/internal/repository"
	"go.uber.org/zap"
)

// popularPoolCacheKey holds the sorted cross-type candidate pool in redis.
// Bump the suffix when the ItemCandidate JSON shape changes.
const popularPoolCacheKey = "feed:popular:v1"

// popularPoolTTL bounds staleness of the cached pool. Like counts drift a
// little within the window; the ranking's popularity term is dampened
// enough that this doesn't visibly reorder feeds.
const popularPoolTTL = 5 * time.Minute

// ItemCandidate is a lightweight summary of a store/event/pop-up eligible
// for ranking. Produced fresh per request (or from the pool cache), never
// persisted as an entity.
type ItemCandidate struct {
	Type      models.ItemType `json:"type"`
	ID        int64           `json:"id"`
	LikeCount int             `json:"like_count"`
	Category  string          `json:"category,omitempty"`
	Address   string          `json:"address,omitempty"`
	StartDate *time.Time      `json:"start_date,omitempty"`
	EndDate   *time.Time      `json:"end_date,omitempty"`
}

// CandidateService produces the pool of scoreable items.
type CandidateService struct {
	items repository.ItemRepository
	redis *cache.RedisClient // optional; nil skips the pool cache

	// now is injectable for tests; defaults to time.Now
	now func() time.Time
}

// NewCandidateService creates a candidate service. redis may be nil, in
// which case every call scans the item tables directly.
func NewCandidateService(items repository.ItemRepository, redis *cache.RedisClient) *CandidateService {
	return &CandidateService{
		items: items,
		redis: redis,
		now:   time.Now,
	}
}

// PopularFallback returns the globally popular candidates across all three
// item types: every store plus currently-ongoing events and pop-ups, sorted
// by like count descending with newer ids winning ties, truncated to limit.
//
// The full-corpus sort-then-truncate is O(n log n) over all items. Fine for
// a single-city corpus; revisit before expanding to more cities.
func (s *CandidateService) PopularFallback(ctx context.Context, limit int) ([]ItemCandidate, error) {
	pool, err := s.popularPool(ctx)
	if err != nil {
		return nil, err
	}

	if limit < len(pool) {
		pool = pool[:limit]
	}
	return pool, nil
}

// ForUser returns the candidate pool for a personalized request. It
// currently delegates to the popularity pool; per-user category and
// geography filtering would hook in here.
func (s *CandidateService) ForUser(ctx context.Context, userID int64, limitFetch int) ([]ItemCandidate, error) {
	return s.PopularFallback(ctx, limitFetch)
}

// popularPool builds (or reads from cache) the full sorted candidate pool.
func (s *CandidateService) popularPool(ctx context.Context) ([]ItemCandidate, error) {
	if s.redis != nil {
		raw, err := s.redis.Get(ctx, popularPoolCacheKey)
		if err == nil {
			var pool []ItemCandidate
			if json.Unmarshal([]byte(raw), &pool) == nil {
				return pool, nil
			}
			// Unparseable payload: fall through and rebuild
		} else if !cache.IsCacheMiss(err) {
			logger.Log.Warn("Popular pool cache read failed", zap.Error(err))
		}
	}

	pool, err := s.buildPopularPool(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(pool); err == nil {
			if err := s.redis.Set(ctx, popularPoolCacheKey, string(data), popularPoolTTL); err != nil {
				logger.Log.Warn("Popular pool cache write failed", zap.Error(err))
			}
		}
	}

	return pool, nil
}

// buildPopularPool scans the three item tables and produces the combined
// sorted pool.
func (s *CandidateService) buildPopularPool(ctx context.Context) ([]ItemCandidate, error) {
	today := s.now()

	stores, err := s.items.AllStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stores: %w", err)
	}
	events, err := s.items.OngoingEvents(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load ongoing events: %w", err)
	}
	popups, err := s.items.OngoingPopups(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load ongoing popups: %w", err)
	}

	pool := make([]ItemCandidate, 0, len(stores)+len(events)+len(popups))
	for _, st := range stores {
		pool = append(pool, ItemCandidate{
			Type:      models.ItemTypeStore,
			ID:        st.ID,
			LikeCount: st.LikeCount,
			Category:  st.Category,
			Address:   st.Address,
		})
	}
	for _, ev := range events {
		pool = append(pool, ItemCandidate{
			Type:      models.ItemTypeEvent,
			ID:        ev.ID,
			LikeCount: ev.LikeCount,
			Category:  ev.Category,
			Address:   ev.Address,
			StartDate: &ev.StartDate,
			EndDate:   &ev.EndDate,
		})
	}
	for _, pu := range popups {
		pool = append(pool, ItemCandidate{
			Type:      models.ItemTypePopup,
			ID:        pu.ID,
			LikeCount: pu.LikeCount,
			Category:  pu.Category,
			Address:   pu.Address,
			StartDate: &pu.StartDate,
			EndDate:   &pu.EndDate,
		})
	}

	// Cross-type popularity order; newer ids win ties
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].LikeCount != pool[j].LikeCount {
			return pool[i].LikeCount > pool[j].LikeCount
		}
		return pool[i].ID > pool[j].ID
	})

	return pool, nil
}
