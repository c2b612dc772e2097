package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/aja5jo/ggoggolist-backend/internal/models"
	"github.com/aja5jo/ggoggolist-backend/internal/repository"
)

// FeedItem is the outbound feed entry consumed by the web layer. Ordering
// of the slice is the ranking order, preserved end-to-end.
type FeedItem struct {
	Type      models.ItemType `json:"type"`
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Thumbnail string          `json:"thumbnail"`
	LikeCount int             `json:"like_count"`
	Liked     bool            `json:"liked"`

	Description *string    `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`

	// Score is the ranking score, or SentinelScore for fallback entries.
	Score float64 `json:"score"`
}

// FeedAssembler maps ranked (type, id) pairs back to full item records.
// This is the only stage that materializes complete entities.
type FeedAssembler struct {
	items     repository.ItemRepository
	favorites repository.FavoriteRepository
}

// NewFeedAssembler creates a feed assembler.
func NewFeedAssembler(items repository.ItemRepository, favorites repository.FavoriteRepository) *FeedAssembler {
	return &FeedAssembler{items: items, favorites: favorites}
}

// ToFeedItems batch-fetches full records for the ranked list and emits feed
// items in the original rank order. An item deleted between candidate
// generation and assembly is silently skipped. When userID is non-nil the
// liked flag is batch-resolved from the favorite relation per type;
// anonymous feeds get liked=false without a lookup.
func (a *FeedAssembler) ToFeedItems(ctx context.Context, ranked []Scored, userID *int64) ([]FeedItem, error) {
	idsByType := make(map[models.ItemType][]int64)
	for _, sc := range ranked {
		idsByType[sc.Candidate.Type] = append(idsByType[sc.Candidate.Type], sc.Candidate.ID)
	}

	stores := make(map[int64]models.Store)
	events := make(map[int64]models.Event)
	popups := make(map[int64]models.Popup)
	liked := make(map[models.ItemType]map[int64]bool)

	for itemType, ids := range idsByType {
		switch itemType {
		case models.ItemTypeStore:
			rows, err := a.items.StoresByIDs(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("failed to load stores for feed: %w", err)
			}
			for _, row := range rows {
				stores[row.ID] = row
			}
		case models.ItemTypeEvent:
			rows, err := a.items.EventsByIDs(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("failed to load events for feed: %w", err)
			}
			for _, row := range rows {
				events[row.ID] = row
			}
		case models.ItemTypePopup:
			rows, err := a.items.PopupsByIDs(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("failed to load popups for feed: %w", err)
			}
			for _, row := range rows {
				popups[row.ID] = row
			}
		}

		if userID != nil {
			set, err := a.favorites.LikedIDSet(ctx, *userID, itemType, ids)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve liked flags: %w", err)
			}
			liked[itemType] = set
		}
	}

	out := make([]FeedItem, 0, len(ranked))
	for _, sc := range ranked {
		c := sc.Candidate

		var item FeedItem
		switch c.Type {
		case models.ItemTypeStore:
			st, ok := stores[c.ID]
			if !ok {
				continue
			}
			desc := st.Description
			item = FeedItem{
				Type:        c.Type,
				ID:          st.ID,
				Name:        st.Name,
				Thumbnail:   st.ImageURL,
				LikeCount:   st.LikeCount,
				Description: &desc,
			}
		case models.ItemTypeEvent:
			ev, ok := events[c.ID]
			if !ok {
				continue
			}
			intro := ev.Intro
			item = FeedItem{
				Type:        c.Type,
				ID:          ev.ID,
				Name:        ev.Name,
				Thumbnail:   ev.ImageURL,
				LikeCount:   ev.LikeCount,
				Description: &intro,
				StartDate:   &ev.StartDate,
				EndDate:     &ev.EndDate,
			}
		case models.ItemTypePopup:
			pu, ok := popups[c.ID]
			if !ok {
				continue
			}
			intro := pu.Intro
			item = FeedItem{
				Type:        c.Type,
				ID:          pu.ID,
				Name:        pu.Name,
				Thumbnail:   pu.ImageURL,
				LikeCount:   pu.LikeCount,
				Description: &intro,
				StartDate:   &pu.StartDate,
				EndDate:     &pu.EndDate,
			}
		default:
			continue
		}

		item.Score = sc.Score
		if set, ok := liked[c.Type]; ok {
			item.Liked = set[c.ID]
		}
		out = append(out, item)
	}

	return out, nil
}
