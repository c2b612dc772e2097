package recommend

import (
	"context"
	"time"

	"github.com/aja5jo/ggoggolist-backend/internal/embedding"
	"github.com/aja5jo/ggoggolist-backend/internal/logger"
	"github.com/aja5jo/ggoggolist-backend/internal/metrics"
	"github.com/aja5jo/ggoggolist-backend/internal/models"
	"github.com/aja5jo/ggoggolist-backend/internal/repository"
	"go.uber.org/zap"
)

// Backfiller creates missing item embeddings offline, so live requests
// rarely hit the per-request hydration path. Unlike request-time hydration
// it walks every store plus every ongoing event and pop-up, with no cap
// beyond an optional limit.
type Backfiller struct {
	provider   embedding.Provider
	embeddings *embedding.Store
	items      repository.ItemRepository

	now func() time.Time
}

// NewBackfiller creates a backfiller.
func NewBackfiller(provider embedding.Provider, embeddings *embedding.Store, items repository.ItemRepository) *Backfiller {
	return &Backfiller{
		provider:   provider,
		embeddings: embeddings,
		items:      items,
		now:        time.Now,
	}
}

// Run embeds every feed-eligible item that has no stored vector under the
// active model. limit <= 0 means unlimited. Returns the number of
// embeddings created. Provider failures skip the item and continue;
// storage-read failures abort.
func (b *Backfiller) Run(ctx context.Context, limit int) (int, error) {
	model := b.provider.ModelName()
	dim := b.provider.Dimension()
	today := b.now()

	texts := make(map[models.ItemType]map[int64]string)

	stores, err := b.items.AllStores(ctx)
	if err != nil {
		return 0, err
	}
	texts[models.ItemTypeStore] = make(map[int64]string, len(stores))
	for _, st := range stores {
		texts[models.ItemTypeStore][st.ID] = storeText(st)
	}

	events, err := b.items.OngoingEvents(ctx, today)
	if err != nil {
		return 0, err
	}
	texts[models.ItemTypeEvent] = make(map[int64]string, len(events))
	for _, ev := range events {
		texts[models.ItemTypeEvent][ev.ID] = eventText(ev)
	}

	popups, err := b.items.OngoingPopups(ctx, today)
	if err != nil {
		return 0, err
	}
	texts[models.ItemTypePopup] = make(map[int64]string, len(popups))
	for _, pu := range popups {
		texts[models.ItemTypePopup][pu.ID] = popupText(pu)
	}

	created := 0
	for _, itemType := range models.ItemTypes {
		ids := make([]int64, 0, len(texts[itemType]))
		for id := range texts[itemType] {
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			continue
		}

		existing, err := b.embeddings.FindVectors(ctx, itemType, ids, model)
		if err != nil {
			return created, err
		}

		for _, id := range ids {
			if _, ok := existing[id]; ok {
				continue
			}
			if limit > 0 && created >= limit {
				return created, nil
			}

			vec, err := b.provider.Embed(ctx, texts[itemType][id])
			if err != nil {
				metrics.Recommendation.ProviderFailuresTotal.Inc()
				logger.Log.Warn("Embedding provider failed during backfill",
					logger.WithItem(string(itemType), id),
					zap.Error(err))
				continue
			}

			if err := b.embeddings.Upsert(ctx, itemType, id, model, dim, vec); err != nil {
				return created, err
			}
			metrics.Recommendation.EmbeddingsCreatedTotal.WithLabelValues(string(itemType)).Inc()
			created++
		}
	}

	return created, nil
}
