package recommend

import (
	"context"
	"testing"

	"github.com/aja5jo/ggoggolist-backend/internal/models"
	"github.com/aja5jo/ggoggolist-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAssembler(db *gorm.DB) *FeedAssembler {
	return NewFeedAssembler(repository.NewItemRepository(db), repository.NewFavoriteRepository(db))
}

func TestToFeedItemsPreservesRankOrder(t *testing.T) {
	db := setupTestDB(t)
	assembler := newAssembler(db)
	ctx := context.Background()

	st := createStore(t, db, "Cafe", 10)
	ev := createEvent(t, db, "Show", 20, testToday.AddDate(0, 0, -1), testToday.AddDate(0, 0, 5))
	pu := createPopup(t, db, "Popup", 5, testToday.AddDate(0, 0, -1), testToday.AddDate(0, 0, 5))

	ranked := []Scored{
		{Candidate: ItemCandidate{Type: models.ItemTypeEvent, ID: ev.ID}, Score: 0.9},
		{Candidate: ItemCandidate{Type: models.ItemTypePopup, ID: pu.ID}, Score: 0.8},
		{Candidate: ItemCandidate{Type: models.ItemTypeStore, ID: st.ID}, Score: 0.7},
	}

	items, err := assembler.ToFeedItems(ctx, ranked, nil)
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, models.ItemTypeEvent, items[0].Type)
	assert.Equal(t, models.ItemTypePopup, items[1].Type)
	assert.Equal(t, models.ItemTypeStore, items[2].Type)

	assert.Equal(t, "Show", items[0].Name)
	assert.Equal(t, 0.9, items[0].Score)
	require.NotNil(t, items[0].StartDate)
	require.NotNil(t, items[0].EndDate)

	// Stores carry no dates
	assert.Nil(t, items[2].StartDate)
	assert.Nil(t, items[2].EndDate)
	require.NotNil(t, items[2].Description)
	assert.Equal(t, "Cafe description", *items[2].Description)
}

func TestToFeedItemsSkipsDeleted(t *testing.T) {
	db := setupTestDB(t)
	assembler := newAssembler(db)
	ctx := context.Background()

	alive := createStore(t, db, "Alive", 10)
	doomed := createStore(t, db, "Doomed", 20)
	require.NoError(t, db.Delete(&models.Store{}, doomed.ID).Error)

	ranked := []Scored{
		{Candidate: ItemCandidate{Type: models.ItemTypeStore, ID: doomed.ID}, Score: 0.9},
		{Candidate: ItemCandidate{Type: models.ItemTypeStore, ID: alive.ID}, Score: 0.8},
	}

	items, err := assembler.ToFeedItems(ctx, ranked, nil)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, alive.ID, items[0].ID)
}

func TestToFeedItemsLikedFlag(t *testing.T) {
	db := setupTestDB(t)
	assembler := newAssembler(db)
	ctx := context.Background()

	user := createUser(t, db, "liker@test.com")
	likedStore := createStore(t, db, "Liked", 10)
	otherStore := createStore(t, db, "Other", 10)
	likedEvent := createEvent(t, db, "Liked Event", 5, testToday.AddDate(0, 0, -1), testToday.AddDate(0, 0, 5))

	likeItem(t, db, user.ID, models.ItemTypeStore, likedStore.ID)
	likeItem(t, db, user.ID, models.ItemTypeEvent, likedEvent.ID)

	ranked := []Scored{
		{Candidate: ItemCandidate{Type: models.ItemTypeStore, ID: likedStore.ID}, Score: 0.9},
		{Candidate: ItemCandidate{Type: models.ItemTypeStore, ID: otherStore.ID}, Score: 0.8},
		{Candidate: ItemCandidate{Type: models.ItemTypeEvent, ID: likedEvent.ID}, Score: 0.7},
	}

	t.Run("personalized resolves per item", func(t *testing.T) {
		items, err := assembler.ToFeedItems(ctx, ranked, &user.ID)
		require.NoError(t, err)

		require.Len(t, items, 3)
		assert.True(t, items[0].Liked)
		assert.False(t, items[1].Liked)
		assert.True(t, items[2].Liked)
	})

	t.Run("anonymous always false", func(t *testing.T) {
		items, err := assembler.ToFeedItems(ctx, ranked, nil)
		require.NoError(t, err)

		for _, item := range items {
			assert.False(t, item.Liked)
		}
	})
}

func TestToFeedItemsEmptyInput(t *testing.T) {
	db := setupTestDB(t)
	assembler := newAssembler(db)

	items, err := assembler.ToFeedItems(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}
