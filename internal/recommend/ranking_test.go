package recommend

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aja5jo/ggoggolist-backend/internal/embedding"
	"github.com/aja5jo/ggoggolist-backend/internal/models"
	"github.com/aja5jo/ggoggolist-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRankingService(db *gorm.DB, provider embedding.Provider) *RankingService {
	svc := NewRankingService(provider, embedding.NewStore(db), repository.NewItemRepository(db))
	svc.now = func() time.Time { return testToday }
	return svc
}

func TestRankOrdersBySimilarity(t *testing.T) {
	db := setupTestDB(t)
	provider := newFakeProvider()
	store := embedding.NewStore(db)
	svc := newRankingService(db, provider)
	ctx := context.Background()

	near := createStore(t, db, "Near", 10)
	far := createStore(t, db, "Far", 10)

	require.NoError(t, store.Upsert(ctx, models.ItemTypeStore, near.ID, "fake-model", testDim, []float32{1, 0, 0, 0}))
	require.NoError(t, store.Upsert(ctx, models.ItemTypeStore, far.ID, "fake-model", testDim, []float32{0, 1, 0, 0}))

	candidates := []ItemCandidate{
		{Type: models.ItemTypeStore, ID: far.ID, LikeCount: 10},
		{Type: models.ItemTypeStore, ID: near.ID, LikeCount: 10},
	}

	scored, err := svc.Rank(ctx, []float32{1, 0, 0, 0}, candidates, 10)
	require.NoError(t, err)

	require.Len(t, scored, 2)
	assert.Equal(t, near.ID, scored[0].Candidate.ID)
	assert.Equal(t, far.ID, scored[1].Candidate.ID)
	assert.Greater(t, scored[0].Score, scored[1].Score)

	// No hydration needed: everything was pre-embedded
	assert.Equal(t, 0, provider.callCount())
}

func TestRankLikeCountBreaksEqualSimilarity(t *testing.T) {
	db := setupTestDB(t)
	provider := newFakeProvider()
	store := embedding.NewStore(db)
	svc := newRankingService(db, provider)
	ctx := context.Background()

	likeCounts := []int{50, 10, 5}
	var candidates []ItemCandidate
	var ids []int64
	for i, lc := range likeCounts {
		st := createStore(t, db, fmt.Sprintf("Store%d", i), lc)
		// Same vector for all, so similarity and recency are identical and
		// only the popularity term separates them
		require.NoError(t, store.Upsert(ctx, models.ItemTypeStore, st.ID, "fake-model", testDim, []float32{1, 0, 0, 0}))
		candidates = append(candidates, ItemCandidate{Type: models.ItemTypeStore, ID: st.ID, LikeCount: lc})
		ids = append(ids, st.ID)
	}
	// Shuffle input order
	candidates[0], candidates[2] = candidates[2], candidates[0]

	scored, err := svc.Rank(ctx, []float32{1, 0, 0, 0}, candidates, 10)
	require.NoError(t, err)

	require.Len(t, scored, 3)
	assert.Equal(t, ids[0], scored[0].Candidate.ID) // 50 likes
	assert.Equal(t, ids[1], scored[1].Candidate.ID) // 10 likes
	assert.Equal(t, ids[2], scored[2].Candidate.ID) // 5 likes
}

func TestRankTieBreakByID(t *testing.T) {
	db := setupTestDB(t)
	provider := newFakeProvider()
	store := embedding.NewStore(db)
	svc := newRankingService(db, provider)
	ctx := context.Background()

	a := createStore(t, db, "Twin A", 7)
	b := createStore(t, db, "Twin B", 7)
	for _, id := range []int64{a.ID, b.ID} {
		require.NoError(t, store.Upsert(ctx, models.ItemTypeStore, id, "fake-model", testDim, []float32{1, 0, 0, 0}))
	}

	candidates := []ItemCandidate{
		{Type: models.ItemTypeStore, ID: a.ID, LikeCount: 7},
		{Type: models.ItemTypeStore, ID: b.ID, LikeCount: 7},
	}

	scored, err := svc.Rank(ctx, []float32{1, 0, 0, 0}, candidates, 10)
	require.NoError(t, err)

	// Identical score and like count: newer id first
	require.Len(t, scored, 2)
	assert.Equal(t, b.ID, scored[0].Candidate.ID)
	assert.Equal(t, a.ID, scored[1].Candidate.ID)
}

func TestRankRecencyFavorsEndingSoon(t *testing.T) {
	db := setupTestDB(t)
	provider := newFakeProvider()
	store := embedding.NewStore(db)
	svc := newRankingService(db, provider)
	ctx := context.Background()

	soon := createEvent(t, db, "Ends Soon", 10, testToday.AddDate(0, 0, -1), testToday.AddDate(0, 0, 1))
	later := createEvent(t, db, "Ends Later", 10, testToday.AddDate(0, 0, -1), testToday.AddDate(0, 0, 60))
	for _, id := range []int64{soon.ID, later.ID} {
		require.NoError(t, store.Upsert(ctx, models.ItemTypeEvent, id, "fake-model", testDim, []float32{1, 0, 0, 0}))
	}

	soonEnd := soon.EndDate
	laterEnd := later.EndDate
	candidates := []ItemCandidate{
		{Type: models.ItemTypeEvent, ID: later.ID, LikeCount: 10, EndDate: &laterEnd},
		{Type: models.ItemTypeEvent, ID: soon.ID, LikeCount: 10, EndDate: &soonEnd},
	}

	scored, err := svc.Rank(ctx, []float32{1, 0, 0, 0}, candidates, 10)
	require.NoError(t, err)

	require.Len(t, scored, 2)
	assert.Equal(t, soon.ID, scored[0].Candidate.ID)
}

func TestRankHydratesMissingEmbeddings(t *testing.T) {
	db := setupTestDB(t)
	provider := newFakeProvider()
	store := embedding.NewStore(db)
	svc := newRankingService(db, provider)
	ctx := context.Background()

	st := createStore(t, db, "Fresh Store", 3)
	candidates := []ItemCandidate{{Type: models.ItemTypeStore, ID: st.ID, LikeCount: 3}}

	scored, err := svc.Rank(ctx, hashVector("user"), candidates, 10)
	require.NoError(t, err)

	require.Len(t, scored, 1)
	assert.Equal(t, 1, provider.callCount())

	// Hydration persisted the vector for future requests
	vectors, err := store.FindVectors(ctx, models.ItemTypeStore, []int64{st.ID}, "fake-model")
	require.NoError(t, err)
	assert.Contains(t, vectors, st.ID)

	// Ranking the same candidate again costs no provider call
	_, err = svc.Rank(ctx, hashVector("user"), candidates, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.callCount())
}

func TestRankHydrationCap(t *testing.T) {
	db := setupTestDB(t)
	provider := newFakeProvider()
	svc := newRankingService(db, provider)
	ctx := context.Background()

	const total = HydrationCap + 80
	candidates := make([]ItemCandidate, 0, total)
	for i := 0; i < total; i++ {
		st := createStore(t, db, fmt.Sprintf("Store%03d", i), i)
		candidates = append(candidates, ItemCandidate{Type: models.ItemTypeStore, ID: st.ID, LikeCount: i})
	}

	scored, err := svc.Rank(ctx, hashVector("user"), candidates, total)
	require.NoError(t, err)

	// Only the capped cohort got embedded; the rest are absent, not zeroed
	assert.Equal(t, HydrationCap, provider.callCount())
	assert.Len(t, scored, HydrationCap)
}

func TestRankProviderFailureSkipsItems(t *testing.T) {
	db := setupTestDB(t)
	provider := newFakeProvider()
	store := embedding.NewStore(db)
	svc := newRankingService(db, provider)
	ctx := context.Background()

	embedded := createStore(t, db, "Embedded", 5)
	unembedded := createStore(t, db, "Unembedded", 50)
	require.NoError(t, store.Upsert(ctx, models.ItemTypeStore, embedded.ID, "fake-model", testDim, []float32{1, 0, 0, 0}))

	provider.fail = true

	candidates := []ItemCandidate{
		{Type: models.ItemTypeStore, ID: unembedded.ID, LikeCount: 50},
		{Type: models.ItemTypeStore, ID: embedded.ID, LikeCount: 5},
	}

	scored, err := svc.Rank(ctx, []float32{1, 0, 0, 0}, candidates, 10)
	require.NoError(t, err)

	// The item the provider couldn't embed is absent from the output
	require.Len(t, scored, 1)
	assert.Equal(t, embedded.ID, scored[0].Candidate.ID)
}

func TestRankDeletedItemSkipped(t *testing.T) {
	db := setupTestDB(t)
	provider := newFakeProvider()
	svc := newRankingService(db, provider)
	ctx := context.Background()

	st := createStore(t, db, "Doomed", 5)
	require.NoError(t, db.Delete(&models.Store{}, st.ID).Error)

	candidates := []ItemCandidate{{Type: models.ItemTypeStore, ID: st.ID, LikeCount: 5}}

	scored, err := svc.Rank(ctx, hashVector("user"), candidates, 10)
	require.NoError(t, err)

	assert.Empty(t, scored)
	assert.Equal(t, 0, provider.callCount())
}

func TestRankTruncatesToSize(t *testing.T) {
	db := setupTestDB(t)
	provider := newFakeProvider()
	svc := newRankingService(db, provider)
	ctx := context.Background()

	var candidates []ItemCandidate
	for i := 0; i < 5; i++ {
		st := createStore(t, db, fmt.Sprintf("S%d", i), i)
		candidates = append(candidates, ItemCandidate{Type: models.ItemTypeStore, ID: st.ID, LikeCount: i})
	}

	scored, err := svc.Rank(ctx, hashVector("user"), candidates, 2)
	require.NoError(t, err)
	assert.Len(t, scored, 2)
}

func TestRankDeterministic(t *testing.T) {
	db := setupTestDB(t)
	provider := newFakeProvider()
	svc := newRankingService(db, provider)
	ctx := context.Background()

	var candidates []ItemCandidate
	for i := 0; i < 20; i++ {
		st := createStore(t, db, fmt.Sprintf("S%02d", i), i%4)
		candidates = append(candidates, ItemCandidate{Type: models.ItemTypeStore, ID: st.ID, LikeCount: i % 4})
	}

	first, err := svc.Rank(ctx, hashVector("user"), candidates, 20)
	require.NoError(t, err)
	second, err := svc.Rank(ctx, hashVector("user"), candidates, 20)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRecencyScore(t *testing.T) {
	t.Run("dateless items get flat baseline", func(t *testing.T) {
		got := recencyScore(ItemCandidate{Type: models.ItemTypeStore}, testToday)
		assert.Equal(t, storeRecency, got)
	})

	t.Run("ending today scores one", func(t *testing.T) {
		end := testToday
		got := recencyScore(ItemCandidate{EndDate: &end}, testToday)
		assert.InDelta(t, 1.0, got, 1e-9)
	})

	t.Run("seven days out scores half", func(t *testing.T) {
		end := testToday.AddDate(0, 0, 7)
		got := recencyScore(ItemCandidate{EndDate: &end}, testToday)
		assert.InDelta(t, 0.5, got, 1e-9)
	})

	t.Run("past end clamped to one", func(t *testing.T) {
		end := testToday.AddDate(0, 0, -2)
		got := recencyScore(ItemCandidate{EndDate: &end}, testToday)
		assert.InDelta(t, 1.0, got, 1e-9)
	})
}
