package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/aja5jo/ggoggolist-backend/internal/embedding"
	"github.com/aja5jo/ggoggolist-backend/internal/logger"
	"github.com/aja5jo/ggoggolist-backend/internal/models"
	"github.com/aja5jo/ggoggolist-backend/internal/recommend"
	"github.com/aja5jo/ggoggolist-backend/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitializeForTests()
	os.Exit(m.Run())
}

// stubProvider returns a fixed vector for any input.
type stubProvider struct{}

func (stubProvider) ModelName() string { return "stub-model" }
func (stubProvider) Dimension() int    { return 4 }
func (stubProvider) Embed(context.Context, string) ([]float32, error) {
	return []float32{0.5, 0.5, 0.5, 0.5}, nil
}

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.CategoryPreference{},
		&models.Store{},
		&models.Event{},
		&models.Popup{},
		&models.Favorite{},
		&models.ItemEmbedding{},
		&models.UserProfileEmbedding{},
	))

	items := repository.NewItemRepository(db)
	favorites := repository.NewFavoriteRepository(db)
	prefs := repository.NewPreferenceRepository(db)
	store := embedding.NewStore(db)
	provider := stubProvider{}

	svc := recommend.NewService(
		recommend.NewCandidateService(items, nil),
		recommend.NewUserProfileBuilder(provider, store, favorites, prefs),
		recommend.NewRankingService(provider, store, items),
		recommend.NewFeedAssembler(items, favorites),
	)

	r := gin.New()
	SetupRoutes(r, NewHandlers(svc))
	return r, db
}

type feedResponse struct {
	Items []recommend.FeedItem `json:"items"`
	Count int                  `json:"count"`
}

func seedStores(t *testing.T, db *gorm.DB, n int) {
	for i := 0; i < n; i++ {
		require.NoError(t, db.Create(&models.Store{
			Name:      "Store " + strconv.Itoa(i),
			LikeCount: i,
		}).Error)
	}
}

func TestGetHomeFeed(t *testing.T) {
	t.Run("anonymous feed with default size", func(t *testing.T) {
		r, db := setupTestRouter(t)
		seedStores(t, db, 15)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/feed/home", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp feedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 10, resp.Count)
		assert.Len(t, resp.Items, 10)

		// Anonymous entries carry the sentinel score and no liked flags
		for _, item := range resp.Items {
			assert.Equal(t, -1.0, item.Score)
			assert.False(t, item.Liked)
		}
	})

	t.Run("size parameter honored", func(t *testing.T) {
		r, db := setupTestRouter(t)
		seedStores(t, db, 15)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/feed/home?size=3", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp feedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Count)
	})

	t.Run("oversized request clamped", func(t *testing.T) {
		r, db := setupTestRouter(t)
		seedStores(t, db, 80)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/feed/home?size=500", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp feedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 50, resp.Count)
	})

	t.Run("invalid size rejected", func(t *testing.T) {
		r, _ := setupTestRouter(t)

		for _, raw := range []string{"0", "-5", "abc"} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/feed/home?size="+raw, nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code, "size=%s", raw)
		}
	})

	t.Run("personalized via X-User-ID header", func(t *testing.T) {
		r, db := setupTestRouter(t)
		seedStores(t, db, 5)

		user := models.User{Email: "u@test.com", Nickname: "u"}
		require.NoError(t, db.Create(&user).Error)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/feed/home?size=5", nil)
		req.Header.Set("X-User-ID", strconv.FormatInt(user.ID, 10))
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp feedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 5, resp.Count)

		// Ranked, not sentinel: the stub provider embeds everything
		for _, item := range resp.Items {
			assert.Greater(t, item.Score, -1.0)
		}
	})

	t.Run("malformed X-User-ID rejected", func(t *testing.T) {
		r, _ := setupTestRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/feed/home", nil)
		req.Header.Set("X-User-ID", "not-a-number")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty corpus returns empty feed", func(t *testing.T) {
		r, _ := setupTestRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/feed/home", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp feedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Count)
	})
}

func TestHealthz(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
