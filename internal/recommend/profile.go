package recommend

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aja5jo/ggoggolist-backend/internal/embedding"
	"github.com/aja5jo/ggoggolist-backend/internal/logger"
	"github.com/aja5jo/ggoggolist-backend/internal/metrics"
	"github.com/aja5jo/ggoggolist-backend/internal/models"
	"github.com/aja5jo/ggoggolist-backend/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// genericSeedText is embedded for users with no likes and no onboarding
// preferences, so even a brand-new account gets a usable taste vector.
const genericSeedText = "A user interested in discovering local stores, ongoing events, and popup shops in the neighborhood."

// UserProfileBuilder resolves a user's taste vector: cached row if present,
// otherwise the L2-normalized mean of liked-item embeddings, otherwise a
// cold-start embedding of seed text built from preferred categories.
type UserProfileBuilder struct {
	provider   embedding.Provider
	embeddings *embedding.Store
	favorites  repository.FavoriteRepository
	prefs      repository.PreferenceRepository

	// Collapses concurrent first-requests for the same user into one
	// build, so a cold user opening the app on two devices costs one
	// provider call per process instead of two.
	group singleflight.Group
}

// NewUserProfileBuilder creates a profile builder.
func NewUserProfileBuilder(
	provider embedding.Provider,
	embeddings *embedding.Store,
	favorites repository.FavoriteRepository,
	prefs repository.PreferenceRepository,
) *UserProfileBuilder {
	return &UserProfileBuilder{
		provider:   provider,
		embeddings: embeddings,
		favorites:  favorites,
		prefs:      prefs,
	}
}

// GetOrBuild returns the user's taste vector, building and persisting it on
// a cache miss. The returned vector always matches the active model's
// dimension. A persistence failure is logged and swallowed; the freshly
// built vector still serves the current request. A provider failure during
// cold-start propagates: with no liked-item vectors and no seed embedding
// there is nothing to personalize with.
func (b *UserProfileBuilder) GetOrBuild(ctx context.Context, userID int64) ([]float32, error) {
	model := b.provider.ModelName()

	vec, err := b.embeddings.FindUserVector(ctx, userID, model)
	if err != nil {
		return nil, err
	}
	if vec != nil {
		metrics.Recommendation.ProfileResolutionsTotal.WithLabelValues("cache_hit").Inc()
		return vec, nil
	}

	result, err, _ := b.group.Do(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		return b.build(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]float32), nil
}

// Invalidate drops the cached taste vector so the next request rebuilds it.
func (b *UserProfileBuilder) Invalidate(ctx context.Context, userID int64) error {
	return b.embeddings.InvalidateUserVector(ctx, userID)
}

func (b *UserProfileBuilder) build(ctx context.Context, userID int64) ([]float32, error) {
	model := b.provider.ModelName()
	dim := b.provider.Dimension()

	// Another request may have finished the build while we waited on the
	// singleflight slot.
	if vec, err := b.embeddings.FindUserVector(ctx, userID, model); err == nil && vec != nil {
		metrics.Recommendation.ProfileResolutionsTotal.WithLabelValues("cache_hit").Inc()
		return vec, nil
	}

	vec, outcome, err := b.computeVector(ctx, userID, model, dim)
	if err != nil {
		return nil, err
	}
	metrics.Recommendation.ProfileResolutionsTotal.WithLabelValues(outcome).Inc()

	if err := b.embeddings.SaveUserVector(ctx, userID, model, dim, vec); err != nil {
		logger.Log.Warn("Failed to persist user profile embedding",
			logger.WithUserID(userID),
			zap.Error(err))
	}

	return vec, nil
}

// computeVector builds the vector from liked-item embeddings, or falls back
// to embedding cold-start seed text.
func (b *UserProfileBuilder) computeVector(ctx context.Context, userID int64, model string, dim int) ([]float32, string, error) {
	var likedVectors [][]float32

	for _, itemType := range models.ItemTypes {
		ids, err := b.favorites.LikedItemIDs(ctx, userID, itemType)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load liked %s ids: %w", itemType, err)
		}
		vectors, err := b.embeddings.FindVectors(ctx, itemType, ids, model)
		if err != nil {
			return nil, "", err
		}
		for _, v := range vectors {
			likedVectors = append(likedVectors, v)
		}
	}

	// Mean skips vectors whose dimension doesn't match the active model,
	// which keeps the invariant that the profile always matches dim.
	if mean := embedding.Mean(likedVectors, dim); mean != nil {
		return embedding.NormalizeL2(mean), "built_from_likes", nil
	}

	seed, err := b.seedText(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	vec, err := b.provider.Embed(ctx, seed)
	if err != nil {
		return nil, "", fmt.Errorf("cold-start profile embedding failed: %w", err)
	}

	return vec, "cold_start", nil
}

// seedText produces the cold-start text: declared category interests when
// the user has any, a generic local-discovery blurb otherwise.
func (b *UserProfileBuilder) seedText(ctx context.Context, userID int64) (string, error) {
	categories, err := b.prefs.PreferredCategories(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load preferred categories: %w", err)
	}

	if len(categories) == 0 {
		return genericSeedText, nil
	}

	return fmt.Sprintf("User interests: %s. Prefer ongoing events and popups.",
		strings.Join(categories, ", ")), nil
}
