package repository

import (
	"context"

	"github.com/aja5jo/ggoggolist-backend/internal/models"
	"gorm.io/gorm"
)

// FavoriteRepository exposes the like relation to the recommendation
// engine: liked ids feed the taste vector, and the liked-id set resolves
// the "liked" flag on assembled feed items.
type FavoriteRepository interface {
	// LikedItemIDs returns the ids of one item type the user has liked.
	LikedItemIDs(ctx context.Context, userID int64, itemType models.ItemType) ([]int64, error)

	// LikedIDSet returns which of the given ids the user has liked, as a
	// set. Batch variant of a per-item exists check so assembly does one
	// query per type instead of one per row.
	LikedIDSet(ctx context.Context, userID int64, itemType models.ItemType, ids []int64) (map[int64]bool, error)
}

// PreferenceRepository reads a user's onboarding category preferences,
// used only for cold-start seed text.
type PreferenceRepository interface {
	PreferredCategories(ctx context.Context, userID int64) ([]string, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) LikedItemIDs(ctx context.Context, userID int64, itemType models.ItemType) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND item_type = ?", userID, itemType).
		Pluck("item_id", &ids).Error
	return ids, err
}

func (r *favoriteRepository) LikedIDSet(ctx context.Context, userID int64, itemType models.ItemType, ids []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return liked, nil
	}

	var likedIDs []int64
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND item_type = ? AND item_id IN ?", userID, itemType, ids).
		Pluck("item_id", &likedIDs).Error
	if err != nil {
		return nil, err
	}

	for _, id := range likedIDs {
		liked[id] = true
	}
	return liked, nil
}

type preferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) PreferredCategories(ctx context.Context, userID int64) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.CategoryPreference{}).
		Where("user_id = ?", userID).
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}
