package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/aja5jo/ggoggolist-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists item and user-profile embeddings. Writes are upserts keyed
// by natural identity, so concurrent writers for the same key resolve to
// last-write-wins without coordination.
type Store struct {
	db *gorm.DB
}

// NewStore creates an embedding store on top of the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindVectors batch-loads item vectors for the given ids under one model.
// Ids with no stored embedding are simply absent from the result map.
func (s *Store) FindVectors(ctx context.Context, itemType models.ItemType, ids []int64, model string) (map[int64][]float32, error) {
	result := make(map[int64][]float32, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.ItemEmbedding
	err := s.db.WithContext(ctx).
		Where("item_type = ? AND model = ? AND item_id IN ?", itemType, model, ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load item embeddings: %w", err)
	}

	for _, row := range rows {
		result[row.ItemID] = row.Vector
	}
	return result, nil
}

// Upsert stores an item embedding, replacing any existing row for the same
// (item_type, item_id, model) key.
func (s *Store) Upsert(ctx context.Context, itemType models.ItemType, itemID int64, model string, dimension int, vector []float32) error {
	if len(vector) != dimension {
		return fmt.Errorf("vector length %d does not match dimension %d", len(vector), dimension)
	}

	row := models.ItemEmbedding{
		ItemType:  itemType,
		ItemID:    itemID,
		Model:     model,
		Dimension: dimension,
		Vector:    models.FloatVector(vector),
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_type"}, {Name: "item_id"}, {Name: "model"}},
			DoUpdates: clause.AssignmentColumns([]string{"dimension", "vector"}),
		}).
		Create(&row).Error
}

// FindUserVector returns the cached taste vector for a user, or (nil, nil)
// when none exists or the stored row was built under a different model.
func (s *Store) FindUserVector(ctx context.Context, userID int64, model string) ([]float32, error) {
	var row models.UserProfileEmbedding
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile embedding: %w", err)
	}

	// A row from a previous embedding model is useless for scoring; treat
	// it as a miss so the profile gets rebuilt and overwritten.
	if row.Model != model {
		return nil, nil
	}

	return row.Vector, nil
}

// SaveUserVector upserts a user's taste vector. One row per user: a model
// switch overwrites the old profile.
func (s *Store) SaveUserVector(ctx context.Context, userID int64, model string, dimension int, vector []float32) error {
	if len(vector) != dimension {
		return fmt.Errorf("vector length %d does not match dimension %d", len(vector), dimension)
	}

	row := models.UserProfileEmbedding{
		UserID:    userID,
		Model:     model,
		Dimension: dimension,
		Vector:    models.FloatVector(vector),
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"model", "dimension", "vector", "updated_at"}),
		}).
		Create(&row).Error
}

// InvalidateUserVector drops a user's cached taste vector so the next
// recommendation request rebuilds it from current likes.
func (s *Store) InvalidateUserVector(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.UserProfileEmbedding{}).Error
}
