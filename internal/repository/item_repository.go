package repository

import (
	"context"
	"time"

	"github.com/aja5jo/ggoggolist-backend/internal/models"
	"gorm.io/gorm"
)

// ItemRepository handles read access to the three feed entity tables.
// The recommendation engine never writes items; CRUD belongs to the
// marketplace service.
type ItemRepository interface {
	// Candidate sources
	AllStores(ctx context.Context) ([]models.Store, error)
	OngoingEvents(ctx context.Context, today time.Time) ([]models.Event, error)
	OngoingPopups(ctx context.Context, today time.Time) ([]models.Popup, error)

	// Batch-by-id lookups for hydration and assembly
	StoresByIDs(ctx context.Context, ids []int64) ([]models.Store, error)
	EventsByIDs(ctx context.Context, ids []int64) ([]models.Event, error)
	PopupsByIDs(ctx context.Context, ids []int64) ([]models.Popup, error)
}

// itemRepository implements ItemRepository
type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

// AllStores returns every non-deleted store.
func (r *itemRepository) AllStores(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	err := r.db.WithContext(ctx).Find(&stores).Error
	return stores, err
}

// OngoingEvents returns events whose date window covers today.
func (r *itemRepository) OngoingEvents(ctx context.Context, today time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", today, today).
		Find(&events).Error
	return events, err
}

// OngoingPopups returns pop-ups whose date window covers today.
func (r *itemRepository) OngoingPopups(ctx context.Context, today time.Time) ([]models.Popup, error) {
	var popups []models.Popup
	err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", today, today).
		Find(&popups).Error
	return popups, err
}

// StoresByIDs batch-fetches stores. Missing ids are simply absent from the
// result; callers that care about completeness compare lengths themselves.
func (r *itemRepository) StoresByIDs(ctx context.Context, ids []int64) ([]models.Store, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var stores []models.Store
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&stores).Error
	return stores, err
}

// EventsByIDs batch-fetches events by id.
func (r *itemRepository) EventsByIDs(ctx context.Context, ids []int64) ([]models.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var events []models.Event
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&events).Error
	return events, err
}

// PopupsByIDs batch-fetches pop-ups by id.
func (r *itemRepository) PopupsByIDs(ctx context.Context, ids []int64) ([]models.Popup, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var popups []models.Popup
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&popups).Error
	return popups, err
}
