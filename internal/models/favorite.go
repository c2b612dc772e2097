package models

import "time"

// Favorite is a user's like on a store, event, or pop-up. One row per
// (user, type, item); unliking deletes the row outright, so there is no
// soft-delete column here.
type Favorite struct {
	ID       int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   int64    `gorm:"not null;uniqueIndex:idx_fav_user_item" json:"user_id"`
	ItemType ItemType `gorm:"not null;uniqueIndex:idx_fav_user_item;type:varchar(16)" json:"item_type"`
	ItemID   int64    `gorm:"not null;uniqueIndex:idx_fav_user_item;index" json:"item_id"`

	CreatedAt time.Time `json:"created_at"`
}
