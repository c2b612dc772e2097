package models

import (
	"time"

	"gorm.io/gorm"
)

// Store represents a registered local store (a permanent shop, as opposed
// to the time-bounded Event and Popup entities).
type Store struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID *int64 `gorm:"index" json:"owner_id,omitempty"`

	Name        string `gorm:"not null;index" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"index" json:"category"`
	Address     string `json:"address"`
	ImageURL    string `json:"image_url"`

	// Engagement metrics (denormalized from favorites for cheap sorting)
	LikeCount int `gorm:"default:0;index" json:"like_count"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
