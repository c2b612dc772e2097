package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a ggoggolist account. Authentication and profile editing
// live in the upstream marketplace service; the recommendation backend only
// needs the identity row plus category preferences and favorites.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Nickname string `gorm:"not null" json:"nickname"`

	PasswordHash *string `gorm:"type:text" json:"-"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CategoryPreference is a user's declared interest in a category, collected
// during onboarding. Used only as cold-start seed text for the taste vector.
type CategoryPreference struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   int64  `gorm:"not null;uniqueIndex:idx_user_category" json:"user_id"`
	Category string `gorm:"not null;uniqueIndex:idx_user_category" json:"category"`

	CreatedAt time.Time `json:"created_at"`
}
