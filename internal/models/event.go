package models

import (
	"time"

	"gorm.io/gorm"
)

// Event represents a time-bounded promotion or happening hosted by a store.
// Only events whose [StartDate, EndDate] window covers today are eligible
// for the home feed.
type Event struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID *int64 `gorm:"index" json:"store_id,omitempty"`

	Name     string `gorm:"not null;index" json:"name"`
	Intro    string `gorm:"type:text" json:"intro"`
	Category string `gorm:"index" json:"category"`
	Address  string `json:"address"`
	ImageURL string `json:"image_url"`

	StartDate time.Time `gorm:"not null;index" json:"start_date"`
	EndDate   time.Time `gorm:"not null;index" json:"end_date"`

	LikeCount int `gorm:"default:0;index" json:"like_count"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Ongoing reports whether the event is running on the given day.
func (e *Event) Ongoing(today time.Time) bool {
	return !today.Before(e.StartDate) && !today.After(e.EndDate)
}
