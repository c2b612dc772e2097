package models

import (
	"time"

	"gorm.io/gorm"
)

// Popup represents a temporary pop-up shop. Structurally it mirrors Event
// but is sourced and curated separately, so it stays a distinct entity.
type Popup struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

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

// Ongoing reports whether the pop-up is open on the given day.
func (p *Popup) Ongoing(today time.Time) bool {
	return !today.Before(p.StartDate) && !today.After(p.EndDate)
}
