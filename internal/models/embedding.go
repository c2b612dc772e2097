package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FloatVector is a fixed-length embedding vector stored as a JSON array in
// a text column. JSON keeps the column portable between PostgreSQL and the
// in-memory SQLite used by tests; the engine compares vectors in process,
// so the database never needs to understand them.
type FloatVector []float32

// Scan implements the sql.Scanner interface for reading from the database.
func (v *FloatVector) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}

	var data []byte
	switch raw := value.(type) {
	case []byte:
		data = raw
	case string:
		data = []byte(raw)
	default:
		return fmt.Errorf("cannot scan %T into FloatVector", value)
	}

	return json.Unmarshal(data, v)
}

// Value implements the driver.Valuer interface for writing to the database.
func (v FloatVector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// ItemEmbedding is the persisted embedding of one item's descriptive text
// under one model. At most one row exists per (item_type, item_id, model);
// rows are created lazily during ranking hydration and never updated in
// place, so an item whose text changes keeps its stale vector until the row
// is invalidated externally.
type ItemEmbedding struct {
	ID       int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemType ItemType `gorm:"not null;uniqueIndex:idx_item_model;type:varchar(16)" json:"item_type"`
	ItemID   int64    `gorm:"not null;uniqueIndex:idx_item_model" json:"item_id"`
	Model    string   `gorm:"not null;uniqueIndex:idx_item_model" json:"model"`

	Dimension int         `gorm:"not null" json:"dimension"`
	Vector    FloatVector `gorm:"type:text;not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// UserProfileEmbedding is a user's taste vector, built from liked-item
// embeddings or a cold-start seed. Keyed by user id alone: switching the
// active embedding model overwrites the row rather than adding one per
// model. Treated strictly as a cache: built on miss, never refreshed when
// new likes arrive.
type UserProfileEmbedding struct {
	UserID int64  `gorm:"primaryKey" json:"user_id"`
	Model  string `gorm:"not null" json:"model"`

	Dimension int         `gorm:"not null" json:"dimension"`
	Vector    FloatVector `gorm:"type:text;not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
