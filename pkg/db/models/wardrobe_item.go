package models

import (
	"time"

	"github.com/google/uuid"
)

// WardrobeItem is a single piece of clothing owned by a user. ImageRef always
// points at a blob in the content area for the lifetime of the row.
type WardrobeItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index" json:"owner_id"`
	Type      string    `gorm:"column:type;not null" json:"type"`
	Material  string    `gorm:"column:material;not null" json:"material"`
	Colour    string    `gorm:"column:colour;not null" json:"colour"`
	ImageRef  string    `gorm:"column:image_ref;not null" json:"image_ref"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
