package wardrobe

import (
	"time"

	"github.com/google/uuid"

	"github.com/drobeapp/drobe-backend/pkg/db/models"
)

// ItemDTO is the transport shape of a wardrobe item.
type ItemDTO struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Type      string    `json:"type"`
	Material  string    `json:"material"`
	Colour    string    `json:"colour"`
	ImageRef  string    `json:"image_ref"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateItemInput carries the descriptive fields for a new item.
type CreateItemInput struct {
	Type     string
	Material string
	Colour   string
}

// UpdateItemInput carries optional replacements. Empty fields keep the
// currently stored value.
type UpdateItemInput struct {
	Type     string
	Material string
	Colour   string
}

func FromModel(item *models.WardrobeItem) *ItemDTO {
	if item == nil {
		return nil
	}
	return &ItemDTO{
		ID:        item.ID,
		OwnerID:   item.OwnerID,
		Type:      item.Type,
		Material:  item.Material,
		Colour:    item.Colour,
		ImageRef:  item.ImageRef,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func fromModels(items []models.WardrobeItem) []ItemDTO {
	out := make([]ItemDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i]))
	}
	return out
}
