package wardrobe

import (
	"context"

	"github.com/drobeapp/drobe-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes wardrobe item persistence scoped to an owner.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new item row.
func (r *Repository) Create(ctx context.Context, item *models.WardrobeItem) (*models.WardrobeItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// ListByOwner returns the owner's items in creation order.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.WardrobeItem, error) {
	var items []models.WardrobeItem
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByOwner loads one item, matching both id and owner. A wrong owner is
// indistinguishable from a missing row.
func (r *Repository) FindByOwner(ctx context.Context, ownerID, itemID uuid.UUID) (*models.WardrobeItem, error) {
	var item models.WardrobeItem
	if err := r.db.WithContext(ctx).
		First(&item, "id = ? AND owner_id = ?", itemID, ownerID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Save persists all fields of an existing item row.
func (r *Repository) Save(ctx context.Context, item *models.WardrobeItem) (*models.WardrobeItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteByOwner removes the item if it exists and is owned by the caller.
func (r *Repository) DeleteByOwner(ctx context.Context, ownerID, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", itemID, ownerID).
		Delete(&models.WardrobeItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
