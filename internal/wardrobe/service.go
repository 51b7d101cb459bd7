package wardrobe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/drobeapp/drobe-backend/pkg/db/models"
	pkgerrors "github.com/drobeapp/drobe-backend/pkg/errors"
	"github.com/drobeapp/drobe-backend/pkg/logger"
	"github.com/drobeapp/drobe-backend/pkg/storage/blob"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const itemNotFoundMessage = "item not found"

// Service defines the wardrobe item lifecycle consumed by the controllers.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateItemInput, imageRef string) (*ItemDTO, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]ItemDTO, error)
	Get(ctx context.Context, ownerID, itemID uuid.UUID) (*ItemDTO, error)
	Update(ctx context.Context, ownerID, itemID uuid.UUID, input UpdateItemInput, imageRef string) (*ItemDTO, error)
	Delete(ctx context.Context, ownerID, itemID uuid.UUID) error
}

type itemRepository interface {
	Create(ctx context.Context, item *models.WardrobeItem) (*models.WardrobeItem, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.WardrobeItem, error)
	FindByOwner(ctx context.Context, ownerID, itemID uuid.UUID) (*models.WardrobeItem, error)
	Save(ctx context.Context, item *models.WardrobeItem) (*models.WardrobeItem, error)
	DeleteByOwner(ctx context.Context, ownerID, itemID uuid.UUID) error
}

type blobDeleter interface {
	Delete(ctx context.Context, ref string) error
}

type service struct {
	items itemRepository
	blobs blobDeleter
	logg  *logger.Logger
}

// ServiceParams bundles the dependencies required to build the item service.
type ServiceParams struct {
	ItemRepo  itemRepository
	BlobStore blobDeleter
	Logger    *logger.Logger
}

// NewService constructs the wardrobe item service.
func NewService(params ServiceParams) (Service, error) {
	if params.ItemRepo == nil {
		return nil, fmt.Errorf("item repository is required")
	}
	if params.BlobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	return &service{
		items: params.ItemRepo,
		blobs: params.BlobStore,
		logg:  params.Logger,
	}, nil
}

// Create persists a new item. The image blob is already staged; any failure
// from here on removes it again so no blob outlives a failed request.
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateItemInput, imageRef string) (*ItemDTO, error) {
	if imageRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image is required")
	}
	if err := validateCreateInput(input); err != nil {
		s.discardBlob(ctx, imageRef)
		return nil, err
	}

	item := &models.WardrobeItem{
		OwnerID:  ownerID,
		Type:     strings.TrimSpace(input.Type),
		Material: strings.TrimSpace(input.Material),
		Colour:   strings.TrimSpace(input.Colour),
		ImageRef: imageRef,
	}

	created, err := s.items.Create(ctx, item)
	if err != nil {
		s.discardBlob(ctx, imageRef)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create item")
	}

	return FromModel(created), nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]ItemDTO, error) {
	items, err := s.items.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items")
	}
	return fromModels(items), nil
}

func (s *service) Get(ctx context.Context, ownerID, itemID uuid.UUID) (*ItemDTO, error) {
	item, err := s.items.FindByOwner(ctx, ownerID, itemID)
	if err != nil {
		return nil, mapLookupError(err, "load item")
	}
	return FromModel(item), nil
}

// Update applies partial field replacements. When a new image was staged the
// record is committed first and only then is the old blob removed.
func (s *service) Update(ctx context.Context, ownerID, itemID uuid.UUID, input UpdateItemInput, imageRef string) (*ItemDTO, error) {
	item, err := s.items.FindByOwner(ctx, ownerID, itemID)
	if err != nil {
		if imageRef != "" {
			s.discardBlob(ctx, imageRef)
		}
		return nil, mapLookupError(err, "load item")
	}

	if v := strings.TrimSpace(input.Type); v != "" {
		item.Type = v
	}
	if v := strings.TrimSpace(input.Material); v != "" {
		item.Material = v
	}
	if v := strings.TrimSpace(input.Colour); v != "" {
		item.Colour = v
	}

	oldImageRef := ""
	if imageRef != "" {
		oldImageRef = item.ImageRef
		item.ImageRef = imageRef
	}

	saved, err := s.items.Save(ctx, item)
	if err != nil {
		if imageRef != "" {
			s.discardBlob(ctx, imageRef)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update item")
	}

	if oldImageRef != "" && oldImageRef != imageRef {
		s.discardBlob(ctx, oldImageRef)
	}

	return FromModel(saved), nil
}

// Delete removes the blob best-effort, then always deletes the record. A
// stale blob is an acceptable leak; a dangling record is not.
func (s *service) Delete(ctx context.Context, ownerID, itemID uuid.UUID) error {
	item, err := s.items.FindByOwner(ctx, ownerID, itemID)
	if err != nil {
		return mapLookupError(err, "load item")
	}

	if item.ImageRef != "" {
		s.discardBlob(ctx, item.ImageRef)
	}

	if err := s.items.DeleteByOwner(ctx, ownerID, itemID); err != nil {
		return mapLookupError(err, "delete item")
	}
	return nil
}

func validateCreateInput(input CreateItemInput) error {
	missing := []string{}
	if strings.TrimSpace(input.Type) == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(input.Material) == "" {
		missing = append(missing, "material")
	}
	if strings.TrimSpace(input.Colour) == "" {
		missing = append(missing, "colour")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
			WithDetails(map[string]any{"fields": missing})
	}
	return nil
}

func (s *service) discardBlob(ctx context.Context, ref string) {
	err := s.blobs.Delete(ctx, ref)
	if err == nil || errors.Is(err, blob.ErrNotFound) {
		return
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"image_ref": ref})
		s.logg.Warn(logCtx, "orphaned blob left behind")
	}
}

func mapLookupError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
