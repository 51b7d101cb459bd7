package wardrobe

import (
	"context"
	"errors"
	"testing"

	"github.com/drobeapp/drobe-backend/pkg/db/models"
	pkgerrors "github.com/drobeapp/drobe-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestServiceCreatePersistsItem(t *testing.T) {
	repo := newStubItemRepo()
	blobs := newStubBlobDeleter()
	svc := buildService(t, repo, blobs)

	ownerID := uuid.New()
	item, err := svc.Create(context.Background(), ownerID, CreateItemInput{
		Type:     "jacket",
		Material: "wool",
		Colour:   "#112233",
	}, "/content/image-1-abc.jpg")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.OwnerID != ownerID {
		t.Fatalf("expected owner %s, got %s", ownerID, item.OwnerID)
	}
	if item.ImageRef != "/content/image-1-abc.jpg" {
		t.Fatalf("unexpected image ref %q", item.ImageRef)
	}
	if len(blobs.deleted) != 0 {
		t.Fatalf("expected no blob deletes, got %v", blobs.deleted)
	}
}

func TestServiceCreateRequiresImage(t *testing.T) {
	svc := buildService(t, newStubItemRepo(), newStubBlobDeleter())

	_, err := svc.Create(context.Background(), uuid.New(), CreateItemInput{
		Type:     "jacket",
		Material: "wool",
		Colour:   "#112233",
	}, "")
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceCreateMissingFieldsDiscardsBlob(t *testing.T) {
	blobs := newStubBlobDeleter()
	svc := buildService(t, newStubItemRepo(), blobs)

	_, err := svc.Create(context.Background(), uuid.New(), CreateItemInput{Type: "jacket"}, "/content/staged.png")
	assertCode(t, err, pkgerrors.CodeValidation)
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "/content/staged.png" {
		t.Fatalf("expected staged blob discarded, got %v", blobs.deleted)
	}
}

func TestServiceCreatePersistFailureDiscardsBlob(t *testing.T) {
	repo := newStubItemRepo()
	repo.createErr = errors.New("disk full")
	blobs := newStubBlobDeleter()
	svc := buildService(t, repo, blobs)

	_, err := svc.Create(context.Background(), uuid.New(), CreateItemInput{
		Type:     "jacket",
		Material: "wool",
		Colour:   "#112233",
	}, "/content/staged.png")
	assertCode(t, err, pkgerrors.CodeInternal)
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "/content/staged.png" {
		t.Fatalf("expected staged blob discarded, got %v", blobs.deleted)
	}
}

func TestServiceCreateCleanupFailureStillReturnsOriginalError(t *testing.T) {
	repo := newStubItemRepo()
	repo.createErr = errors.New("disk full")
	blobs := newStubBlobDeleter()
	blobs.err = errors.New("blob store down")
	svc := buildService(t, repo, blobs)

	_, err := svc.Create(context.Background(), uuid.New(), CreateItemInput{
		Type:     "jacket",
		Material: "wool",
		Colour:   "#112233",
	}, "/content/staged.png")
	assertCode(t, err, pkgerrors.CodeInternal)
}

func TestServiceGetHidesForeignItems(t *testing.T) {
	repo := newStubItemRepo()
	owner := uuid.New()
	stranger := uuid.New()
	item := repo.seed(owner, "shirt", "cotton", "#ffffff", "/content/a.png")

	svc := buildService(t, repo, newStubBlobDeleter())

	if _, err := svc.Get(context.Background(), owner, item.ID); err != nil {
		t.Fatalf("get as owner: %v", err)
	}

	_, err := svc.Get(context.Background(), stranger, item.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceListReturnsOnlyCallerItems(t *testing.T) {
	repo := newStubItemRepo()
	owner := uuid.New()
	other := uuid.New()
	repo.seed(owner, "shirt", "cotton", "#ffffff", "/content/a.png")
	repo.seed(owner, "jeans", "denim", "#0000aa", "/content/b.png")
	repo.seed(other, "hat", "felt", "#333333", "/content/c.png")

	svc := buildService(t, repo, newStubBlobDeleter())

	items, err := svc.List(context.Background(), owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for _, item := range items {
		if item.OwnerID != owner {
			t.Fatalf("leaked foreign item %s", item.ID)
		}
	}
}

func TestServiceUpdatePartialKeepsOtherFields(t *testing.T) {
	repo := newStubItemRepo()
	owner := uuid.New()
	item := repo.seed(owner, "shirt", "cotton", "#ffffff", "/content/a.png")

	blobs := newStubBlobDeleter()
	svc := buildService(t, repo, blobs)

	updated, err := svc.Update(context.Background(), owner, item.ID, UpdateItemInput{Type: "blouse"}, "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Type != "blouse" {
		t.Fatalf("expected type updated, got %q", updated.Type)
	}
	if updated.Material != "cotton" || updated.Colour != "#ffffff" || updated.ImageRef != "/content/a.png" {
		t.Fatalf("expected untouched fields preserved, got %+v", updated)
	}
	if len(blobs.deleted) != 0 {
		t.Fatalf("expected no blob deletes, got %v", blobs.deleted)
	}
}

func TestServiceUpdateNewImageRemovesOldBlobAfterSave(t *testing.T) {
	repo := newStubItemRepo()
	owner := uuid.New()
	item := repo.seed(owner, "shirt", "cotton", "#ffffff", "/content/old.png")

	blobs := newStubBlobDeleter()
	svc := buildService(t, repo, blobs)

	updated, err := svc.Update(context.Background(), owner, item.ID, UpdateItemInput{}, "/content/new.png")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ImageRef != "/content/new.png" {
		t.Fatalf("expected new image ref, got %q", updated.ImageRef)
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "/content/old.png" {
		t.Fatalf("expected old blob removed, got %v", blobs.deleted)
	}
}

func TestServiceUpdateSaveFailureDiscardsNewBlob(t *testing.T) {
	repo := newStubItemRepo()
	owner := uuid.New()
	repo.seed(owner, "shirt", "cotton", "#ffffff", "/content/old.png")
	repo.saveErr = errors.New("deadlock")

	blobs := newStubBlobDeleter()
	svc := buildService(t, repo, blobs)

	itemID := repo.onlyItemID(t)
	_, err := svc.Update(context.Background(), owner, itemID, UpdateItemInput{}, "/content/new.png")
	assertCode(t, err, pkgerrors.CodeInternal)
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "/content/new.png" {
		t.Fatalf("expected new blob discarded and old kept, got %v", blobs.deleted)
	}
	if got := repo.items[itemID].ImageRef; got != "/content/old.png" {
		t.Fatalf("expected record to keep old image ref, got %q", got)
	}
}

func TestServiceDeleteRemovesBlobThenRecord(t *testing.T) {
	repo := newStubItemRepo()
	owner := uuid.New()
	item := repo.seed(owner, "shirt", "cotton", "#ffffff", "/content/a.png")

	blobs := newStubBlobDeleter()
	svc := buildService(t, repo, blobs)

	if err := svc.Delete(context.Background(), owner, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "/content/a.png" {
		t.Fatalf("expected blob removed, got %v", blobs.deleted)
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected record removed")
	}

	err := svc.Delete(context.Background(), owner, item.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceDeleteRemovesRecordWhenBlobDeleteFails(t *testing.T) {
	repo := newStubItemRepo()
	owner := uuid.New()
	item := repo.seed(owner, "shirt", "cotton", "#ffffff", "/content/a.png")

	blobs := newStubBlobDeleter()
	blobs.err = errors.New("blob store down")
	svc := buildService(t, repo, blobs)

	if err := svc.Delete(context.Background(), owner, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected record removed despite blob failure")
	}
}

func buildService(t *testing.T, repo itemRepository, blobs blobDeleter) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		ItemRepo:  repo,
		BlobStore: blobs,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

type stubItemRepo struct {
	items     map[uuid.UUID]*models.WardrobeItem
	order     []uuid.UUID
	createErr error
	saveErr   error
}

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{items: map[uuid.UUID]*models.WardrobeItem{}}
}

func (s *stubItemRepo) seed(ownerID uuid.UUID, kind, material, colour, imageRef string) *models.WardrobeItem {
	item := &models.WardrobeItem{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Type:     kind,
		Material: material,
		Colour:   colour,
		ImageRef: imageRef,
	}
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	return item
}

func (s *stubItemRepo) onlyItemID(t *testing.T) uuid.UUID {
	t.Helper()
	if len(s.order) != 1 {
		t.Fatalf("expected exactly one seeded item, got %d", len(s.order))
	}
	return s.order[0]
}

func (s *stubItemRepo) Create(ctx context.Context, item *models.WardrobeItem) (*models.WardrobeItem, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	item.ID = uuid.New()
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	return item, nil
}

func (s *stubItemRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.WardrobeItem, error) {
	var out []models.WardrobeItem
	for _, id := range s.order {
		if item, ok := s.items[id]; ok && item.OwnerID == ownerID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubItemRepo) FindByOwner(ctx context.Context, ownerID, itemID uuid.UUID) (*models.WardrobeItem, error) {
	item, ok := s.items[itemID]
	if !ok || item.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *item
	return &clone, nil
}

func (s *stubItemRepo) Save(ctx context.Context, item *models.WardrobeItem) (*models.WardrobeItem, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	clone := *item
	s.items[item.ID] = &clone
	return item, nil
}

func (s *stubItemRepo) DeleteByOwner(ctx context.Context, ownerID, itemID uuid.UUID) error {
	item, ok := s.items[itemID]
	if !ok || item.OwnerID != ownerID {
		return gorm.ErrRecordNotFound
	}
	delete(s.items, itemID)
	for i, id := range s.order {
		if id == itemID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

type stubBlobDeleter struct {
	deleted []string
	err     error
}

func newStubBlobDeleter() *stubBlobDeleter {
	return &stubBlobDeleter{}
}

func (s *stubBlobDeleter) Delete(ctx context.Context, ref string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, ref)
	return nil
}
