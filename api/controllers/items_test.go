package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/drobeapp/drobe-backend/api/middleware"
	"github.com/drobeapp/drobe-backend/internal/uploads"
	"github.com/drobeapp/drobe-backend/internal/wardrobe"
	pkgerrors "github.com/drobeapp/drobe-backend/pkg/errors"
	"github.com/drobeapp/drobe-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func TestItemsCreate(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()

	t.Run("missing user", func(t *testing.T) {
		req := multipartItemRequest(t, map[string]string{"type": "jacket"}, "")
		rec := httptest.NewRecorder()
		ItemsCreate(&stubItemService{}, &stubGate{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("gate rejection surfaces as 400", func(t *testing.T) {
		req := multipartItemRequest(t, map[string]string{"type": "jacket"}, "malware.exe")
		req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
		rec := httptest.NewRecorder()
		gate := &stubGate{err: pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type")}
		ItemsCreate(&stubItemService{}, gate, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := multipartItemRequest(t, map[string]string{
			"type":     "jacket",
			"material": "wool",
			"colour":   "#112233",
		}, "jacket.jpg")
		req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))

		svc := &stubItemService{}
		gate := &stubGate{staged: &uploads.StagedImage{Ref: "/content/image-1-abc.jpg"}}
		rec := httptest.NewRecorder()
		ItemsCreate(svc, gate, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.createdWith.imageRef != "/content/image-1-abc.jpg" {
			t.Fatalf("expected staged ref passed through, got %q", svc.createdWith.imageRef)
		}
		if svc.createdWith.input.Type != "jacket" || svc.createdWith.input.Material != "wool" {
			t.Fatalf("unexpected input %+v", svc.createdWith.input)
		}
	})
}

func TestItemsGet(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()
	itemID := uuid.New()

	t.Run("invalid item id", func(t *testing.T) {
		req := itemRequest(t, http.MethodGet, "not-a-uuid", userID.String())
		rec := httptest.NewRecorder()
		ItemsGet(&stubItemService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		req := itemRequest(t, http.MethodGet, itemID.String(), userID.String())
		svc := &stubItemService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "item not found")}
		rec := httptest.NewRecorder()
		ItemsGet(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := itemRequest(t, http.MethodGet, itemID.String(), userID.String())
		svc := &stubItemService{item: &wardrobe.ItemDTO{ID: itemID, OwnerID: userID, Type: "jacket"}}
		rec := httptest.NewRecorder()
		ItemsGet(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var payload struct {
			Data wardrobe.ItemDTO `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload.Data.ID != itemID {
			t.Fatalf("expected item %s, got %s", itemID, payload.Data.ID)
		}
	})
}

func TestItemsDelete(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()
	itemID := uuid.New()

	t.Run("not found", func(t *testing.T) {
		req := itemRequest(t, http.MethodDelete, itemID.String(), userID.String())
		svc := &stubItemService{deleteErr: pkgerrors.New(pkgerrors.CodeNotFound, "item not found")}
		rec := httptest.NewRecorder()
		ItemsDelete(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := itemRequest(t, http.MethodDelete, itemID.String(), userID.String())
		svc := &stubItemService{}
		rec := httptest.NewRecorder()
		ItemsDelete(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !svc.deleteCalled {
			t.Fatalf("expected Delete to be invoked")
		}
	})
}

func itemRequest(t *testing.T, method, itemID, userID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, "/items/"+itemID, nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("itemId", itemID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	ctx = middleware.WithUserID(ctx, userID)
	return req.WithContext(ctx)
}

func multipartItemRequest(t *testing.T, fields map[string]string, filename string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("bytes")); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/items", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

type stubGate struct {
	staged *uploads.StagedImage
	err    error
}

func (s *stubGate) Accept(ctx context.Context, r *http.Request) (*uploads.StagedImage, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.staged != nil {
		// Controllers read form fields after the gate has parsed the body.
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, err
		}
	}
	return s.staged, nil
}

type createCall struct {
	input    wardrobe.CreateItemInput
	imageRef string
}

type stubItemService struct {
	item         *wardrobe.ItemDTO
	items        []wardrobe.ItemDTO
	getErr       error
	deleteErr    error
	createErr    error
	updateErr    error
	createdWith  createCall
	deleteCalled bool
}

func (s *stubItemService) Create(ctx context.Context, ownerID uuid.UUID, input wardrobe.CreateItemInput, imageRef string) (*wardrobe.ItemDTO, error) {
	s.createdWith = createCall{input: input, imageRef: imageRef}
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &wardrobe.ItemDTO{ID: uuid.New(), OwnerID: ownerID, Type: input.Type, Material: input.Material, Colour: input.Colour, ImageRef: imageRef}, nil
}

func (s *stubItemService) List(ctx context.Context, ownerID uuid.UUID) ([]wardrobe.ItemDTO, error) {
	return s.items, nil
}

func (s *stubItemService) Get(ctx context.Context, ownerID, itemID uuid.UUID) (*wardrobe.ItemDTO, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.item, nil
}

func (s *stubItemService) Update(ctx context.Context, ownerID, itemID uuid.UUID, input wardrobe.UpdateItemInput, imageRef string) (*wardrobe.ItemDTO, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.item, nil
}

func (s *stubItemService) Delete(ctx context.Context, ownerID, itemID uuid.UUID) error {
	s.deleteCalled = true
	return s.deleteErr
}
