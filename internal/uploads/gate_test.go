package uploads

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/drobeapp/drobe-backend/pkg/config"
	pkgerrors "github.com/drobeapp/drobe-backend/pkg/errors"
	"github.com/drobeapp/drobe-backend/pkg/storage/blob"
)

func TestGateAcceptsValidImage(t *testing.T) {
	store := newFakeBlobStore()
	gate := mustGate(t, store)

	req := multipartRequest(t, FieldName, "shirt.png", []byte("png-bytes"))
	staged, err := gate.Accept(context.Background(), req)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if staged == nil {
		t.Fatal("expected staged image")
	}
	if !strings.HasPrefix(staged.Name, "image-") || !strings.HasSuffix(staged.Name, ".png") {
		t.Fatalf("unexpected staged name %q", staged.Name)
	}
	if got := store.data[staged.Ref]; string(got) != "png-bytes" {
		t.Fatalf("expected blob bytes staged, got %q", got)
	}
}

func TestGateRejectsDisallowedExtension(t *testing.T) {
	gate := mustGate(t, newFakeBlobStore())

	req := multipartRequest(t, FieldName, "malware.exe", []byte("nope"))
	_, err := gate.Accept(context.Background(), req)
	if err == nil {
		t.Fatal("expected rejection for .exe")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGateRejectsOversizedImage(t *testing.T) {
	store := newFakeBlobStore()
	gate, err := NewGate(store, config.UploadConfig{MaxUploadMB: 1, AllowedExtensions: []string{"png"}})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	big := bytes.Repeat([]byte("a"), 1<<20+1)
	req := multipartRequest(t, FieldName, "huge.png", big)
	_, err = gate.Accept(context.Background(), req)
	if err == nil {
		t.Fatal("expected rejection for oversized image")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.data) != 0 {
		t.Fatalf("expected nothing staged, got %d blobs", len(store.data))
	}
}

func TestGateNormalizesConfiguredExtensions(t *testing.T) {
	store := newFakeBlobStore()
	gate, err := NewGate(store, config.UploadConfig{
		MaxUploadMB:       5,
		AllowedExtensions: []string{" PNG ", ".jpg", ""},
	})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	req := multipartRequest(t, FieldName, "shirt.png", []byte("png-bytes"))
	if _, err := gate.Accept(context.Background(), req); err != nil {
		t.Fatalf("expected normalized extension to be allowed: %v", err)
	}

	req = multipartRequest(t, FieldName, "photo.gif", []byte("gif-bytes"))
	if _, err := gate.Accept(context.Background(), req); err == nil {
		t.Fatal("expected rejection for extension outside the configured list")
	}

	if _, err := NewGate(store, config.UploadConfig{MaxUploadMB: 5, AllowedExtensions: []string{" ", ""}}); err == nil {
		t.Fatal("expected error when no usable extension is configured")
	}
}

func TestGateReturnsNilWhenNoFileSent(t *testing.T) {
	gate := mustGate(t, newFakeBlobStore())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("type", "shirt"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/items", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	staged, err := gate.Accept(context.Background(), req)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if staged != nil {
		t.Fatalf("expected nil staged image, got %+v", staged)
	}
}

func TestGateDiscardRemovesStagedBlob(t *testing.T) {
	store := newFakeBlobStore()
	gate := mustGate(t, store)

	req := multipartRequest(t, FieldName, "shirt.jpg", []byte("jpg-bytes"))
	staged, err := gate.Accept(context.Background(), req)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := gate.Discard(context.Background(), staged); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if len(store.data) != 0 {
		t.Fatalf("expected blob removed, got %d blobs", len(store.data))
	}
}

func mustGate(t *testing.T, store blob.Store) *Gate {
	t.Helper()
	gate, err := NewGate(store, config.UploadConfig{MaxUploadMB: 5, AllowedExtensions: []string{"jpg", "jpeg", "png", "gif"}})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	return gate
}

func multipartRequest(t *testing.T, field, filename string, payload []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/items", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

type fakeBlobStore struct {
	data map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{data: map[string][]byte{}}
}

func (f *fakeBlobStore) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	ref := "/content/" + name
	f.data[ref] = payload
	return ref, nil
}

func (f *fakeBlobStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	payload, ok := f.data[ref]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, ref string) error {
	if _, ok := f.data[ref]; !ok {
		return blob.ErrNotFound
	}
	delete(f.data, ref)
	return nil
}

func (f *fakeBlobStore) Ping(ctx context.Context) error {
	return nil
}
