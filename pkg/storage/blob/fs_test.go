package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/drobeapp/drobe-backend/pkg/config"
)

func newTestStore(t *testing.T) *FSStore {
	t.Helper()
	store, err := NewFSStore(config.StorageConfig{
		UploadsDir:    t.TempDir(),
		ContentPrefix: "/content",
	})
	if err != nil {
		t.Fatalf("new fs store: %v", err)
	}
	return store
}

func TestFSStorePutOpenDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, "image-1-abc.jpg", strings.NewReader("bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ref != "/content/image-1-abc.jpg" {
		t.Fatalf("unexpected ref %q", ref)
	}

	rc, err := store.Open(ctx, ref)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "bytes" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, ref); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFSStoreDeleteMissingBlob(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete(context.Background(), "/content/never-staged.png")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFSStoreRejectsForeignRefs(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Open(context.Background(), "/elsewhere/file.png"); err == nil {
		t.Fatal("expected error for ref outside the content area")
	}
	if err := store.Delete(context.Background(), "../escape.png"); err == nil {
		t.Fatal("expected error for relative ref")
	}
}

func TestFSStorePutRejectsDuplicateNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Put(ctx, "image-2-dup.png", strings.NewReader("a"), "image/png"); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(ctx, "image-2-dup.png", strings.NewReader("b"), "image/png"); err == nil {
		t.Fatal("expected duplicate name to fail")
	}
}

func TestFSStorePing(t *testing.T) {
	store := newTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
