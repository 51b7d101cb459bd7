package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/drobeapp/drobe-backend/pkg/config"
)

type objectClient interface {
	UploadObject(ctx context.Context, object, contentType string, r io.Reader) error
	ReadObject(ctx context.Context, object string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, object string) error
	Ping(ctx context.Context) error
}

// GCSStore keeps blobs in a bucket while serving them under the same content
// prefix as the filesystem backend, so refs stay interchangeable.
type GCSStore struct {
	client objectClient
	prefix string
}

// NewGCSStore wraps a bucket client as a content-area store.
func NewGCSStore(client objectClient, cfg config.StorageConfig) (*GCSStore, error) {
	if client == nil {
		return nil, fmt.Errorf("gcs client is required")
	}
	prefix := strings.TrimSuffix(cfg.ContentPrefix, "/")
	if prefix == "" {
		return nil, fmt.Errorf("content prefix is required")
	}
	return &GCSStore{client: client, prefix: prefix}, nil
}

func (s *GCSStore) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	clean := path.Base(name)
	if clean == "" || clean == "." || clean == "/" {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	if err := s.client.UploadObject(ctx, clean, contentType, r); err != nil {
		return "", fmt.Errorf("uploading blob: %w", err)
	}
	return s.prefix + "/" + clean, nil
}

func (s *GCSStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	object, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	rc, err := s.client.ReadObject(ctx, object)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rc, nil
}

func (s *GCSStore) Delete(ctx context.Context, ref string) error {
	object, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := s.client.DeleteObject(ctx, object); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *GCSStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Handler streams objects for refs produced by this store.
func (s *GCSStore) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc, err := s.Open(r.Context(), r.URL.Path)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "content unavailable", http.StatusBadGateway)
			return
		}
		defer rc.Close()
		if contentType := mime.TypeByExtension(path.Ext(r.URL.Path)); contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		_, _ = io.Copy(w, rc)
	})
}

func (s *GCSStore) resolve(ref string) (string, error) {
	name := strings.TrimPrefix(ref, s.prefix+"/")
	if name == ref {
		return "", fmt.Errorf("ref %q is outside the content area", ref)
	}
	clean := path.Base(name)
	if clean == "" || clean == "." || clean == "/" {
		return "", fmt.Errorf("invalid ref %q", ref)
	}
	return clean, nil
}
