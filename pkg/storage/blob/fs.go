package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/drobeapp/drobe-backend/pkg/config"
	"go.uber.org/multierr"
)

// FSStore keeps blobs as files under a single uploads directory and serves
// them under the configured content prefix.
type FSStore struct {
	root   string
	prefix string
}

// NewFSStore ensures the uploads directory exists and returns a store rooted there.
func NewFSStore(cfg config.StorageConfig) (*FSStore, error) {
	root := cfg.UploadsDir
	if root == "" {
		return nil, fmt.Errorf("uploads dir is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	prefix := strings.TrimSuffix(cfg.ContentPrefix, "/")
	if prefix == "" {
		return nil, fmt.Errorf("content prefix is required")
	}
	return &FSStore{root: root, prefix: prefix}, nil
}

// ContentPrefix returns the URL prefix refs are rooted at.
func (s *FSStore) ContentPrefix() string {
	return s.prefix
}

// Put writes the blob to a new file. The name must not already exist; staged
// names are uniqued upstream so collisions indicate a bug.
func (s *FSStore) Put(ctx context.Context, name string, r io.Reader, _ string) (string, error) {
	clean := path.Base(name)
	if clean == "" || clean == "." || clean == "/" {
		return "", fmt.Errorf("invalid blob name %q", name)
	}

	target := filepath.Join(s.root, clean)
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating blob file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		err = multierr.Append(err, f.Close())
		err = multierr.Append(err, os.Remove(target))
		return "", fmt.Errorf("writing blob: %w", err)
	}
	if err := f.Close(); err != nil {
		err = multierr.Append(err, os.Remove(target))
		return "", fmt.Errorf("closing blob: %w", err)
	}

	return s.prefix + "/" + clean, nil
}

// Open returns a reader over the blob at ref.
func (s *FSStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	target, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes the blob at ref.
func (s *FSStore) Delete(ctx context.Context, ref string) error {
	target, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Ping verifies the uploads directory is still reachable.
func (s *FSStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("uploads path %q is not a directory", s.root)
	}
	return nil
}

// Handler serves the content area for refs produced by this store.
func (s *FSStore) Handler() http.Handler {
	return http.StripPrefix(s.prefix+"/", http.FileServer(http.Dir(s.root)))
}

func (s *FSStore) resolve(ref string) (string, error) {
	name := strings.TrimPrefix(ref, s.prefix+"/")
	if name == ref {
		return "", fmt.Errorf("ref %q is outside the content area", ref)
	}
	clean := path.Base(name)
	if clean == "" || clean == "." || clean == "/" {
		return "", fmt.Errorf("invalid ref %q", ref)
	}
	return filepath.Join(s.root, clean), nil
}
