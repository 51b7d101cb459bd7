package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a ref does not resolve to a stored blob.
var ErrNotFound = errors.New("blob not found")

// Store is a name-addressed blob store backing the wardrobe content area.
// Put writes the blob under the given name and returns the stable reference
// that clients resolve against the serving origin.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
	Ping(ctx context.Context) error
}
