package uploads

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/drobeapp/drobe-backend/pkg/config"
	pkgerrors "github.com/drobeapp/drobe-backend/pkg/errors"
	"github.com/drobeapp/drobe-backend/pkg/storage/blob"
)

// FieldName is the multipart form field the image must arrive under.
const FieldName = "image"

const randomSuffixBytes = 6

// StagedImage describes a blob accepted by the gate and written to storage.
type StagedImage struct {
	Ref         string
	Name        string
	ContentType string
	SizeBytes   int64
}

// Gate accepts one image per request, enforces the extension allow-list and
// size ceiling, and stages the blob before any record is written.
type Gate struct {
	store      blob.Store
	maxBytes   int64
	extensions map[string]struct{}
}

// NewGate builds an upload gate from the configured limits.
func NewGate(store blob.Store, cfg config.UploadConfig) (*Gate, error) {
	if store == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	maxBytes := cfg.MaxUploadBytes()
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}

	extensions := map[string]struct{}{}
	for _, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		extensions["."+strings.TrimPrefix(ext, ".")] = struct{}{}
	}
	if len(extensions) == 0 {
		return nil, fmt.Errorf("at least one allowed extension is required")
	}

	return &Gate{
		store:      store,
		maxBytes:   maxBytes,
		extensions: extensions,
	}, nil
}

// Accept pulls the image field out of the request, validates it, and stages
// the blob. A nil result with nil error means no file was sent.
func (g *Gate) Accept(ctx context.Context, r *http.Request) (*StagedImage, error) {
	if err := r.ParseMultipartForm(g.maxBytes); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "request body too large") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "image exceeds the size limit")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	file, header, err := r.FormFile(FieldName)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image field")
	}
	defer file.Close()

	return g.stage(ctx, file, header)
}

func (g *Gate) stage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*StagedImage, error) {
	ext := strings.ToLower(path.Ext(header.Filename))
	if _, ok := g.extensions[ext]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type")
	}
	if header.Size > g.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image exceeds the size limit")
	}

	name, err := stagedName(ext)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate blob name")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}

	// LimitReader guards against clients lying in the Content-Length header.
	ref, err := g.store.Put(ctx, name, io.LimitReader(file, g.maxBytes), contentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stage image")
	}

	return &StagedImage{
		Ref:         ref,
		Name:        name,
		ContentType: contentType,
		SizeBytes:   header.Size,
	}, nil
}

// Discard removes a staged blob after a downstream failure.
func (g *Gate) Discard(ctx context.Context, staged *StagedImage) error {
	if staged == nil || staged.Ref == "" {
		return nil
	}
	return g.store.Delete(ctx, staged.Ref)
}

func stagedName(ext string) (string, error) {
	suffix := make([]byte, randomSuffixBytes)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return fmt.Sprintf("image-%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(suffix), ext), nil
}
