// Package objectstore abstracts where uploaded blob content lives. The local
// backend keeps objects on disk and routes uploads through the daemon's HTTP
// surface; the s3 backend issues presigned upload URLs so content never
// transits the daemon. Object keys are blob ids in both backends.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"lens/internal/config"
)

// ErrNotUploaded reports that no content exists for the requested blob.
var ErrNotUploaded = errors.New("blob content not uploaded")

// Store issues upload targets and serves uploaded blob content.
type Store interface {
	// UploadURL returns the target a caller PUTs blob content to.
	UploadURL(ctx context.Context, blobID string) (string, error)
	// Exists reports whether content for the blob has been uploaded.
	Exists(ctx context.Context, blobID string) (bool, error)
	// Put stores blob content under the blob id.
	Put(ctx context.Context, blobID string, content io.Reader) error
	// Open returns a reader over stored blob content. The caller closes it.
	Open(ctx context.Context, blobID string) (io.ReadCloser, error)
}

// New constructs the object store selected by the configuration.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendLocal:
		return NewLocal(cfg)
	case config.StorageBackendS3:
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage backend: unsupported value %q", cfg.Storage.Backend)
	}
}
