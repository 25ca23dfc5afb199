package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"lens/internal/config"
)

// Local stores blob content as plain files under a single directory. Upload
// targets point back at the daemon's own content endpoint.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal constructs the directory-backed object store.
func NewLocal(cfg *config.Config) (*Local, error) {
	dir := strings.TrimSpace(cfg.Paths.ObjectsDir)
	if dir == "" {
		return nil, errors.New("objects directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create objects directory: %w", err)
	}
	return &Local{dir: dir, baseURL: cfg.API.PublicBaseURL}, nil
}

func (l *Local) path(blobID string) (string, error) {
	if blobID == "" || strings.ContainsAny(blobID, `/\`) {
		return "", fmt.Errorf("invalid blob id %q", blobID)
	}
	return filepath.Join(l.dir, blobID), nil
}

// UploadURL points the caller at the daemon's content endpoint for the blob.
func (l *Local) UploadURL(_ context.Context, blobID string) (string, error) {
	if _, err := l.path(blobID); err != nil {
		return "", err
	}
	return l.baseURL + "/v1/blobs/" + blobID + "/content", nil
}

// Exists reports whether content has been stored for the blob.
func (l *Local) Exists(_ context.Context, blobID string) (bool, error) {
	target, err := l.path(blobID)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	return !info.IsDir(), nil
}

// Put writes content to a temp file and renames it into place so readers
// never observe a partial object.
func (l *Local) Put(_ context.Context, blobID string, content io.Reader) error {
	target, err := l.path(blobID)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("finalize object: %w", err)
	}
	return nil
}

// Open returns a reader over the stored content.
func (l *Local) Open(_ context.Context, blobID string) (io.ReadCloser, error) {
	target, err := l.path(blobID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("blob %q: %w", blobID, ErrNotUploaded)
		}
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}
