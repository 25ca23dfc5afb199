// Package recognizer detects content labels in uploaded blobs. The sniff
// backend inspects image headers locally; the rekognition backend calls AWS
// Rekognition against the blob's S3 object. Both classify bad input content
// into the same two sentinel errors so the workflow handles them uniformly.
package recognizer

import (
	"context"
	"errors"
	"fmt"

	"lens/internal/config"
	"lens/internal/objectstore"
)

var (
	// ErrInvalidFormat reports that the uploaded content is not a supported image.
	ErrInvalidFormat = errors.New("invalid image format")
	// ErrTooLarge reports that the uploaded content exceeds the size limit.
	ErrTooLarge = errors.New("image too large")
)

// Parent names a broader category a detected label belongs to.
type Parent struct {
	Name string
}

// DetectedLabel is one raw detection result.
type DetectedLabel struct {
	Name       string
	Confidence float64
	Parents    []Parent
}

// Detection is the raw payload produced by a recognition backend.
type Detection struct {
	Labels []DetectedLabel
}

// Recognizer detects labels for an uploaded blob.
type Recognizer interface {
	Detect(ctx context.Context, blobID string) (Detection, error)
}

// New constructs the recognizer selected by the configuration.
func New(ctx context.Context, cfg *config.Config, objects objectstore.Store) (Recognizer, error) {
	switch cfg.Recognizer.Backend {
	case config.RecognizerBackendSniff:
		return NewSniff(cfg, objects), nil
	case config.RecognizerBackendRekognition:
		return NewRekognition(ctx, cfg)
	default:
		return nil, fmt.Errorf("recognizer backend: unsupported value %q", cfg.Recognizer.Backend)
	}
}
