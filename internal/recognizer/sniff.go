package recognizer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"lens/internal/config"
	"lens/internal/objectstore"
)

// Sniff recognizes blobs by decoding their image headers locally. It yields
// coarse labels (format and orientation) without any external service, which
// keeps single-machine deployments self-contained.
type Sniff struct {
	objects  objectstore.Store
	maxBytes int64
}

// NewSniff constructs the header-sniffing recognizer.
func NewSniff(cfg *config.Config, objects objectstore.Store) *Sniff {
	return &Sniff{
		objects:  objects,
		maxBytes: int64(cfg.Recognizer.MaxBlobMiB) << 20,
	}
}

// Detect reads the uploaded content and classifies it by format and shape.
func (s *Sniff) Detect(ctx context.Context, blobID string) (Detection, error) {
	reader, err := s.objects.Open(ctx, blobID)
	if err != nil {
		return Detection{}, err
	}
	defer reader.Close()

	// Read one byte past the limit so an oversized blob is detectable
	// without draining it.
	data, err := io.ReadAll(io.LimitReader(reader, s.maxBytes+1))
	if err != nil {
		return Detection{}, fmt.Errorf("read blob: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return Detection{}, fmt.Errorf("%w: content exceeds %d MiB", ErrTooLarge, s.maxBytes>>20)
	}

	imgCfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Detection{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	return Detection{Labels: []DetectedLabel{
		{
			Name:       strings.ToUpper(format),
			Confidence: 100,
			Parents:    []Parent{{Name: "Image"}},
		},
		{
			Name:       orientation(imgCfg.Width, imgCfg.Height),
			Confidence: 100,
			Parents:    []Parent{{Name: "Image"}},
		},
	}}, nil
}

func orientation(width, height int) string {
	switch {
	case width > height:
		return "Landscape"
	case width < height:
		return "Portrait"
	default:
		return "Square"
	}
}
