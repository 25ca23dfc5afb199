package recognition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lens/internal/blob"
	"lens/internal/fault"
	"lens/internal/logging"
	"lens/internal/recognizer"
	"lens/internal/store"
)

// Extraction carries the raw recognizer payload for one blob.
type Extraction struct {
	BlobID    string
	Detection recognizer.Detection
}

// Extractor runs detection against uploaded content and turns content-level
// rejections into terminal statuses.
type Extractor struct {
	store      *store.Store
	recognizer recognizer.Recognizer
	log        *slog.Logger
}

// NewExtractor wires an extractor from its collaborators.
func NewExtractor(st *store.Store, rec recognizer.Recognizer, logger *slog.Logger) *Extractor {
	return &Extractor{
		store:      st,
		recognizer: rec,
		log:        logging.NewComponentLogger(logger, "extractor"),
	}
}

// Extract invokes the recognition capability for id and returns the raw
// payload unchanged. When recognition rejects the content itself, the blob
// is retired to the matching terminal status and the returned error carries
// RecognitionStepHasBeenFailed so the pipeline halts without a fallback
// transition.
func (e *Extractor) Extract(ctx context.Context, id string) (*Extraction, error) {
	detection, err := e.recognizer.Detect(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, recognizer.ErrInvalidFormat):
			return nil, e.failContent(ctx, id, blob.StatusInvalidBlobUploaded, err)
		case errors.Is(err, recognizer.ErrTooLarge):
			return nil, e.failContent(ctx, id, blob.StatusTooLargeBlob, err)
		}
		return nil, fmt.Errorf("detect labels for blob %q: %w", id, err)
	}

	e.log.Debug("labels detected",
		logging.String(logging.FieldBlobID, id),
		logging.Int("labels", len(detection.Labels)))
	return &Extraction{BlobID: id, Detection: detection}, nil
}

func (e *Extractor) failContent(ctx context.Context, id string, status blob.Status, cause error) error {
	if _, err := e.store.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("record content failure for blob %q: %w", id, err)
	}

	e.log.Warn("recognition rejected content",
		logging.String(logging.FieldBlobID, id),
		logging.String(logging.FieldStatus, string(status)),
		logging.Error(cause))
	return fault.Wrap(fault.KindRecognitionStepFailed, cause.Error(), map[string]any{
		"blob_id": id,
	}, cause)
}
