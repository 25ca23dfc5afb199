package workflow

import (
	"context"
	"fmt"
	"time"

	"lens/internal/blob"
	"lens/internal/logging"
)

// Recover re-arms the workflows a previous process left behind: blobs still
// WAITING_FOR_UPLOAD get a watch for the remainder of their window, and
// blobs stuck IN_PROGRESS get their pipeline run again. Both tolerate
// re-execution because every status write is conditional, so recovering
// after a crash cannot corrupt a blob that already moved on.
func (r *Runner) Recover(ctx context.Context) error {
	waiting, err := r.store.List(ctx, blob.StatusWaitingForUpload)
	if err != nil {
		return fmt.Errorf("list blobs awaiting upload: %w", err)
	}
	now := time.Now().UTC()
	for _, record := range waiting {
		remaining := r.uploadWindow - now.Sub(record.CreatedAt)
		if remaining < 0 {
			remaining = 0
		}
		if err := r.watch(record.ID, remaining); err != nil {
			return fmt.Errorf("re-arm watch for blob %q: %w", record.ID, err)
		}
		r.log.Debug("upload watch re-armed",
			logging.String(logging.FieldBlobID, record.ID),
			logging.Duration("remaining", remaining))
	}

	inProgress, err := r.store.List(ctx, blob.StatusInProgress)
	if err != nil {
		return fmt.Errorf("list blobs in progress: %w", err)
	}
	for _, record := range inProgress {
		if err := r.RunRecognition(ctx, record.ID); err != nil {
			return fmt.Errorf("resume recognition for blob %q: %w", record.ID, err)
		}
	}

	if len(waiting)+len(inProgress) > 0 {
		r.log.Info("recovered unfinished workflows",
			logging.Int("watches", len(waiting)),
			logging.Int("pipelines", len(inProgress)))
	}
	return nil
}
