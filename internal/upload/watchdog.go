package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lens/internal/blob"
	"lens/internal/logging"
	"lens/internal/objectstore"
	"lens/internal/store"
)

// Watchdog retires blobs whose content never arrived. It is armed once per
// registration and safe to invoke repeatedly for the same blob.
type Watchdog struct {
	store   *store.Store
	objects objectstore.Store
	log     *slog.Logger
}

// NewWatchdog wires a watchdog from its collaborators.
func NewWatchdog(st *store.Store, objects objectstore.Store, logger *slog.Logger) *Watchdog {
	return &Watchdog{
		store:   st,
		objects: objects,
		log:     logging.NewComponentLogger(logger, "watchdog"),
	}
}

// Expire checks whether content for id has arrived. Present content is left
// to the recognition trigger; absent content retires the blob as
// UPLOAD_TIMED_OUT. A blob that already moved on is left untouched.
func (w *Watchdog) Expire(ctx context.Context, id string) error {
	uploaded, err := w.objects.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check upload for blob %q: %w", id, err)
	}
	if uploaded {
		w.log.Debug("upload present, deferring to recognition",
			logging.String(logging.FieldBlobID, id))
		return nil
	}

	record, err := w.store.UpdateStatus(ctx, id, blob.StatusUploadTimedOut)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Recognition began between the existence check and the write.
			w.log.Debug("blob moved on before expiry",
				logging.String(logging.FieldBlobID, id))
			return nil
		}
		return fmt.Errorf("expire blob %q: %w", id, err)
	}

	w.log.Info("blob upload timed out",
		logging.String(logging.FieldBlobID, id),
		logging.String(logging.FieldStatus, string(record.Status)))
	return nil
}
