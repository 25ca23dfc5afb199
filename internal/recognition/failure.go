package recognition

import (
	"context"
	"errors"
	"log/slog"

	"lens/internal/blob"
	"lens/internal/logging"
	"lens/internal/store"
)

// FailureHandler is the fallback net for steps that fail without classifying
// the blob themselves, such as a storage outage mid-pipeline.
type FailureHandler struct {
	store *store.Store
	log   *slog.Logger
}

// NewFailureHandler wires a failure handler from its collaborators.
func NewFailureHandler(st *store.Store, logger *slog.Logger) *FailureHandler {
	return &FailureHandler{
		store: st,
		log:   logging.NewComponentLogger(logger, "failure-handler"),
	}
}

// Handle marks the blob UNEXPECTED_ERROR. It never reports failure: a blob
// that already reached a terminal status keeps it, and store trouble is only
// logged because nothing further up the chain can recover it.
func (h *FailureHandler) Handle(ctx context.Context, id string, cause error) {
	record, err := h.store.UpdateStatus(ctx, id, blob.StatusUnexpectedError)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			h.log.Debug("blob already terminal, keeping status",
				logging.String(logging.FieldBlobID, id),
				logging.Error(cause))
		case errors.Is(err, store.ErrNotFound):
			h.log.Warn("no blob record to mark failed",
				logging.String(logging.FieldBlobID, id),
				logging.Error(cause))
		default:
			h.log.Error("unable to record unexpected error",
				logging.String(logging.FieldBlobID, id),
				logging.Error(err))
		}
		return
	}

	h.log.Error("blob failed with unexpected error",
		logging.String(logging.FieldBlobID, id),
		logging.String(logging.FieldStatus, string(record.Status)),
		logging.Error(cause))
}
