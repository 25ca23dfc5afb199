package callback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"lens/internal/blob"
	"lens/internal/logging"
	"lens/internal/store"
)

// Dispatcher sends the final label list to the blob's registered callback
// URL and records the delivery outcome as the blob's terminal status.
type Dispatcher struct {
	store   *store.Store
	invoker Invoker
	log     *slog.Logger
}

// NewDispatcher wires a dispatcher from its collaborators.
func NewDispatcher(st *store.Store, invoker Invoker, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:   st,
		invoker: invoker,
		log:     logging.NewComponentLogger(logger, "dispatcher"),
	}
}

// Dispatch delivers {blob_id, labels} to the callback registered for id and
// transitions the blob to the status matching the delivery outcome. All four
// outcomes return a nil error; errors are reserved for the store (missing
// record, storage failure).
func (d *Dispatcher) Dispatch(ctx context.Context, id string, labels []blob.Label) (Outcome, error) {
	record, err := d.store.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load blob %q: %w", id, err)
	}
	if record == nil {
		return "", fmt.Errorf("blob %q: %w", id, store.ErrNotFound)
	}

	if labels == nil {
		labels = []blob.Label{}
	}
	body, err := json.Marshal(blob.Result{BlobID: id, Labels: labels})
	if err != nil {
		return "", fmt.Errorf("encode callback payload: %w", err)
	}

	delivery := d.invoker.Send(ctx, record.CallbackURL, body)
	status, ok := delivery.Outcome.BlobStatus()
	if !ok {
		return "", fmt.Errorf("unmapped delivery outcome %q", delivery.Outcome)
	}

	if _, err := d.store.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// An earlier attempt already settled this blob. The duplicate
			// delivery is the accepted cost of at-least-once invocation.
			d.log.Warn("delivery outcome discarded, blob already settled",
				logging.String(logging.FieldBlobID, id),
				logging.String("outcome", string(delivery.Outcome)))
			return delivery.Outcome, nil
		}
		return "", fmt.Errorf("record delivery outcome: %w", err)
	}

	switch delivery.Outcome {
	case Success:
		d.log.Info("callback delivered",
			logging.String(logging.FieldBlobID, id),
			logging.Int("labels", len(labels)))
	case CallbackFailure:
		d.log.Warn("callback endpoint rejected result",
			logging.String(logging.FieldBlobID, id),
			logging.Int("code", delivery.StatusCode),
			logging.String(logging.FieldStatus, string(status)))
	default:
		d.log.Warn("callback endpoint unreachable",
			logging.String(logging.FieldBlobID, id),
			logging.String("outcome", string(delivery.Outcome)),
			logging.String(logging.FieldStatus, string(status)),
			logging.Error(delivery.Err))
	}
	return delivery.Outcome, nil
}
