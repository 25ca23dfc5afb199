// Package result maps stored blob records onto caller-facing outcomes. The
// mapping is deliberately total: every persistable status resolves to either
// the success payload or exactly one classified failure, so a status added to
// the lifecycle cannot reach callers unmapped.
package result

import (
	"context"
	"fmt"

	"lens/internal/blob"
	"lens/internal/fault"
	"lens/internal/store"
)

// failureOutcome is the classification returned for one non-success status.
type failureOutcome struct {
	kind    fault.Kind
	message string
}

// failureOutcomes covers every persistable status except SUCCESS.
var failureOutcomes = map[blob.Status]failureOutcome{
	blob.StatusWaitingForUpload:    {kind: fault.KindBlobNotUploadedYet, message: "Blob is not uploaded yet."},
	blob.StatusUploadTimedOut:      {kind: fault.KindBlobUploadTimedOut, message: "Blob upload timed out."},
	blob.StatusInProgress:          {kind: fault.KindRecognitionInProgress, message: "Blob recognition is in progress."},
	blob.StatusInvalidBlobUploaded: {kind: fault.KindInvalidBlobUploaded, message: "Invalid blob has been uploaded."},
	blob.StatusTooLargeBlob:        {kind: fault.KindTooLargeBlobUploaded, message: "Too large blob has been uploaded."},
	blob.StatusUnexpectedError:     {kind: fault.KindUnexpectedError, message: "Unexpected error occurred."},
	blob.StatusCallbackFailure:     {kind: fault.KindCallbackDeliveryFailed, message: "Recognition succeeded but callback delivery failed."},
	blob.StatusCallbackTimeOut:     {kind: fault.KindCallbackDeliveryFailed, message: "Recognition succeeded but callback delivery timed out."},
	blob.StatusCallbackConnection:  {kind: fault.KindCallbackDeliveryFailed, message: "Recognition succeeded but the callback endpoint was unreachable."},
}

// FailureKind reports the classification Read returns for status. The second
// return is false for SUCCESS, which has no failure kind, and for values that
// are not part of the lifecycle.
func FailureKind(status blob.Status) (fault.Kind, bool) {
	outcome, ok := failureOutcomes[status]
	return outcome.kind, ok
}

// Reader resolves the final outcome for a blob. It performs no mutation.
type Reader struct {
	store *store.Store
}

// NewReader wires a reader over the blob record store.
func NewReader(st *store.Store) *Reader {
	return &Reader{store: st}
}

// Read returns the recognition result for id when the blob concluded in
// SUCCESS, or a classified failure describing how far the blob got. Absent
// records classify as BlobWasNotFound with the reporting-only NOT_FOUND
// status in the payload.
func (r *Reader) Read(ctx context.Context, id string) (*blob.Result, error) {
	record, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load blob %q: %w", id, err)
	}
	if record == nil {
		return nil, fault.New(fault.KindBlobNotFound, "Blob was not found.", map[string]any{
			"blob_id": id,
			"status":  string(blob.StatusNotFound),
		})
	}

	if record.Status == blob.StatusSuccess {
		labels := record.Labels
		if labels == nil {
			labels = []blob.Label{}
		}
		return &blob.Result{BlobID: record.ID, Labels: labels}, nil
	}

	outcome, ok := failureOutcomes[record.Status]
	if !ok {
		return nil, fmt.Errorf("blob %q has unmapped status %q", id, record.Status)
	}
	return nil, fault.New(outcome.kind, outcome.message, map[string]any{
		"blob_id": id,
		"status":  string(record.Status),
	})
}
