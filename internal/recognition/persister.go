package recognition

import (
	"context"
	"fmt"
	"log/slog"

	"lens/internal/blob"
	"lens/internal/logging"
	"lens/internal/store"
)

// Persister writes canonical labels to the store.
type Persister struct {
	store *store.Store
	log   *slog.Logger
}

// NewPersister wires a persister from its collaborators.
func NewPersister(st *store.Store, logger *slog.Logger) *Persister {
	return &Persister{
		store: st,
		log:   logging.NewComponentLogger(logger, "persister"),
	}
}

// Persist stores labels for id and returns the list unchanged for pipeline
// continuity. The underlying write is first-write-wins, so re-running the
// step cannot clobber labels an earlier run already recorded. Status is not
// touched here; the trigger already set IN_PROGRESS.
func (p *Persister) Persist(ctx context.Context, id string, labels []blob.Label) ([]blob.Label, error) {
	record, err := p.store.SaveLabels(ctx, id, labels)
	if err != nil {
		return nil, fmt.Errorf("persist labels for blob %q: %w", id, err)
	}

	p.log.Debug("labels persisted",
		logging.String(logging.FieldBlobID, id),
		logging.Int("labels", len(record.Labels)))
	return labels, nil
}
