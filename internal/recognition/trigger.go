package recognition

import (
	"context"
	"fmt"
	"log/slog"

	"lens/internal/blob"
	"lens/internal/logging"
	"lens/internal/store"
)

// Launcher starts the recognition pipeline for a blob whose upload arrived.
type Launcher interface {
	Launch(ctx context.Context, blobID string) error
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context, blobID string) error

func (f LauncherFunc) Launch(ctx context.Context, blobID string) error { return f(ctx, blobID) }

// Trigger moves an uploaded blob into recognition.
type Trigger struct {
	store    *store.Store
	launcher Launcher
	log      *slog.Logger
}

// NewTrigger wires a trigger from its collaborators.
func NewTrigger(st *store.Store, launcher Launcher, logger *slog.Logger) *Trigger {
	return &Trigger{
		store:    st,
		launcher: launcher,
		log:      logging.NewComponentLogger(logger, "trigger"),
	}
}

// Fire transitions the blob to IN_PROGRESS and then starts the recognition
// pipeline. The transition must land first: a watchdog that has not yet
// observed the upload is forced into its conflict path instead of retiring a
// blob that is already being recognized. Firing twice leaves IN_PROGRESS in
// place and starts the pipeline again, which downstream steps tolerate.
func (t *Trigger) Fire(ctx context.Context, id string) error {
	record, err := t.store.UpdateStatus(ctx, id, blob.StatusInProgress)
	if err != nil {
		return fmt.Errorf("mark blob %q in progress: %w", id, err)
	}

	t.log.Info("recognition started",
		logging.String(logging.FieldBlobID, id),
		logging.String(logging.FieldStatus, string(record.Status)))

	if err := t.launcher.Launch(ctx, id); err != nil {
		return fmt.Errorf("start recognition for blob %q: %w", id, err)
	}
	return nil
}
