package upload

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"lens/internal/fault"
	"lens/internal/logging"
	"lens/internal/objectstore"
	"lens/internal/store"
)

// Launcher arms the upload watch for a freshly registered blob.
type Launcher interface {
	Launch(ctx context.Context, blobID string) error
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context, blobID string) error

func (f LauncherFunc) Launch(ctx context.Context, blobID string) error { return f(ctx, blobID) }

// Registration is handed back to the caller after a successful registration.
type Registration struct {
	BlobID      string `json:"blob_id"`
	CallbackURL string `json:"callback_url"`
	UploadURL   string `json:"upload_url"`
}

// Registrar creates blob records and issues upload targets.
type Registrar struct {
	store     *store.Store
	objects   objectstore.Store
	launcher  Launcher
	validator Validator
	log       *slog.Logger
}

// NewRegistrar wires a registrar from its collaborators.
func NewRegistrar(st *store.Store, objects objectstore.Store, launcher Launcher, validator Validator, logger *slog.Logger) *Registrar {
	return &Registrar{
		store:     st,
		objects:   objects,
		launcher:  launcher,
		validator: validator,
		log:       logging.NewComponentLogger(logger, "registrar"),
	}
}

// Register validates callbackURL, persists a new blob record in
// WAITING_FOR_UPLOAD, arms the upload watch, and issues an upload target.
// An invalid URL fails with CallbackUrlIsNotValid before any side effect.
// The remaining side effects are not transactional across each other; a
// failure between them leaves a record the armed watch will retire.
func (r *Registrar) Register(ctx context.Context, callbackURL string) (*Registration, error) {
	callbackURL = strings.TrimSpace(callbackURL)
	if !r.validator.IsValid(callbackURL) {
		return nil, fault.New(fault.KindCallbackURLNotValid, "Invalid callback url supplied.", map[string]any{
			"callback_url": callbackURL,
		})
	}

	id := uuid.NewString()
	record, err := r.store.Create(ctx, id, callbackURL)
	if err != nil {
		return nil, fmt.Errorf("create blob record: %w", err)
	}

	if err := r.launcher.Launch(ctx, id); err != nil {
		return nil, fmt.Errorf("arm upload watch for blob %q: %w", id, err)
	}

	uploadURL, err := r.objects.UploadURL(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("issue upload target for blob %q: %w", id, err)
	}

	r.log.Info("blob registered",
		logging.String(logging.FieldBlobID, id),
		logging.String(logging.FieldStatus, string(record.Status)))

	return &Registration{BlobID: id, CallbackURL: record.CallbackURL, UploadURL: uploadURL}, nil
}
