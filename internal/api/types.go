package api

import (
	"time"

	"lens/internal/blob"
)

// RegisterRequest is the body of POST /v1/blobs.
type RegisterRequest struct {
	CallbackURL string `json:"callback_url"`
}

// BlobSummary is one row of the blob listing.
type BlobSummary struct {
	BlobID    string      `json:"blob_id"`
	Status    blob.Status `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ListResponse is the body of GET /v1/blobs.
type ListResponse struct {
	Blobs []BlobSummary `json:"blobs"`
}

// HealthResponse is the body of GET /v1/health. Counts holds the number of
// blob records per status.
type HealthResponse struct {
	Status string              `json:"status"`
	Counts map[blob.Status]int `json:"counts"`
}

// ErrorEnvelope is the body of every failed response. Error carries the
// classification identifier verbatim so callers can branch without parsing
// descriptions; Payload holds the structured context behind the failure.
type ErrorEnvelope struct {
	Error       string         `json:"error"`
	Description string         `json:"description"`
	Payload     map[string]any `json:"payload"`
}
