package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"lens/internal/blob"
	"lens/internal/store"
)

// handleRegister serves POST /v1/blobs. An undecodable body falls through to
// the registrar with an empty callback URL, so every rejection travels the
// same validation path.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.CallbackURL = ""
	}

	registration, err := s.registrar.Register(r.Context(), req.CallbackURL)
	if err != nil {
		s.writeFault(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, registration)
}

// handleResult serves GET /v1/blobs/{id}.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.reader.Read(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeFault(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleUploadContent serves PUT /v1/blobs/{id}/content, the local upload
// target. It stores the request body and starts recognition, standing in for
// the bucket notification a remote object store would emit.
func (s *Server) handleUploadContent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeFault(w, err)
		return
	}
	if record == nil {
		s.writeFault(w, notFoundFault(id))
		return
	}
	if record.Status != blob.StatusWaitingForUpload {
		s.writeClosedUploadTarget(r.Context(), w, id)
		return
	}

	if err := s.objects.Put(r.Context(), id, r.Body); err != nil {
		s.writeFault(w, err)
		return
	}
	s.fireRecognition(r.Context(), w, id)
}

// fireRecognition starts the pipeline for id and translates start-up
// refusals. A store conflict means the blob moved on since the upload was
// issued; the response then explains the blob's current state.
func (s *Server) fireRecognition(ctx context.Context, w http.ResponseWriter, id string) {
	err := s.trigger.Fire(ctx, id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, store.ErrNotFound):
		s.writeFault(w, notFoundFault(id))
	case errors.Is(err, store.ErrConflict):
		s.writeClosedUploadTarget(ctx, w, id)
	default:
		s.writeFault(w, err)
	}
}

// writeClosedUploadTarget reports why content can no longer be accepted for
// id. For every status short of SUCCESS the result reader produces the
// canonical fault; after SUCCESS the target is simply spent.
func (s *Server) writeClosedUploadTarget(ctx context.Context, w http.ResponseWriter, id string) {
	if _, err := s.reader.Read(ctx, id); err != nil {
		s.writeFault(w, err)
		return
	}
	s.writeError(w, http.StatusConflict, errorAlreadyProcessed,
		"Blob has already been processed.", map[string]any{"blob_id": id})
}

// handleList serves GET /v1/blobs.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		s.writeFault(w, err)
		return
	}

	resp := ListResponse{Blobs: make([]BlobSummary, 0, len(records))}
	for _, record := range records {
		resp.Blobs = append(resp.Blobs, BlobSummary{
			BlobID:    record.ID,
			Status:    record.Status,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleHealth serves GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeFault(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Counts: counts})
}
