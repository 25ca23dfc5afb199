package api

import (
	"encoding/json"
	"net/http"

	"lens/internal/blob"
	"lens/internal/fault"
	"lens/internal/logging"
)

// kindStatuses maps every fault kind to the HTTP status returned at this
// boundary. The map is total over fault.Kinds; HTTPStatus falls back to 500
// for anything it does not cover.
var kindStatuses = map[fault.Kind]int{
	fault.KindCallbackURLNotValid:    http.StatusBadRequest,
	fault.KindBlobNotFound:           http.StatusNotFound,
	fault.KindBlobNotUploadedYet:     http.StatusConflict,
	fault.KindBlobUploadTimedOut:     http.StatusGone,
	fault.KindRecognitionInProgress:  http.StatusConflict,
	fault.KindInvalidBlobUploaded:    http.StatusUnprocessableEntity,
	fault.KindTooLargeBlobUploaded:   http.StatusRequestEntityTooLarge,
	fault.KindRecognitionStepFailed:  http.StatusInternalServerError,
	fault.KindCallbackDeliveryFailed: http.StatusBadGateway,
	fault.KindUnexpectedError:        http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code a fault kind maps to.
func HTTPStatus(kind fault.Kind) int {
	if status, ok := kindStatuses[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Boundary-only classification identifiers. These appear in error envelopes
// for conditions that never cross the workflow core, where the fault kinds
// are reserved for workflow outcomes.
const (
	errorUnauthorized     = "Unauthorized"
	errorMalformedEvent   = "UploadEventIsNotValid"
	errorAlreadyProcessed = "BlobHasAlreadyBeenProcessed"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("encode response body", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, id, description string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	s.writeJSON(w, status, ErrorEnvelope{
		Error:       id,
		Description: description,
		Payload:     payload,
	})
}

// writeFault translates err into its error envelope. Unclassified errors are
// masked as UnexpectedErrorOccurred; the cause goes to the log, never to the
// wire.
func (s *Server) writeFault(w http.ResponseWriter, err error) {
	kind, ok := fault.KindOf(err)
	if !ok {
		s.log.Error("request failed with unclassified error", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError,
			string(fault.KindUnexpectedError), "Unexpected error occurred.", nil)
		return
	}
	s.writeError(w, HTTPStatus(kind), string(kind), fault.MessageOf(err), fault.PayloadOf(err))
}

func notFoundFault(id string) error {
	return fault.New(fault.KindBlobNotFound, "Blob was not found.", map[string]any{
		"blob_id": id,
		"status":  string(blob.StatusNotFound),
	})
}
