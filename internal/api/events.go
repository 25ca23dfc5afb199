package api

import (
	"encoding/json"
	"net/http"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"lens/internal/logging"
)

// uploadNotification is the event data accepted at /v1/events. Two shapes
// are recognized: the flat {bucket, name} object notification and the
// S3-style Records document. The object key is the blob id in both.
type uploadNotification struct {
	Bucket  string `json:"bucket"`
	Name    string `json:"name"`
	Records []struct {
		S3 struct {
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

func (n uploadNotification) blobID() string {
	if n.Name != "" {
		return n.Name
	}
	for _, record := range n.Records {
		if record.S3.Object.Key != "" {
			return record.S3.Object.Key
		}
	}
	return ""
}

// handleEvent serves POST /v1/events: the upload-detected notification from
// an object store, delivered as a CloudEvent in binary or structured mode.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	event, err := cloudevents.NewEventFromHTTPRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errorMalformedEvent,
			"Upload event could not be parsed.", nil)
		return
	}

	var note uploadNotification
	if err := json.Unmarshal(event.Data(), &note); err != nil {
		s.writeError(w, http.StatusBadRequest, errorMalformedEvent,
			"Upload event data could not be decoded.",
			map[string]any{"event_type": event.Type()})
		return
	}
	id := note.blobID()
	if id == "" {
		s.writeError(w, http.StatusBadRequest, errorMalformedEvent,
			"Upload event does not reference a blob.",
			map[string]any{"event_type": event.Type()})
		return
	}

	s.log.Debug("upload event received",
		logging.String(logging.FieldBlobID, id),
		logging.String("event_type", event.Type()),
		logging.String("event_source", event.Source()))

	s.fireRecognition(r.Context(), w, id)
}
