package blob

import "time"

// Record is the persistent state of one blob recognition request.
type Record struct {
	ID          string
	CallbackURL string
	Status      Status
	Labels      []Label
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Label is one recognized label in canonical form. Parents is always
// present, empty when the engine reported no parent categories.
type Label struct {
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Parents    []string `json:"parents"`
}

// Result is the payload delivered to callback endpoints and returned to
// result queries.
type Result struct {
	BlobID string  `json:"blob_id"`
	Labels []Label `json:"labels"`
}

// HasLabels reports whether labels have been persisted for the record.
func (r *Record) HasLabels() bool {
	return r != nil && r.Labels != nil
}
