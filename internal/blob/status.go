package blob

import "strings"

// Status represents the recognition lifecycle of a blob record.
type Status string

const (
	StatusWaitingForUpload    Status = "WAITING_FOR_UPLOAD"
	StatusUploadTimedOut      Status = "UPLOAD_TIMED_OUT"
	StatusInProgress          Status = "IN_PROGRESS"
	StatusInvalidBlobUploaded Status = "INVALID_BLOB_HAS_BEEN_UPLOADED"
	StatusTooLargeBlob        Status = "TOO_LARGE_BLOB_HAS_BEEN_UPLOADED"
	StatusUnexpectedError     Status = "UNEXPECTED_ERROR"
	StatusSuccess             Status = "SUCCESS"
	StatusCallbackFailure     Status = "FAILED_DUE_TO_CALLBACK_FAILURE"
	StatusCallbackTimeOut     Status = "FAILED_DUE_TO_CALLBACK_TIME_OUT"
	StatusCallbackConnection  Status = "FAILED_DUE_TO_CALLBACK_CONNECTION"
)

// StatusNotFound is a reporting-only pseudo status carried in lookup-failure
// payloads. It is never persisted.
const StatusNotFound Status = "NOT_FOUND"

var allStatuses = []Status{
	StatusWaitingForUpload,
	StatusUploadTimedOut,
	StatusInProgress,
	StatusInvalidBlobUploaded,
	StatusTooLargeBlob,
	StatusUnexpectedError,
	StatusSuccess,
	StatusCallbackFailure,
	StatusCallbackTimeOut,
	StatusCallbackConnection,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// transitionSources lists, per target status, the statuses a record may hold
// when that transition is applied. The store turns this into conditional
// writes, so re-applying a transition that already happened is a no-op and
// anything else is rejected.
//
// UNEXPECTED_ERROR is the orchestration fallback and may be entered from any
// non-terminal state, not just from the normal component graph.
var transitionSources = map[Status][]Status{
	StatusInProgress:          {StatusWaitingForUpload},
	StatusUploadTimedOut:      {StatusWaitingForUpload},
	StatusInvalidBlobUploaded: {StatusInProgress},
	StatusTooLargeBlob:        {StatusInProgress},
	StatusSuccess:             {StatusInProgress},
	StatusCallbackFailure:     {StatusInProgress},
	StatusCallbackTimeOut:     {StatusInProgress},
	StatusCallbackConnection:  {StatusInProgress},
	StatusUnexpectedError:     {StatusWaitingForUpload, StatusInProgress},
}

// AllStatuses returns the ordered list of persistable statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known persistable Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToUpper(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// TransitionSources returns the statuses from which target may be entered.
// The initial status has no sources.
func (s Status) TransitionSources() []Status {
	sources := transitionSources[s]
	cp := make([]Status, len(sources))
	copy(cp, sources)
	return cp
}

// Terminal reports whether no further workflow transition can leave s.
func (s Status) Terminal() bool {
	switch s {
	case StatusWaitingForUpload, StatusInProgress:
		return false
	default:
		_, known := statusSet[s]
		return known
	}
}
