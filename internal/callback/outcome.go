package callback

import "lens/internal/blob"

// Outcome classifies the result of a single callback delivery attempt.
type Outcome string

const (
	// Success records that the endpoint acknowledged the result with 204.
	Success Outcome = "SUCCESS"
	// CallbackFailure records a response with any status code other than 204.
	CallbackFailure Outcome = "CALLBACK_FAILURE"
	// ConnectionTimeout records a connection attempt that timed out.
	ConnectionTimeout Outcome = "CONNECTION_TIMEOUT"
	// ConnectionError records a connection that could not be established.
	ConnectionError Outcome = "CONNECTION_ERROR"
)

// outcomeStatuses covers every outcome an Invoker can produce. Keeping the
// table total means a new outcome cannot ship without a status to record.
var outcomeStatuses = map[Outcome]blob.Status{
	Success:           blob.StatusSuccess,
	CallbackFailure:   blob.StatusCallbackFailure,
	ConnectionTimeout: blob.StatusCallbackTimeOut,
	ConnectionError:   blob.StatusCallbackConnection,
}

// Outcomes returns every delivery outcome in declaration order.
func Outcomes() []Outcome {
	return []Outcome{Success, CallbackFailure, ConnectionTimeout, ConnectionError}
}

// BlobStatus maps the outcome to the blob status recorded after delivery.
// The second return is false only for values that never came from an Invoker.
func (o Outcome) BlobStatus() (blob.Status, bool) {
	status, ok := outcomeStatuses[o]
	return status, ok
}
