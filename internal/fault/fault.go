// Package fault defines the classified errors shared across the recognition
// workflow. Every failure that crosses a component boundary carries a Kind so
// callers can branch on classification instead of matching message strings,
// plus a structured payload for user-facing responses.
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies one failure class. Values are stable identifiers that appear
// verbatim in API responses and logs.
type Kind string

const (
	KindCallbackURLNotValid    Kind = "CallbackUrlIsNotValid"
	KindBlobNotFound           Kind = "BlobWasNotFound"
	KindBlobNotUploadedYet     Kind = "BlobIsNotUploadedYet"
	KindBlobUploadTimedOut     Kind = "BlobUploadTimedOut"
	KindRecognitionInProgress  Kind = "BlobRecognitionIsInProgress"
	KindInvalidBlobUploaded    Kind = "InvalidBlobHasBeenUploaded"
	KindTooLargeBlobUploaded   Kind = "TooLargeBlobHasBeenUploaded"
	KindRecognitionStepFailed  Kind = "RecognitionStepHasBeenFailed"
	KindCallbackDeliveryFailed Kind = "CallbackDeliveryHasBeenFailed"
	KindUnexpectedError        Kind = "UnexpectedErrorOccurred"
)

var kinds = []Kind{
	KindCallbackURLNotValid,
	KindBlobNotFound,
	KindBlobNotUploadedYet,
	KindBlobUploadTimedOut,
	KindRecognitionInProgress,
	KindInvalidBlobUploaded,
	KindTooLargeBlobUploaded,
	KindRecognitionStepFailed,
	KindCallbackDeliveryFailed,
	KindUnexpectedError,
}

// Kinds returns every defined failure classification. Mappings keyed by Kind
// are expected to cover this full set.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Error is the concrete error type carried across component boundaries.
// Payload holds the structured context (blob id, offending input) that the
// transport layer serializes alongside the message.
type Error struct {
	Kind    Kind
	Message string
	Payload map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error with no underlying cause.
func New(kind Kind, message string, payload map[string]any) error {
	return &Error{Kind: kind, Message: message, Payload: payload}
}

// Wrap builds a classified error around an underlying cause so callers can
// still reach the cause through errors.Is/As.
func Wrap(kind Kind, message string, payload map[string]any, err error) error {
	return &Error{Kind: kind, Message: message, Payload: payload, Err: err}
}

// KindOf reports the classification of err, unwrapping as needed.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}

// MessageOf returns the classified message, or err.Error() for plain errors.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// PayloadOf returns the structured payload attached to err, if any.
func PayloadOf(err error) map[string]any {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Payload
	}
	return nil
}
