package store

import "errors"

var (
	// ErrNotFound reports that no record exists for the given blob id.
	ErrNotFound = errors.New("blob not found")
	// ErrConflict reports that a conditional write was refused because the
	// record's current status does not admit the requested transition.
	ErrConflict = errors.New("status conflict")
)
