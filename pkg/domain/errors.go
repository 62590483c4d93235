package domain

import "errors"

// ErrSnapshotNotFound is returned when no snapshot exists under a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrMalformedSnapshot is returned when a stored snapshot cannot be decoded
// or does not describe the same fields as the form resuming it.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// ErrValidationFailed is returned when validation itself breaks
// (as opposed to the data being invalid).
var ErrValidationFailed = errors.New("validation failed")

// ErrInvalid is returned when submitted data does not satisfy the schema.
var ErrInvalid = errors.New("form is invalid")

// ErrUnknownField is returned when an operation names a field the form does not have.
var ErrUnknownField = errors.New("unknown field")

// ErrMissingKey is returned by persistence operations on a form without a storage key.
var ErrMissingKey = errors.New("form has no storage key")
