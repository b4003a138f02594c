package types

import "errors"

// Sentinel errors for the service error taxonomy. Callers classify with
// errors.Is; wrapped detail carries the specifics.
var (
	// ErrValidation indicates a missing or unusable required profile field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates an unknown client_id on read, update, or delete.
	ErrNotFound = errors.New("client not found")
	// ErrConflict indicates a duplicate client_id on import.
	ErrConflict = errors.New("client already exists")
	// ErrUpstream indicates the relational store is unavailable. Fatal to the
	// operation.
	ErrUpstream = errors.New("upstream store unavailable")
	// ErrMirror indicates the spreadsheet mirror or webhook failed. Caught at
	// the coordinator boundary, logged, never surfaced to callers.
	ErrMirror = errors.New("mirror sync failed")
	// ErrParse indicates an unrecoverable tabular export. An ingestion pass
	// that hits it yields an empty result set, not a crash.
	ErrParse = errors.New("tabular parse failed")
)
