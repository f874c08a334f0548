package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors:
//   - ErrNotFound: no document with the requested id exists
//   - ErrConflict: a concurrent writer changed the document mid-operation
//   - ErrUnavailable: the backing store cannot be reached
//
// Input validation failures belong in pkg/domain-errors, not here.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
