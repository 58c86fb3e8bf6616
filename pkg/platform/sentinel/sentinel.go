package sentinel

import "errors"

// Sentinel errors for store facts. Stores return these (optionally wrapped)
// and the contact service translates them into domain errors.
//
//   - ErrNotFound: no contact is stored under the requested ID
//   - ErrConflict: a contact with the same ID is already stored
//
// Field validation failures are not store facts; use pkg/domain-errors.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
