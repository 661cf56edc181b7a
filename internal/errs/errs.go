// Package errs contains sentinel errors shared by the repository, service and handler layers.
package errs

import "errors"

var (
	// ErrUnauthorized indicates a missing actor or a role lacking the required capability.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the referenced entity, product or quotation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference indicates a quotation that does not belong to the stated purchase request.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInvalidTransition indicates a status that is not the valid successor of the current one.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates an input that fails a business precondition.
	ErrValidation = errors.New("validation")

	// ErrImmutable is returned when something tries to rewrite an append-only record.
	ErrImmutable = errors.New("immutable record")
)
